// Package store persists generated concept maps.
//
// A stored map is a [Record]: the raw concept graph and the depth it was
// generated with, plus an id, a display name, the class (course) it belongs
// to and a creation time. Layouts are never stored; they are recomputed from
// the graph on load, so improving the layout engine improves old maps too.
//
// Two backends implement [Store]: [FileStore] keeps one JSON file per map
// for the CLI, and [MongoStore] keeps maps in a MongoDB collection for the
// API server.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/layout"
)

// ErrNotFound is returned when no map exists with the requested id.
var ErrNotFound = errors.New("map not found")

// Store persists records. Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or replaces the record with rec.ID.
	Save(ctx context.Context, rec Record) error

	// Get returns the record with the given id or [ErrNotFound].
	Get(ctx context.Context, id string) (Record, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]Record, error)

	// Delete removes the record with the given id or returns [ErrNotFound].
	Delete(ctx context.Context, id string) error

	Close() error
}

// =============================================================================
// Record
// =============================================================================

// Record is a stored concept map.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Class     string    `json:"class" bson:"class"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	concept.Document `bson:",inline"`
}

// NewRecord wraps doc into a record created at now.
//
// The name is derived from the topic ("Mapa: <topic>") and an empty class
// becomes [concept.DefaultClass].
func NewRecord(doc concept.Document, class string, now time.Time) Record {
	class = strings.TrimSpace(class)
	if class == "" {
		class = concept.DefaultClass
	}
	return Record{
		ID:        NewID(class, now),
		Name:      concept.Name(doc.Map.Topic),
		Class:     class,
		CreatedAt: now.UTC(),
		Document:  doc,
	}
}

// NewID returns "<class>-<unix millis>". When that would not be a valid map
// id (for instance because the class contains a slash) it returns
// "map-<uuid>" instead.
func NewID(class string, now time.Time) string {
	if class = strings.TrimSpace(class); class != "" {
		id := fmt.Sprintf("%s-%d", class, now.UnixMilli())
		if apperr.ValidateMapID(id) == nil {
			return id
		}
	}
	return "map-" + uuid.NewString()
}

// MaxLevels returns the recorded depth, or def when none was recorded.
func (r Record) MaxLevels(def int) int {
	if r.Document.Depth > 0 {
		return r.Document.Depth
	}
	return def
}

// =============================================================================
// Summaries
// =============================================================================

// Summary is the list view of a stored map.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Class       string    `json:"class"`
	CreatedAt   time.Time `json:"created_at"`
	Concepts    int       `json:"concepts"`
	Levels      int       `json:"levels"`
	Connections int       `json:"connections"`
}

// Summarize lays the record out at its recorded depth (or defaultDepth) and
// counts concepts, occupied levels and drawn connections.
func Summarize(r Record, defaultDepth int) Summary {
	res := layout.Compute(r.Map, r.MaxLevels(defaultDepth))
	levels := 0
	for _, row := range res.Rows {
		if len(row) > 0 {
			levels++
		}
	}
	return Summary{
		ID:          r.ID,
		Name:        r.Name,
		Class:       r.Class,
		CreatedAt:   r.CreatedAt,
		Concepts:    len(res.Concepts),
		Levels:      levels,
		Connections: len(res.Edges),
	}
}

// SummarizeAll summarizes every record, preserving order.
func SummarizeAll(recs []Record, defaultDepth int) []Summary {
	out := make([]Summary, len(recs))
	for i, r := range recs {
		out[i] = Summarize(r, defaultDepth)
	}
	return out
}

// sortNewestFirst orders records by creation time, newest first, then by id.
func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
