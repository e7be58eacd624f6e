package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

// DefaultDepth is the depth requested when a Request leaves it unset.
const DefaultDepth = 2

// Request describes the map to generate.
type Request struct {
	Topic     string   `json:"topic"`
	Depth     int      `json:"depth,omitempty"`
	Subtopics []string `json:"subtopics,omitempty"`
}

// Normalize trims the topic and subtopics, drops blank subtopics and fills
// in the default depth.
func (r Request) Normalize() Request {
	out := Request{Topic: strings.TrimSpace(r.Topic), Depth: r.Depth}
	if out.Depth == 0 {
		out.Depth = DefaultDepth
	}
	for _, s := range r.Subtopics {
		if s = strings.TrimSpace(s); s != "" {
			out.Subtopics = append(out.Subtopics, s)
		}
	}
	return out
}

// Validate checks the topic and depth.
func (r Request) Validate() error {
	if err := apperr.ValidateTopic(r.Topic); err != nil {
		return err
	}
	return apperr.ValidateDepth(r.Depth)
}

// Prompt builds the instruction sent to the model.
func Prompt(r Request) string {
	var b strings.Builder
	b.WriteString("Genera un mapa conceptual en formato JSON con el siguiente esquema:\n")
	fmt.Fprintf(&b, "- topic: %q\n", r.Topic)
	fmt.Fprintf(&b, "- nodes: lista de conceptos principales y secundarios (profundidad máxima %d), cada uno con id, label y opcionalmente description y level\n", r.Depth)
	b.WriteString("- edges: define las relaciones entre nodos con from, to y un texto claro en el campo \"relation\".\n")
	if len(r.Subtopics) > 0 {
		fmt.Fprintf(&b, "Si hay subtemas relevantes, inclúyelos: %s.\n", strings.Join(r.Subtopics, ", "))
	}
	b.WriteString("Responde **solo con un objeto JSON válido** que cumpla con el esquema.")
	return b.String()
}

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// Model names the model replies come from. It is part of cache keys.
	Model() string
}

// Generator produces concept map documents through a [Completer], caching
// decoded replies.
type Generator struct {
	Completer Completer
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger

	// Retry governs retries of rate-limited and transient completion
	// failures.
	Retry cache.Backoff
}

// NewGenerator creates a generator. A nil cache disables caching, a nil
// keyer uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewGenerator(c Completer, ch cache.Cache, keyer cache.Keyer, logger *log.Logger) *Generator {
	if ch == nil {
		ch = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{Completer: c, Cache: ch, Keyer: keyer, Logger: logger, Retry: cache.DefaultBackoff}
}

// Generate returns a document for r.
func (g *Generator) Generate(ctx context.Context, r Request) (concept.Document, error) {
	doc, _, err := g.GenerateWithCacheInfo(ctx, r, false)
	return doc, err
}

// GenerateWithCacheInfo is like Generate and also reports whether the
// document came from the cache. With refresh set the cache is not read.
//
// The returned document's depth is the requested depth. Its topic falls
// back to the requested topic when the model leaves it empty.
func (g *Generator) GenerateWithCacheInfo(ctx context.Context, r Request, refresh bool) (concept.Document, bool, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return concept.Document{}, false, err
	}

	hooks := observability.Generate()
	cacheHooks := observability.Cache()
	key := g.Keyer.GenerationKey(cache.GenerationKeyOpts{
		Topic:     r.Topic,
		Depth:     r.Depth,
		Subtopics: r.Subtopics,
		Model:     g.Completer.Model(),
	})

	if !refresh {
		if data, ok, err := g.Cache.Get(ctx, key); err == nil && ok {
			if doc, err := concept.DecodeDocument(data); err == nil {
				cacheHooks.OnCacheHit(ctx, cache.KeyTypeGeneration)
				g.Logger.Debug("generation cache hit", "topic", r.Topic, "depth", r.Depth)
				return doc, true, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, cache.KeyTypeGeneration)
	}

	hooks.OnGenerateStart(ctx, r.Topic, r.Depth)
	start := time.Now()
	doc, err := g.complete(ctx, r)
	hooks.OnGenerateComplete(ctx, r.Topic, len(doc.Map.Nodes), time.Since(start), err)
	if err != nil {
		g.Logger.Error("generation failed", "topic", r.Topic, "err", err)
		return concept.Document{}, false, err
	}

	g.Logger.Info("generated concept map",
		"topic", r.Topic,
		"nodes", len(doc.Map.Nodes),
		"edges", len(doc.Map.Edges),
		"duration", time.Since(start))

	if data, err := concept.MarshalDocument(doc); err == nil {
		if err := g.Cache.Set(ctx, key, data, cache.TTLGeneration); err == nil {
			cacheHooks.OnCacheSet(ctx, cache.KeyTypeGeneration, len(data))
		}
	}
	return doc, false, nil
}

func (g *Generator) complete(ctx context.Context, r Request) (concept.Document, error) {
	var reply string
	err := g.Retry.Do(ctx, func() error {
		var err error
		reply, err = g.Completer.Complete(ctx, Prompt(r))
		return err
	})
	if err != nil {
		return concept.Document{}, classify(err)
	}

	doc, err := concept.DecodeDocument([]byte(extractJSON(reply)))
	if err != nil {
		return concept.Document{}, apperr.Wrap(apperr.ErrCodeGeneration, err, "model reply for %q is not a usable concept map", r.Topic)
	}
	if doc.Map.Topic == "" {
		doc.Map.Topic = r.Topic
	}
	doc.Depth = r.Depth
	return doc, nil
}

// extractJSON strips Markdown code fences and any prose around the outermost
// JSON object in a model reply.
func extractJSON(reply string) string {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return reply
	}
	return reply[start : end+1]
}
