package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout of the graph with the given content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// GenerationKey identifies a generator response for a request.
	GenerationKey(opts GenerationKeyOpts) string
}

// LayoutKeyOpts are the layout parameters that change the result.
type LayoutKeyOpts struct {
	MaxLevels  int `json:"max_levels"`
	LabelWords int `json:"label_words"`
}

// ArtifactKeyOpts are the render parameters that change the output.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
}

// GenerationKeyOpts are the generation inputs that change the response.
type GenerationKeyOpts struct {
	Topic     string   `json:"topic"`
	Depth     int      `json:"depth"`
	Subtopics []string `json:"subtopics,omitempty"`
	Model     string   `json:"model"`
}

// Hash returns the hex SHA-256 of data. Graphs and layouts are hashed in
// their canonical JSON form before keying.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return kindKey(KeyTypeLayout, graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return kindKey(KeyTypeArtifact, layoutHash, opts)
}

// GenerationKey implements Keyer.
func (DefaultKeyer) GenerationKey(opts GenerationKeyOpts) string {
	return kindKey(KeyTypeGeneration, opts)
}

// kindKey hashes the JSON of parts under a kind prefix. The parts are plain
// strings and option structs, which always marshal.
func kindKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// PrefixKeyer namespaces every key of Inner, so several deployments can
// share one Redis database.
type PrefixKeyer struct {
	Prefix string
	Inner  Keyer
}

// WithPrefix returns inner with every key prefixed. An empty prefix returns
// inner itself; a nil inner means [DefaultKeyer].
func WithPrefix(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	if prefix == "" {
		return inner
	}
	return PrefixKeyer{Prefix: prefix, Inner: inner}
}

func (k PrefixKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Inner.LayoutKey(graphHash, opts)
}

func (k PrefixKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(layoutHash, opts)
}

func (k PrefixKeyer) GenerationKey(opts GenerationKeyOpts) string {
	return k.Prefix + k.Inner.GenerationKey(opts)
}

var (
	_ Keyer = DefaultKeyer{}
	_ Keyer = PrefixKeyer{}
)
