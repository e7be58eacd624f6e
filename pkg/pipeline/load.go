package pipeline

import (
	"errors"
	"io/fs"

	"github.com/matzehuels/conceptmap/pkg/concept"
	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// Load reads a document from a JSON or YAML file. Bare graphs are accepted
// and yield a document without depth.
//
// A file without nodes loads as an empty document; layout handles it.
func Load(path string) (concept.Document, error) {
	doc, err := concept.ReadDocumentFile(path)
	switch {
	case err == nil, errors.Is(err, concept.ErrEmptyGraph):
		return doc, nil
	case errors.Is(err, fs.ErrNotExist):
		return concept.Document{}, apperr.Wrap(apperr.ErrCodeNotFound, err, "no such file %s", path)
	case errors.Is(err, fs.ErrPermission):
		return concept.Document{}, apperr.Wrap(apperr.ErrCodeInvalidPath, err, "cannot read %s", path)
	default:
		return concept.Document{}, apperr.Wrap(apperr.ErrCodeInvalidGraph, err, "%s is not a concept map", path)
	}
}
