package pipeline

import (
	"io"

	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Parse decodes a scene document of the given format and folds the
// settings it carries into opts. Options already set on opts win over
// the file.
func Parse(r io.Reader, format string, opts *Options) (scene.Document, error) {
	doc, err := scene.Read(r, format)
	if err != nil {
		return scene.Document{}, err
	}
	if err := checkSize(doc); err != nil {
		return scene.Document{}, err
	}
	if opts != nil {
		opts.ApplyScene(doc.Options)
	}
	return doc, nil
}

// ParseFile is Parse for a file on disk; the format follows the extension.
func ParseFile(path string, opts *Options) (scene.Document, error) {
	doc, err := scene.ReadFile(path)
	if err != nil {
		return scene.Document{}, err
	}
	if err := checkSize(doc); err != nil {
		return scene.Document{}, err
	}
	if opts != nil {
		opts.ApplyScene(doc.Options)
	}
	return doc, nil
}

func checkSize(doc scene.Document) error {
	if n := len(doc.Objects); n > DefaultMaxObjects {
		return errors.New(errors.ErrCodeInvalidInput, "scene has %d objects (limit %d)", n, DefaultMaxObjects)
	}
	return nil
}

func checkLayoutSize(l scene.Layout) error {
	if n := len(l.Objects); n > DefaultMaxObjects {
		return errors.New(errors.ErrCodeInvalidInput, "layout has %d objects (limit %d)", n, DefaultMaxObjects)
	}
	return nil
}
