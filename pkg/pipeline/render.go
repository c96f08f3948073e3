package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/scenelayout/pkg/export"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l scene.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, done := artifacts[format]; done {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = scene.MarshalLayout(l)
		case FormatDXF:
			data, err = export.DXF(l)
		case FormatPDF:
			data, err = export.PDF(l)
		case FormatXLSX:
			data, err = export.XLSX(l)
		case FormatDOT:
			data = []byte(export.ToDOT(l))
		case FormatSVG:
			data, err = export.RenderSVG(ctx, export.ToDOT(l))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
