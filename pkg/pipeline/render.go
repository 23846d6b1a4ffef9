package pipeline

import (
	"bytes"
	"context"
	"fmt"

	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
	"github.com/matzehuels/kitchendesigner/pkg/render/sink"
)

// Render generates output artifacts in the requested formats from a solved
// kitchen. The JSON format is the layout document itself.
func Render(ctx context.Context, k *kitchen.Kitchen, layout kio.Layout, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	view, err := plan.ParseView(opts.View)
	if err != nil {
		return nil, err
	}

	p := plan.Build(k, view)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = kio.WriteLayout(&buf, layout)
			data = buf.Bytes()
		default:
			data, err = sink.Render(ctx, p, format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderLayout draws a saved layout document over the kitchen described by
// doc, without solving.
func RenderLayout(ctx context.Context, doc *kio.Document, layout kio.Layout, opts Options) (map[string][]byte, error) {
	k, err := Rebuild(doc, layout)
	if err != nil {
		return nil, err
	}
	return Render(ctx, k, layout, opts)
}

// Rebuild preprocesses doc and applies a saved layout to the result.
func Rebuild(doc *kio.Document, layout kio.Layout) (*kitchen.Kitchen, error) {
	in, err := doc.Input()
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	k, _, err := preprocess.Run(in, preprocess.Options{})
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	if err := layout.Apply(k); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return k, nil
}
