package patro

import (
	"context"
	"fmt"
	"io"

	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/render"
)

// buildFunc lays out a document for an optional output surface.
type buildFunc func(ctx context.Context, surface any) (*model.Document, []Warning, error)

func renderTo(ctx context.Context, build buildFunc, s render.Surface) (*model.Document, []Warning, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("patro: nil surface")
	}
	doc, warnings, err := build(ctx, s)
	if err != nil {
		return nil, warnings, err
	}
	if err := render.Render(doc, s); err != nil {
		return doc, warnings, fmt.Errorf("rendering: %w", err)
	}
	return doc, warnings, nil
}

func newPDF(opts options) *render.PDF {
	cfg := render.DefaultPDFConfig()
	cfg.Logger = opts.loggerOrNop()
	return render.NewPDFWithConfig(paper.Resolve(opts.paper), cfg)
}

func savePDF(ctx context.Context, opts options, build buildFunc, filename string) ([]Warning, error) {
	pdf := newPDF(opts)
	_, warnings, err := renderTo(ctx, build, pdf)
	if err != nil {
		return warnings, err
	}
	return warnings, pdf.Save(filename)
}

func writePDF(ctx context.Context, opts options, build buildFunc, w io.Writer) ([]Warning, error) {
	pdf := newPDF(opts)
	_, warnings, err := renderTo(ctx, build, pdf)
	if err != nil {
		return warnings, err
	}
	return warnings, pdf.Write(w)
}
