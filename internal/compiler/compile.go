package compiler

import (
	"context"

	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/diag"
	"github.com/vk/fablec/internal/document"
	"github.com/vk/fablec/internal/emitter"
	"github.com/vk/fablec/internal/factext"
	"github.com/vk/fablec/internal/facts"
	"github.com/vk/fablec/internal/hcladapter"
	"github.com/vk/fablec/internal/symtab"
	"github.com/vk/fablec/internal/validator"
)

// Result is the outcome of one compilation. Document is nil unless Success;
// Facts and Index are present whenever extraction succeeded, so analysis
// consumers keep working on worlds that fail validation.
type Result struct {
	Success     bool
	Document    *document.World
	Diagnostics diag.List
	Facts       *facts.Set
	Index       *facts.PropertyDependencyIndex
}

// Option adjusts a compilation run.
type Option func(*config)

type config struct {
	src depgraph.Source
}

// WithSource substitutes the file source, used by tests and editor
// integrations that compile from memory. The default reads from disk.
func WithSource(src depgraph.Source) Option {
	return func(c *config) { c.src = src }
}

// Compile runs the full pipeline from the entry file.
func Compile(ctx context.Context, entry string, opts ...Option) Result {
	cfg := config{src: hcladapter.NewLoader()}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := ctxlog.FromContext(ctx)

	var res Result

	unit, diags := depgraph.Build(ctx, entry, cfg.src)
	res.Diagnostics.Extend(diags)
	if unit == nil || res.Diagnostics.HasErrors() {
		logger.Debug("compilation stopped after graph construction",
			"errors", len(res.Diagnostics.Errors()))
		res.Diagnostics.Sort()
		return res
	}

	tab, diags := symtab.Link(ctx, unit)
	res.Diagnostics.Extend(diags)

	set, diags := factext.Build(ctx, tab)
	res.Diagnostics.Extend(diags)
	if set != nil {
		res.Facts = set
		res.Index = facts.NewPropertyDependencyIndex(set)
	}

	res.Diagnostics.Extend(validator.Validate(ctx, tab, res.Facts, res.Index))

	if res.Diagnostics.HasErrors() {
		logger.Debug("compilation failed",
			"errors", len(res.Diagnostics.Errors()),
			"warnings", len(res.Diagnostics)-len(res.Diagnostics.Errors()))
		res.Diagnostics.Sort()
		return res
	}

	doc, diags := emitter.Emit(ctx, tab)
	res.Diagnostics.Extend(diags)
	if res.Diagnostics.HasErrors() {
		res.Diagnostics.Sort()
		return res
	}

	res.Success = true
	res.Document = doc
	res.Diagnostics.Sort()
	logger.Info("world compiled",
		"title", doc.Meta.Title,
		"locations", len(doc.Locations),
		"sections", len(doc.Sections),
		"warnings", len(res.Diagnostics))
	return res
}
