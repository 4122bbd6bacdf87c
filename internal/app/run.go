package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/fablec/internal/compiler"
	"github.com/vk/fablec/internal/ctxlog"
	"github.com/vk/fablec/internal/document"
	"github.com/vk/fablec/internal/factdb"
)

// ErrCompilationFailed signals that the sources had error diagnostics; the
// diagnostics themselves were already rendered.
var ErrCompilationFailed = fmt.Errorf("compilation failed")

// Run executes one compilation based on the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "entry", a.config.EntryPath)

	res := compiler.Compile(ctx, a.config.EntryPath, a.compileOptions()...)

	for _, d := range res.Diagnostics {
		fmt.Fprintln(a.errW, d.String())
	}

	if !res.Success {
		return ErrCompilationFailed
	}

	if a.config.FactsDB != "" && res.Facts != nil {
		if err := factdb.Export(ctx, a.config.FactsDB, res.Facts); err != nil {
			return fmt.Errorf("exporting facts: %w", err)
		}
		a.logger.Info("fact set exported", "path", a.config.FactsDB)
	}

	if a.config.CheckOnly {
		a.logger.Info("check passed", "warnings", len(res.Diagnostics))
		return nil
	}

	out, err := document.Encode(res.Document)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if a.config.OutPath == "" {
		_, err = a.outW.Write(out)
		return err
	}
	if err := os.WriteFile(a.config.OutPath, out, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	a.logger.Info("document written", "path", a.config.OutPath, "bytes", len(out))
	return nil
}
