// Package factdb exports a FactSet to a SQLite database, giving developer
// tooling an SQL surface over the compiled facts without touching the
// compiler. The export is a write-once artifact of one compilation, not
// state: each export replaces the fact tables wholesale.
package factdb

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vk/fablec/internal/facts"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS exit_edges (
	from_location TEXT NOT NULL,
	to_location TEXT NOT NULL,
	name TEXT NOT NULL,
	guarded INTEGER NOT NULL DEFAULT 0,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS section_jumps (
	from_section TEXT NOT NULL,
	to_section TEXT NOT NULL,
	choice TEXT,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS choices (
	id TEXT PRIMARY KEY,
	section TEXT NOT NULL,
	label TEXT NOT NULL,
	guarded INTEGER NOT NULL DEFAULT 0,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
	id TEXT PRIMARY KEY,
	phase TEXT,
	target_type TEXT,
	selective INTEGER NOT NULL DEFAULT 0,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS property_reads (
	type TEXT NOT NULL,
	property TEXT NOT NULL,
	site_kind TEXT NOT NULL,
	site_id TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS property_writes (
	type TEXT NOT NULL,
	property TEXT NOT NULL,
	site_kind TEXT NOT NULL,
	site_id TEXT NOT NULL,
	file TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reads_property ON property_reads(type, property);
CREATE INDEX IF NOT EXISTS idx_writes_property ON property_writes(type, property);
CREATE INDEX IF NOT EXISTS idx_edges_from ON exit_edges(from_location);
CREATE INDEX IF NOT EXISTS idx_jumps_to ON section_jumps(to_section);
`

var factTables = []string{
	"exit_edges", "section_jumps", "choices", "rules",
	"property_reads", "property_writes", "meta",
}

// Export writes the set to a SQLite database at path, creating the schema
// if needed and replacing any previous export in one transaction.
func Export(ctx context.Context, path string, set *facts.Set) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open fact database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate fact database: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	for _, table := range factTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := insertAll(ctx, tx, set); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, set *facts.Set) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('format', ?)", set.Version); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	for _, e := range set.ExitEdges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO exit_edges (from_location, to_location, name, guarded, file, line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.From, e.To, e.Name, e.Guarded, e.Span.File, e.Span.Line); err != nil {
			return fmt.Errorf("insert exit edge %s/%s: %w", e.From, e.Name, err)
		}
	}
	for _, j := range set.SectionJumps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO section_jumps (from_section, to_section, choice, file, line)
			 VALUES (?, ?, ?, ?, ?)`,
			j.From, j.To, nullable(j.Choice), j.Span.File, j.Span.Line); err != nil {
			return fmt.Errorf("insert section jump %s: %w", j.From, err)
		}
	}
	for _, c := range set.Choices {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO choices (id, section, label, guarded, file, line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Section, c.Label, c.Guarded, c.Span.File, c.Span.Line); err != nil {
			return fmt.Errorf("insert choice %s: %w", c.ID, err)
		}
	}
	for _, r := range set.Rules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rules (id, phase, target_type, selective, file, line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, nullable(r.Phase), nullable(r.TargetType), r.Selective,
			r.Span.File, r.Span.Line); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.ID, err)
		}
	}
	for _, r := range set.Reads {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO property_reads (type, property, site_kind, site_id, file, line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.Type, r.Property, string(r.Site.Kind), r.Site.ID,
			r.Span.File, r.Span.Line); err != nil {
			return fmt.Errorf("insert read %s.%s: %w", r.Type, r.Property, err)
		}
	}
	for _, w := range set.Writes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO property_writes (type, property, site_kind, site_id, file, line)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			w.Type, w.Property, string(w.Site.Kind), w.Site.ID,
			w.Span.File, w.Span.Line); err != nil {
			return fmt.Errorf("insert write %s.%s: %w", w.Type, w.Property, err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
