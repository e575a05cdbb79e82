package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"lisp/internal/object"
	"lisp/internal/reader"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Binding kinds stored in the kind column.
const (
	KindVar     = "var"
	KindSpecial = "defvar"
	KindConst   = "defconst"
	KindFunc    = "func"

	// KindImage marks that an image exists, whatever bindings it holds.
	KindImage = "image"
)

var ErrUnknownImage = errors.New("unknown image")

const schema = `CREATE TABLE IF NOT EXISTS lisp_image (
	image VARCHAR(255) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	name VARCHAR(255) NOT NULL,
	form TEXT NOT NULL,
	PRIMARY KEY (image, kind, name)
)`

// Store saves the global bindings of an Env as printed forms, one row per
// binding, and reads them back through the reader.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects with one of the registered drivers: sqlite3, mysql or
// postgres.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite3", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported image driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s image database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s image database: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create image table: %w", err)
	}
	slog.Debug("image store opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type row struct {
	kind string
	name string
	form string
}

// Save replaces the image called name with the current global bindings.
// Values without a readable printed form are skipped and counted.
func (s *Store) Save(ctx context.Context, name string, env *object.Env) (saved, skipped int, err error) {
	rows, skipped := snapshot(env)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin image transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.rebind("DELETE FROM lisp_image WHERE image = ?"), name); err != nil {
		return 0, 0, fmt.Errorf("failed to clear image %s: %w", name, err)
	}
	insert, err := tx.PrepareContext(ctx, s.rebind("INSERT INTO lisp_image (image, kind, name, form) VALUES (?, ?, ?, ?)"))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare image insert: %w", err)
	}
	defer insert.Close()

	if _, err = insert.ExecContext(ctx, name, KindImage, "", ""); err != nil {
		return 0, 0, fmt.Errorf("failed to mark image %s: %w", name, err)
	}
	for _, r := range rows {
		if _, err = insert.ExecContext(ctx, name, r.kind, r.name, r.form); err != nil {
			return 0, 0, fmt.Errorf("failed to save %s %s: %w", r.kind, r.name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit image %s: %w", name, err)
	}

	slog.Info("image saved",
		slog.String("image", name),
		slog.Int("saved", len(rows)),
		slog.Int("skipped", skipped))
	return len(rows), skipped, nil
}

func snapshot(env *object.Env) ([]row, int) {
	var rows []row
	skipped := 0
	for sym, b := range env.Vars() {
		if !object.Readable(b.Value) {
			skipped++
			continue
		}
		kind := KindVar
		switch {
		case b.Constant:
			kind = KindConst
		case b.Special:
			kind = KindSpecial
		}
		rows = append(rows, row{kind: kind, name: sym.Name, form: b.Value.Inspect()})
	}
	for sym, fn := range env.Funcs() {
		if !object.Readable(fn) {
			skipped++
			continue
		}
		rows = append(rows, row{kind: KindFunc, name: sym.Name, form: fn.Inspect()})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].kind != rows[j].kind {
			return rows[i].kind < rows[j].kind
		}
		return rows[i].name < rows[j].name
	})
	return rows, skipped
}

// Restore rebinds every binding of the image called name in env. Forms are
// read into arena and copied into the arena of env, so arena can be released
// afterwards.
func (s *Store) Restore(ctx context.Context, name string, env *object.Env, arena *object.Arena) (int, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind("SELECT kind, name, form FROM lisp_image WHERE image = ? ORDER BY kind, name"), name)
	if err != nil {
		return 0, fmt.Errorf("failed to query image %s: %w", name, err)
	}
	defer rows.Close()

	restored := 0
	found := false
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.kind, &r.name, &r.form); err != nil {
			return restored, fmt.Errorf("failed to scan image %s: %w", name, err)
		}
		if r.kind == KindImage {
			found = true
			continue
		}
		if err := rebindRow(r, env, arena); err != nil {
			return restored, fmt.Errorf("failed to restore %s %s: %w", r.kind, r.name, err)
		}
		restored++
	}
	if err := rows.Err(); err != nil {
		return restored, fmt.Errorf("failed to read image %s: %w", name, err)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownImage, name)
	}

	slog.Info("image restored", slog.String("image", name), slog.Int("restored", restored))
	return restored, nil
}

func rebindRow(r row, env *object.Env, arena *object.Arena) error {
	form, n, err := reader.Read(r.form, arena)
	if err != nil {
		return err
	}
	if rest := strings.TrimSpace(r.form[n:]); rest != "" {
		return fmt.Errorf("trailing input %q", rest)
	}
	sym := object.Intern(r.name)
	value := form.CloneIn(env.Arena())

	switch r.kind {
	case KindVar:
		return env.SetVar(sym, value)
	case KindSpecial:
		return env.DefVar(sym, value)
	case KindConst:
		return env.DefConst(sym, value)
	case KindFunc:
		env.SetFunc(sym, value)
		return nil
	}
	return fmt.Errorf("unknown binding kind %q", r.kind)
}

// Images lists the saved image names.
func (s *Store) Images(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind("SELECT image FROM lisp_image WHERE kind = ? ORDER BY image"), KindImage)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes an image and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM lisp_image WHERE image = ?"), name)
	if err != nil {
		return false, fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) rebind(query string) string {
	return rebind(query, s.driver)
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func rebind(query, driver string) string {
	if driver != "postgres" {
		return query
	}
	var out strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			out.WriteString("$" + strconv.Itoa(n))
			continue
		}
		out.WriteRune(ch)
	}
	return out.String()
}
