package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/formseal/formseal/internal/field"
)

// SQLiteStore persists templates in a single SQLite database file. The PDF
// bytes live in a separate table so that listing stays cheap.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS templates (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	pdf_file_name TEXT NOT NULL DEFAULT '',
	pdf_file_size INTEGER NOT NULL DEFAULT 0,
	page_width    REAL NOT NULL,
	page_height   REAL NOT NULL,
	page_count    INTEGER NOT NULL DEFAULT 1,
	snippet       TEXT NOT NULL DEFAULT '',
	fields        TEXT NOT NULL DEFAULT '[]',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS template_pdfs (
	template_id TEXT PRIMARY KEY REFERENCES templates(id) ON DELETE CASCADE,
	data        BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at DESC);
`

// NewSQLiteStore opens (creating if needed) the database at path and applies
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, t *Template, pdf []byte) error {
	if t.Name == "" {
		return ErrNameRequired
	}
	if len(pdf) == 0 {
		return ErrNoPDF
	}

	t.ID = uuid.NewString()
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	if t.Fields == nil {
		t.Fields = []field.Field{}
	}

	fieldsJSON, err := json.Marshal(t.Fields)
	if err != nil {
		return fmt.Errorf("marshaling fields: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (id, name, description, pdf_file_name, pdf_file_size,
			page_width, page_height, page_count, snippet, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.PDFFileName, t.PDFFileSize,
		t.Page.Width, t.Page.Height, t.Page.Count, t.Snippet, string(fieldsJSON),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO template_pdfs (template_id, data) VALUES (?, ?)`, t.ID, pdf)
	if err != nil {
		return fmt.Errorf("inserting pdf: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

const templateColumns = `id, name, description, pdf_file_name, pdf_file_size,
	page_width, page_height, page_count, snippet, fields, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*Template, error) {
	var (
		t          Template
		fieldsJSON string
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.PDFFileName, &t.PDFFileSize,
		&t.Page.Width, &t.Page.Height, &t.Page.Count, &t.Snippet, &fieldsJSON,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &t.Fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields for template %s: %w", t.ID, err)
	}
	if t.Fields == nil {
		t.Fields = []field.Field{}
	}
	return &t, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) List(ctx context.Context, query string) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		if t.Matches(query) {
			out = append(out, *t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) UpdateFields(ctx context.Context, id string, fields []field.Field) (*Template, error) {
	if err := field.ValidateList(fields); err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET fields = ?, updated_at = ? WHERE id = ?`,
		string(fieldsJSON), now(), id)
	if err != nil {
		return nil, fmt.Errorf("updating fields: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Rename(ctx context.Context, id, name, description string) (*Template, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, now(), id)
	if err != nil {
		return nil, fmt.Errorf("renaming template: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireAffected(res, id)
}

func (s *SQLiteStore) PDF(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM template_pdfs WHERE template_id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying pdf: %w", err)
	}
	return data, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
