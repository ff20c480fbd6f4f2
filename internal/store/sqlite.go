package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/slateworks/lessonforge/internal/types"
	_ "modernc.org/sqlite"
)

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the opt-in durable storage driver. It implements the same
// Store contract as MemoryStore on top of a SQLite database; AUTOINCREMENT
// primary keys preserve the monotonic-id invariant across restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath,
// applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time, and every pooled connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateContent(ctx context.Context, c types.NewContent) (*types.Content, error) {
	now := time.Now().UTC()
	tags, err := marshalStrings(c.Tags)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO content (title, type, subject, grade, difficulty, html_content, tags, is_public, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Title, string(c.Type), c.Subject, c.Grade, string(c.Difficulty), c.HTMLContent, tags, boolToInt(c.IsPublic), c.CreatedByID, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &types.Content{
		ID:          id,
		Title:       c.Title,
		Type:        c.Type,
		Subject:     c.Subject,
		Grade:       c.Grade,
		Difficulty:  c.Difficulty,
		HTMLContent: c.HTMLContent,
		Tags:        cloneTags(c.Tags),
		IsPublic:    c.IsPublic,
		CreatedByID: c.CreatedByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const contentColumns = "id, title, type, subject, grade, difficulty, html_content, tags, is_public, created_by_id, created_at, updated_at"

func (s *SQLiteStore) GetContent(ctx context.Context, id int64) (*types.Content, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM content WHERE id = ?", id)
	rec, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListContent(ctx context.Context) ([]types.Content, error) {
	return s.queryContent(ctx, "SELECT "+contentColumns+" FROM content ORDER BY id")
}

func (s *SQLiteStore) ListContentByOwner(ctx context.Context, ownerID int64) ([]types.Content, error) {
	return s.queryContent(ctx,
		"SELECT "+contentColumns+" FROM content WHERE created_by_id = ? ORDER BY id", ownerID)
}

func (s *SQLiteStore) queryContent(ctx context.Context, query string, args ...any) ([]types.Content, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.Content{}
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateContent(ctx context.Context, id int64, patch types.ContentPatch) (*types.Content, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+contentColumns+" FROM content WHERE id = ?", id)
	rec, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	applyPatch(rec, patch)
	rec.UpdatedAt = time.Now().UTC()

	tags, err := marshalStrings(rec.Tags)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE content
		SET title = ?, type = ?, subject = ?, grade = ?, difficulty = ?, html_content = ?, tags = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`, rec.Title, string(rec.Type), rec.Subject, rec.Grade, string(rec.Difficulty), rec.HTMLContent, tags, boolToInt(rec.IsPublic), rec.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) DeleteContent(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "content", id)
}

func (s *SQLiteStore) CreateSuggestion(ctx context.Context, sg types.NewTopicSuggestion) (*types.TopicSuggestion, error) {
	now := time.Now().UTC()
	levels, err := marshalStrings(sg.DifficultyLevels)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO topic_suggestions (title, description, subject, grade, category, difficulty_levels, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sg.Title, sg.Description, sg.Subject, sg.Grade, sg.Category, levels, now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &types.TopicSuggestion{
		ID:               id,
		Title:            sg.Title,
		Description:      sg.Description,
		Subject:          sg.Subject,
		Grade:            sg.Grade,
		Category:         sg.Category,
		DifficultyLevels: cloneTags(sg.DifficultyLevels),
		CreatedAt:        now,
	}, nil
}

const suggestionColumns = "id, title, description, subject, grade, category, difficulty_levels, created_at"

func (s *SQLiteStore) GetSuggestion(ctx context.Context, id int64) (*types.TopicSuggestion, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+suggestionColumns+" FROM topic_suggestions WHERE id = ?", id)
	rec, err := scanSuggestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListSuggestions(ctx context.Context, subject, grade string, limit int) ([]types.TopicSuggestion, error) {
	query := "SELECT " + suggestionColumns + " FROM topic_suggestions WHERE subject = ? AND grade = ? ORDER BY id"
	args := []any{subject, grade}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []types.TopicSuggestion{}
	for rows.Next() {
		rec, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSuggestion(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "topic_suggestions", id)
}

func (s *SQLiteStore) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u types.NewUser) (*types.User, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username = ?", u.Username).Scan(&existing)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateUsername
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)
	`, u.Username, u.PasswordHash, now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &types.User{
		ID:           id,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	var rec types.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username).
		Scan(&rec.ID, &rec.Username, &rec.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{}
	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM content", &stats.ContentCount},
		{"SELECT COUNT(*) FROM topic_suggestions", &stats.SuggestionCount},
		{"SELECT COUNT(*) FROM users", &stats.UserCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// scanContent scans a row into a Content record, handling JSON tag parsing
// and timestamp decoding.
func scanContent(scanner interface{ Scan(...any) error }) (*types.Content, error) {
	var rec types.Content
	var typ, difficulty string
	var tagsJSON sql.NullString
	var isPublic int
	var createdAt, updatedAt string

	err := scanner.Scan(
		&rec.ID,
		&rec.Title,
		&typ,
		&rec.Subject,
		&rec.Grade,
		&difficulty,
		&rec.HTMLContent,
		&tagsJSON,
		&isPublic,
		&rec.CreatedByID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = types.ContentType(typ)
	rec.Difficulty = types.Difficulty(difficulty)
	rec.IsPublic = isPublic != 0

	rec.Tags, err = unmarshalStrings(tagsJSON)
	if err != nil {
		return nil, err
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &rec, nil
}

func scanSuggestion(scanner interface{ Scan(...any) error }) (*types.TopicSuggestion, error) {
	var rec types.TopicSuggestion
	var levelsJSON sql.NullString
	var createdAt string

	err := scanner.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&rec.Subject,
		&rec.Grade,
		&rec.Category,
		&levelsJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DifficultyLevels, err = unmarshalStrings(levelsJSON)
	if err != nil {
		return nil, err
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

// marshalStrings encodes a string slice as JSON for storage; nil stays NULL.
func marshalStrings(v []string) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalStrings(v sql.NullString) ([]string, error) {
	if !v.Valid {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, fmt.Errorf("parse stored list: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
