// Package store persists feed definitions in sqlite. Posts are never stored;
// every search goes to the API.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/tumblrsearch/internal/domain"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Feed is one registered feed.
type Feed struct {
	Identifier string
	Title      string
	Abstract   string
	Blog       string
	Tags       []string
	PostType   string // empty selects the configured default
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertFeed inserts f or updates the stored row with the same identifier.
// CreatedAt is kept on update.
func (s *Store) UpsertFeed(ctx context.Context, f Feed) (Feed, error) {
	if s == nil || s.db == nil {
		return Feed{}, errors.New("store is not initialized")
	}

	id := strings.TrimSpace(f.Identifier)
	if id == "" {
		return Feed{}, fmt.Errorf("%w: identifier is required", domain.ErrInvalidFeed)
	}
	blog := strings.TrimSpace(f.Blog)
	if blog == "" {
		return Feed{}, fmt.Errorf("%w: blog is required", domain.ErrInvalidFeed)
	}

	now := formatTime(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feeds (
			identifier, title, abstract, blog, tags, post_type, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			blog = excluded.blog,
			tags = excluded.tags,
			post_type = excluded.post_type,
			updated_at = excluded.updated_at
	`,
		id,
		strings.TrimSpace(f.Title),
		strings.TrimSpace(f.Abstract),
		blog,
		joinTags(f.Tags),
		strings.TrimSpace(f.PostType),
		now,
		now,
	)
	if err != nil {
		return Feed{}, fmt.Errorf("upsert feed: %w", err)
	}

	return s.GetFeed(ctx, id)
}

// GetFeed returns the feed with identifier id, or domain.ErrFeedNotFound.
func (s *Store) GetFeed(ctx context.Context, id string) (Feed, error) {
	if s == nil || s.db == nil {
		return Feed{}, errors.New("store is not initialized")
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT identifier, title, abstract, blog, tags, post_type, created_at, updated_at
		FROM feeds
		WHERE identifier = ?
	`, id)

	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Feed{}, fmt.Errorf("%w: %q", domain.ErrFeedNotFound, id)
	}
	return f, err
}

// ListFeeds returns all feeds ordered by identifier.
func (s *Store) ListFeeds(ctx context.Context) ([]Feed, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, title, abstract, blog, tags, post_type, created_at, updated_at
		FROM feeds
		ORDER BY identifier
	`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, nil
}

// DeleteFeed removes the feed with identifier id. Deleting an unknown feed
// returns domain.ErrFeedNotFound.
func (s *Store) DeleteFeed(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM feeds WHERE identifier = ?", id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", domain.ErrFeedNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(scanner rowScanner) (Feed, error) {
	var (
		f                    Feed
		tags                 string
		createdAt, updatedAt string
	)
	if err := scanner.Scan(&f.Identifier, &f.Title, &f.Abstract, &f.Blog, &tags, &f.PostType, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Feed{}, err
		}
		return Feed{}, fmt.Errorf("scan feed: %w", err)
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return Feed{}, fmt.Errorf("parse created_at: %w", err)
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Feed{}, fmt.Errorf("parse updated_at: %w", err)
	}
	f.Tags = splitTags(tags)
	return f, nil
}

func joinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, value)
}
