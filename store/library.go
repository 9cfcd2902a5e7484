package store

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"
)

// LibraryItem is a reusable design element, typically a snapshot of one
// or more elements to be imported into a scene.
type LibraryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tags      []string  `json:"tags"`
	Payload   []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddLibraryItem stores a new library item. Tags are trimmed, and empty
// or repeated tags are dropped.
func (s *Store) AddLibraryItem(ctx context.Context, name string, tags []string, payload []byte) (*LibraryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("store: library item needs a name")
	}
	if len(payload) == 0 {
		return nil, errors.New("store: empty library payload")
	}
	now := s.now()
	item := &LibraryItem{
		ID:        s.newID(),
		Name:      name,
		Tags:      normalizeTags(tags),
		Payload:   payload,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO elements (id, name, tags, payload, created_at_unixms) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Name, strings.Join(item.Tags, ","), item.Payload, unixms(now))
	if err != nil {
		return nil, err
	}
	return item, nil
}

// LibraryItem returns one item with its payload.
func (s *Store) LibraryItem(ctx context.Context, id string) (*LibraryItem, error) {
	var item LibraryItem
	var tags string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, tags, payload, created_at_unixms FROM elements WHERE id = ?`, id).
		Scan(&item.ID, &item.Name, &tags, &item.Payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.Tags = splitTags(tags)
	item.CreatedAt = fromUnixms(created)
	return &item, nil
}

// LibraryItems lists items, newest first, without payloads. A non-empty
// tag keeps only items carrying it.
func (s *Store) LibraryItems(ctx context.Context, tag string) ([]LibraryItem, error) {
	tag = strings.TrimSpace(tag)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, tags, created_at_unixms FROM elements
		 WHERE ? = '' OR instr(',' || tags || ',', ',' || ? || ',') > 0
		 ORDER BY created_at_unixms DESC, id DESC`, tag, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LibraryItem
	for rows.Next() {
		var item LibraryItem
		var tags string
		var created int64
		if err := rows.Scan(&item.ID, &item.Name, &tags, &created); err != nil {
			return nil, err
		}
		item.Tags = splitTags(tags)
		item.CreatedAt = fromUnixms(created)
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteLibraryItem removes an item.
func (s *Store) DeleteLibraryItem(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM elements WHERE id = ?`, id))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, ",", " "))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
