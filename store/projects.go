package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Project is one saved design.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Document is the serialized scene. List leaves it empty.
	Document []byte `json:"-"`
	// Thumbnail is a PNG preview. List leaves it empty.
	Thumbnail []byte `json:"-"`
}

// ProjectData is the content written by CreateProject and UpdateProject.
type ProjectData struct {
	Name      string
	Width     float64
	Height    float64
	Document  []byte
	Thumbnail []byte
}

// CreateProject stores a new project.
func (s *Store) CreateProject(ctx context.Context, d ProjectData) (*Project, error) {
	if len(d.Document) == 0 {
		return nil, errors.New("store: empty document")
	}
	now := s.now()
	p := &Project{
		ID:        s.newID(),
		Name:      projectName(d.Name),
		Width:     d.Width,
		Height:    d.Height,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
		UpdatedAt: now.UTC().Truncate(time.Millisecond),
		Document:  d.Document,
		Thumbnail: d.Thumbnail,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, width, height, document, thumbnail, created_at_unixms, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Width, p.Height, p.Document, p.Thumbnail, unixms(now), unixms(now))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject replaces a project's content. An empty name keeps the
// current one; a nil thumbnail keeps the current preview.
func (s *Store) UpdateProject(ctx context.Context, id string, d ProjectData) (*Project, error) {
	if len(d.Document) == 0 {
		return nil, errors.New("store: empty document")
	}
	var thumb any
	if d.Thumbnail != nil {
		thumb = d.Thumbnail
	}
	now := s.now()
	err := affected(s.db.ExecContext(ctx,
		`UPDATE projects SET
			name = COALESCE(NULLIF(?, ''), name),
			width = ?, height = ?,
			document = ?,
			thumbnail = COALESCE(?, thumbnail),
			updated_at_unixms = ?
		 WHERE id = ?`,
		strings.TrimSpace(d.Name), d.Width, d.Height, d.Document, thumb, unixms(now), id))
	if err != nil {
		return nil, err
	}
	return s.Project(ctx, id)
}

// Project returns a project with its document and thumbnail.
func (s *Store) Project(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, width, height, document, thumbnail, created_at_unixms, updated_at_unixms
		 FROM projects WHERE id = ?`, id)
	var p Project
	var created, updated int64
	err := row.Scan(&p.ID, &p.Name, &p.Width, &p.Height, &p.Document, &p.Thumbnail, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, p.UpdatedAt = fromUnixms(created), fromUnixms(updated)
	return &p, nil
}

// Projects lists projects, most recently updated first. A non-empty
// query keeps projects whose name contains it, ignoring case.
func (s *Store) Projects(ctx context.Context, query string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, width, height, created_at_unixms, updated_at_unixms
		 FROM projects
		 WHERE ? = '' OR instr(lower(name), lower(?)) > 0
		 ORDER BY updated_at_unixms DESC, id DESC`, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var created, updated int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Width, &p.Height, &created, &updated); err != nil {
			return nil, err
		}
		p.CreatedAt, p.UpdatedAt = fromUnixms(created), fromUnixms(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Thumbnail returns a project's PNG preview, or ErrNotFound when the
// project does not exist or has none.
func (s *Store) Thumbnail(ctx context.Context, id string) ([]byte, error) {
	var thumb []byte
	err := s.db.QueryRowContext(ctx, `SELECT thumbnail FROM projects WHERE id = ?`, id).Scan(&thumb)
	if errors.Is(err, sql.ErrNoRows) || err == nil && len(thumb) == 0 {
		return nil, ErrNotFound
	}
	return thumb, err
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id))
}

func projectName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return name
}
