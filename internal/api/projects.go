package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gogpu/studio/document"
	"github.com/gogpu/studio/export"
	"github.com/gogpu/studio/store"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.Projects(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	if ps == nil {
		ps = []store.Project{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// projectData decodes and validates a snapshot body and renders its
// thumbnail.
func (s *Server) projectData(w http.ResponseWriter, r *http.Request) (store.ProjectData, error) {
	body, err := readBody(w, r)
	if err != nil {
		return store.ProjectData{}, err
	}
	scene, err := document.Deserialize(body)
	if err != nil {
		return store.ProjectData{}, err
	}
	thumb, err := export.Thumbnail(r.Context(), scene, s.cfg.Export.Thumbnail, s.renderer)
	if err != nil {
		return store.ProjectData{}, err
	}
	width, height := scene.Size()
	return store.ProjectData{
		Name:      r.URL.Query().Get("name"),
		Width:     width,
		Height:    height,
		Document:  body,
		Thumbnail: thumb,
	}, nil
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	d, err := s.projectData(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.CreateProject(r.Context(), d)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Project-Name", p.Name)
	w.Write(p.Document)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	d, err := s.projectData(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	thumb, err := s.store.Thumbnail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(thumb)
}

// loadScene fetches and decodes a stored project.
func (s *Server) loadScene(r *http.Request) (*store.Project, *document.Scene, error) {
	p, err := s.store.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, nil, err
	}
	scene, err := document.Deserialize(p.Document)
	if err != nil {
		return nil, nil, err
	}
	return p, scene, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = s.cfg.Export.Format
	}
	opts := export.Options{
		Scale:    s.cfg.Export.Scale,
		Quality:  s.cfg.Export.Quality,
		Renderer: s.renderer,
	}
	var err error
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, badRequest{fmt.Errorf("api: scale: %w", err)})
			return
		}
	}
	if v := q.Get("quality"); v != "" {
		if opts.Quality, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, badRequest{fmt.Errorf("api: quality: %w", err)})
			return
		}
	}
	if v := q.Get("transparent"); v != "" {
		if opts.Transparent, err = strconv.ParseBool(v); err != nil {
			writeError(w, badRequest{fmt.Errorf("api: transparent: %w", err)})
			return
		}
	}

	f, err := export.Lookup(format)
	if err != nil {
		writeError(w, err)
		return
	}
	p, scene, err := s.loadScene(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := export.ExportOne(r.Context(), scene, format, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.MediaType)
	w.Header().Set("Content-Disposition", attachment(export.SanitizeName(p.Name)+"."+f.Extension))
	w.Write(data)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	ratios := s.cfg.Export.Presets
	if len(strings.TrimSpace(string(body))) > 0 {
		ratios = nil
		if err := json.Unmarshal(body, &ratios); err != nil {
			writeError(w, badRequest{fmt.Errorf("api: ratios: %w", err)})
			return
		}
	}
	p, scene, err := s.loadScene(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "png"
	}
	res, err := export.ExportMany(r.Context(), scene, ratios,
		export.WithFormat(format),
		export.WithConcurrency(s.cfg.Export.Concurrency),
		export.WithRenderer(s.renderer))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(res.Failed) > 0 {
		w.Header().Set("X-Failed-Ratios", strings.Join(res.Failed, ","))
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment(export.SanitizeName(p.Name)+".zip"))
	w.Write(res.Archive)
}

func attachment(filename string) string {
	return `attachment; filename="` + filename + `"`
}
