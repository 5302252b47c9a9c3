package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

// Stored files never change content under the same name.
const immutableCache = "public, max-age=31536000, immutable"

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	meta, _ := strconv.ParseBool(r.URL.Query().Get("meta"))
	if meta {
		images, err := s.gallery.Images(r.Context())
		if err != nil {
			s.listFailed(w, err)
			return
		}
		respondJSON(w, http.StatusOK, images)
		return
	}
	names, err := s.gallery.Names(r.Context())
	if err != nil {
		s.listFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func (s *Server) listFailed(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("list photos")
	if !errors.Is(err, model.ErrListing) {
		err = errors.Join(model.ErrListing, err)
	}
	respondError(w, http.StatusInternalServerError, err)
}

func (s *Server) handleOriginal(w http.ResponseWriter, r *http.Request) {
	path, err := s.store.OriginalPath(r.PathValue("name"))
	if err != nil {
		respondError(w, http.StatusNotFound, model.ErrNotFound)
		return
	}
	serveFile(w, r, path, "")
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	path, err := s.store.ResolveThumbnail(r.PathValue("name"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			err = model.ErrNotFound
		}
		respondError(w, status, err)
		return
	}
	serveFile(w, r, path, "image/jpeg")
}

func serveFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		respondError(w, http.StatusNotFound, model.ErrNotFound)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Cache-Control", immutableCache)
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.uploads.Check(r); err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	res, err := s.store.Delete(r.PathValue("name"))
	if err != nil {
		respondError(w, statusFor(err), err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
