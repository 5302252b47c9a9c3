package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/PhotoDrop/internal/fixtures"
	"github.com/dharsanguruparan/PhotoDrop/internal/model"
)

// uploadFields are the multipart field names accepted as files.
var uploadFields = map[string]bool{"photos": true, "photo": true, "file": true}

var errNoFiles = errors.New("no files uploaded")

type uploadedFile struct {
	name string
	data []byte
	err  error
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.uploads.Check(r); err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes())
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("expecting multipart form: %w", err))
		return
	}
	files, err := s.readFiles(mr)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, errNoFiles)
		return
	}

	result := model.BatchResult{Items: []model.StoreResult{}, Errors: []model.ItemError{}}
	for _, f := range files {
		if f.err != nil {
			result.Add(f.name, nil, f.err)
			continue
		}
		res, err := s.storeOne(f)
		result.Add(f.name, res, err)
	}
	log.Info().Int("stored", len(result.Items)).Int("failed", len(result.Errors)).Msg("upload processed")

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, result)
}

// readFiles buffers every file part. A file over the size limit is recorded
// as a failed item; more files than allowed fails the whole request.
func (s *Server) readFiles(mr *multipart.Reader) ([]uploadedFile, error) {
	var files []uploadedFile
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if !uploadFields[part.FormName()] || part.FileName() == "" {
			part.Close()
			continue
		}
		if len(files) == s.cfg.MaxFiles {
			part.Close()
			return nil, fmt.Errorf("too many files: at most %d per request", s.cfg.MaxFiles)
		}
		files = append(files, s.readPart(part))
		part.Close()
	}
}

func (s *Server) readPart(part *multipart.Part) uploadedFile {
	f := uploadedFile{name: part.FileName()}
	data, err := io.ReadAll(io.LimitReader(part, s.cfg.MaxFileSize+1))
	switch {
	case err != nil:
		f.err = fmt.Errorf("%s: %w: %w", f.name, model.ErrProcessingFailed, err)
	case int64(len(data)) > s.cfg.MaxFileSize:
		f.err = fmt.Errorf("%s: %w: file exceeds %d bytes", f.name, model.ErrProcessingFailed, s.cfg.MaxFileSize)
	default:
		f.data = data
	}
	return f
}

// storeOne isolates one file so a panic in decoding does not take down the
// rest of the batch.
func (s *Server) storeOne(f uploadedFile) (res *model.StoreResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("file", f.name).Msg("store panicked")
			res, err = nil, fmt.Errorf("%s: %w", f.name, model.ErrProcessingFailed)
		}
	}()
	return s.store.Save(f.data, f.name, model.StoreOptions{Overwrite: true})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.SeedEnabled {
		respondError(w, http.StatusNotFound, model.ErrNotFound)
		return
	}
	if err := s.seeds.Check(r); err != nil {
		respondError(w, http.StatusUnauthorized, err)
		return
	}
	result := fixtures.Seed(s.store)
	if result.Items == nil {
		result.Items = []model.StoreResult{}
	}
	if result.Errors == nil {
		result.Errors = []model.ItemError{}
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, result)
}
