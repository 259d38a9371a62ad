package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/storysplit/internal/library"
	"github.com/dgallion1/storysplit/internal/parser"
	"github.com/dgallion1/storysplit/internal/session"
)

type sessionResponse struct {
	ID      string           `json:"id"`
	Applied bool             `json:"applied"`
	Session session.Snapshot `json:"session"`
}

type createSessionRequest struct {
	Path string `json:"path"` // Manuscript in the library, e.g. "/story/book.txt"
	Name string `json:"name"`
	Text string `json:"text"`
}

// handleCreateSession imports a document into a new session. The document
// comes from a multipart upload ("file"), a library path, or inline text.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var name, text string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var ok bool
		name, text, ok = s.readUpload(w, r)
		if !ok {
			return
		}
	} else {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		switch {
		case req.Path != "":
			t, err := s.library.Read(req.Path)
			switch {
			case errors.Is(err, library.ErrFileNotFound):
				jsonError(w, "file not found", http.StatusNotFound)
				return
			case errors.Is(err, parser.ErrUnsupportedType):
				jsonError(w, err.Error(), http.StatusBadRequest)
				return
			case err != nil:
				s.log.Error("read file failed", "path", req.Path, "error", err)
				jsonError(w, "failed to read file", http.StatusInternalServerError)
				return
			}
			name, text = filepath.Base(req.Path), t
		default:
			name, text = req.Name, req.Text
		}
	}

	sess := session.New(s.table,
		session.WithHistoryLimit(s.cfg.HistoryLimit),
		session.WithLogger(s.log),
	)
	if err := sess.Import(name, text); err != nil {
		jsonError(w, "document is empty", http.StatusBadRequest)
		return
	}

	e := s.sessions.Add(sess)
	var snap session.Snapshot
	e.Do(func(sess *session.Session) { snap = sess.Snapshot() })

	s.log.Info("session created", "session_id", e.ID, "document", name, "chapters", len(snap.Chapters))
	writeJSON(w, http.StatusCreated, sessionResponse{ID: e.ID, Applied: true, Session: snap})
}

// readUpload extracts text from the uploaded file. It writes the error
// response itself and reports false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return "", "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", "", false
	}

	text, err := parser.Extract(bytes.NewReader(data), filename, parser.Options{
		PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		s.log.Warn("extract failed", "filename", filename, "error", err)
		jsonError(w, "could not read document: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return filename, text, true
}

// withSession runs fn against the session named in the URL and writes the
// resulting snapshot.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session.Session) bool) {
	e := s.sessions.Get(chi.URLParam(r, "id"))
	if e == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var resp sessionResponse
	e.Do(func(sess *session.Session) {
		resp.Applied = fn(sess)
		resp.Session = sess.Snapshot()
	})
	resp.ID = e.ID
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(*session.Session) bool { return false })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChapterID string `json:"chapterId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.withSession(w, r, func(sess *session.Session) bool { return sess.Select(req.ChapterID) })
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.withSession(w, r, func(sess *session.Session) bool { return sess.UpdateContent(req.Content) })
}

func (s *Server) handleInsertSplitMarker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Offset int `json:"offset"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.withSession(w, r, func(sess *session.Session) bool { return sess.InsertSplitMarker(req.Offset) })
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*session.Session).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*session.Session).Redo)
}

func (s *Server) handleCommitSplit(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, (*session.Session).CommitSplit)
}

func (s *Server) handleMergeNext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chapterID")
	s.withSession(w, r, func(sess *session.Session) bool { return sess.MergeWithNext(id) })
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chapterID")
	s.withSession(w, r, func(sess *session.Session) bool { return sess.Delete(id) })
}

// handleExport returns the session in the saved-document format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	e := s.sessions.Get(chi.URLParam(r, "id"))
	if e == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var name, text string
	e.Do(func(sess *session.Session) {
		name, text = sess.DocumentName(), sess.Export()
	})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", library.FileName(name)))
	}
	io.WriteString(w, text)
}

// handleSaveSession saves the session's chapters to the library under the
// imported document name, or under storyName when given.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	e := s.sessions.Get(chi.URLParam(r, "id"))
	if e == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		StoryName string `json:"storyName"`
	}
	if r.ContentLength != 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}

	var name string
	var snap session.Snapshot
	e.Do(func(sess *session.Session) {
		name, snap = sess.DocumentName(), sess.Snapshot()
	})
	if req.StoryName != "" {
		name = req.StoryName
	}
	if name == "" || len(snap.Chapters) == 0 {
		jsonError(w, "No story to save", http.StatusBadRequest)
		return
	}

	s.saveStory(w, r, name, snap.Chapters)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
