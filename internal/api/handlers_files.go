package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/storysplit/internal/chapter"
	"github.com/dgallion1/storysplit/internal/library"
	"github.com/dgallion1/storysplit/internal/parser"
)

// handleListFiles lists manuscripts in a folder. With withContent=true the
// files are also loaded and returned as documents.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	folder := q.Get("folder")
	if folder == "" {
		folder = s.library.Folder()
	}
	recursive := q.Get("recursive") == "true"

	files, err := s.library.List(folder, recursive)
	if err != nil {
		if errors.Is(err, library.ErrFolderNotFound) {
			jsonError(w, fmt.Sprintf("Folder '%s' not found", folder), http.StatusNotFound)
			return
		}
		s.log.Error("list files failed", "folder", folder, "error", err)
		jsonError(w, "Failed to read directory", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []library.FileInfo{}
	}

	resp := map[string]any{
		"success":   true,
		"files":     files,
		"count":     len(files),
		"folder":    folder,
		"recursive": recursive,
	}
	if q.Get("withContent") == "true" {
		resp["documents"] = s.library.LoadAll(r.Context(), files)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path query parameter is required", http.StatusBadRequest)
		return
	}

	text, err := s.library.Read(path)
	switch {
	case errors.Is(err, library.ErrFileNotFound):
		jsonError(w, "file not found", http.StatusNotFound)
		return
	case errors.Is(err, parser.ErrUnsupportedType):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("read file failed", "path", path, "error", err)
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"path":    path,
		"content": text,
	})
}

type saveStoryRequest struct {
	StoryName string            `json:"storyName"`
	Chapters  []chapter.Chapter `json:"chapters"`
}

func (s *Server) handleSaveStory(w http.ResponseWriter, r *http.Request) {
	var req saveStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StoryName == "" || req.Chapters == nil {
		jsonError(w, "Invalid request data", http.StatusBadRequest)
		return
	}
	s.saveStory(w, r, req.StoryName, req.Chapters)
}

func (s *Server) saveStory(w http.ResponseWriter, r *http.Request, name string, chapters []chapter.Chapter) {
	res, err := s.library.Save(r.Context(), name, chapters)
	if err != nil {
		if errors.Is(err, library.ErrInvalidName) {
			jsonError(w, "Invalid story name", http.StatusBadRequest)
			return
		}
		s.log.Error("save story failed", "story", name, "error", err)
		jsonError(w, "Failed to save story", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Story saved successfully",
		"fileName": res.FileName,
		"path":     res.Path,
	})
}
