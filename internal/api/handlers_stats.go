package api

import (
	"net/http"

	"github.com/dgallion1/storysplit/internal/heading"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	families := map[heading.Kind][]string{}
	for _, f := range s.table.Families() {
		families[f.Kind] = append(families[f.Kind], f.Name)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":        s.sessions.Len(),
		"headingFamilies": families,
	})
}
