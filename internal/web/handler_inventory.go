package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/search"
	"github.com/vbonduro/stowaway/internal/service"
	"github.com/vbonduro/stowaway/internal/sorting"
)

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if err := s.service.Load(r.Context(), actor.UserID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	snap := s.service.Session(actor.UserID).Store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]int{
		"places":     len(snap.Places),
		"containers": len(snap.Containers),
		"items":      len(snap.Items),
		"groups":     len(snap.Groups),
	})
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	places, err := s.service.Places(r.Context(), actorFrom(r).UserID, service.PlaceQuery{
		Text:    q.Get("q"),
		Sort:    sorting.Strategy(q.Get("sort")),
		GroupID: q.Get("group"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, places)
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	containers, err := s.service.Containers(r.Context(), actorFrom(r).UserID, service.ContainerQuery{
		Text:    q.Get("q"),
		Sort:    sorting.Strategy(q.Get("sort")),
		PlaceID: q.Get("place"),
		GroupID: q.Get("group"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, containers)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.service.Items(r.Context(), actorFrom(r).UserID, service.ItemQuery{
		Text:        q.Get("q"),
		Fields:      splitList(q.Get("fields")),
		Sort:        sorting.Strategy(q.Get("sort")),
		ContainerID: q.Get("container"),
		PlaceID:     q.Get("place"),
		Tag:         q.Get("tag"),
		GroupID:     q.Get("group"),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.service.Groups(r.Context(), actorFrom(r).UserID, domain.GroupType(r.URL.Query().Get("type")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts search.Options
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "limit must be an integer")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "threshold must be a number")
			return
		}
		opts.Threshold = f
	}

	hits, err := s.service.Search(r.Context(), actorFrom(r).UserID, q.Get("q"), opts)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleQRCode(w http.ResponseWriter, r *http.Request) {
	c, err := s.service.ContainerByQRCode(r.Context(), actorFrom(r).UserID, chi.URLParam(r, "code"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "not_found", "no container carries this code")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
