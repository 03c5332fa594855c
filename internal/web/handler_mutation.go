package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/stowaway/internal/domain"
	"github.com/vbonduro/stowaway/internal/service"
)

type createPlaceRequest struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	GroupID *string `json:"groupId"`
}

type createContainerRequest struct {
	PlaceID  string  `json:"placeId"`
	Name     string  `json:"name"`
	QRCodeID *string `json:"qrCodeId"`
	GroupID  *string `json:"groupId"`
}

type shareRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type createGroupRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parentId"`
}

type createItemRequest struct {
	ContainerID string   `json:"containerId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	GroupID     *string  `json:"groupId"`
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request) {
	var req createPlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	p, err := s.service.CreatePlace(r.Context(), actorFrom(r), service.NewPlace{
		Name:    req.Name,
		Type:    domain.ParsePlaceType(req.Type),
		GroupID: req.GroupID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var req createContainerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	c, err := s.service.CreateContainer(r.Context(), actorFrom(r), service.NewContainer{
		PlaceID:  req.PlaceID,
		Name:     req.Name,
		QRCodeID: req.QRCodeID,
		GroupID:  req.GroupID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	item, err := s.service.CreateItem(r.Context(), actorFrom(r), service.NewItem{
		ContainerID: req.ContainerID,
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		GroupID:     req.GroupID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteItem(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePlace(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharePlace(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleViewer
	}
	if err := s.service.SharePlace(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.UserID, role); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteContainer(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return
	}
	g, err := s.service.CreateGroup(r.Context(), actorFrom(r), service.NewGroup{
		Name:     req.Name,
		Type:     domain.GroupType(req.Type),
		ParentID: req.ParentID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}
