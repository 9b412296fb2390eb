package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"complaint-desk/internal/model"
	"complaint-desk/internal/perm"
	"complaint-desk/internal/store"

	"go.uber.org/zap"
)

const (
	msgNotAuthenticated   = "Not authenticated"
	msgServerError        = "Server error"
	msgNoData             = "No data provided"
	msgMissingFields      = "Missing required fields"
	msgMissingID          = "Missing complaint ID"
	msgNotFound           = "Complaint not found"
	msgPermissionDenied   = "Permission denied"
	msgAdminRequired      = "Admin access required"
	msgInvalidRequest     = "Invalid request data"
	msgAdminsCannotSubmit = "Admins cannot submit complaints"
	msgComplaintEmpty     = "Complaint cannot be empty"
	msgComplaintTooShort  = "Complaint must be at least 10 characters long"
	msgMissingCredentials = "Please provide both email and password"
	msgInvalidCredentials = "Invalid email or password"
	msgEmailRegistered    = "Email already registered"
)

// Change kinds carried by complaints.changed events.
const (
	ChangeCreated  = "created"
	ChangeUpdated  = "updated"
	ChangeDeleted  = "deleted"
	ChangeStatus   = "status"
	EventChanged   = "complaints.changed"
	maxRequestBody = 64 << 10
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type complaintPayload struct {
	ComplaintID string `json:"complaint_id"`
	Complaint   string `json:"complaint"`
	Status      string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeSuccess(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

// decodeBody reads a JSON object. ok is false when the body is missing or not
// JSON, which the handlers report as "no data".
func decodeBody(r *http.Request, dst any) bool {
	if r.Body == nil {
		return false
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil || len(strings.TrimSpace(string(b))) == 0 {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("handler failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeFailure(w, http.StatusInternalServerError, msgServerError)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(r, &in) || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeFailure(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}
	u, err := s.store.Authenticate(r.Context(), in.Email, in.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		writeFailure(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := s.issueSession(w, u); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(r, &in) || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeFailure(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}
	u, err := s.store.CreateUser(r.Context(), in.Email, in.Name, in.Password, false)
	if errors.Is(err, store.ErrUserExists) {
		writeFailure(w, http.StatusConflict, msgEmailRegistered)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if err := s.issueSession(w, u); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	clearSession(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (s *Server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	list, err := s.store.ListComplaints(r.Context(), perm.ListScope(u))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "complaints": list})
}

func (s *Server) handleSubmitComplaint(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if !perm.CanSubmit(u) {
		writeFailure(w, http.StatusForbidden, msgAdminsCannotSubmit)
		return
	}
	var in complaintPayload
	_ = decodeBody(r, &in)
	text, err := model.ValidateComplaintText(in.Complaint)
	switch {
	case errors.Is(err, model.ErrComplaintEmpty):
		writeFailure(w, http.StatusBadRequest, msgComplaintEmpty)
		return
	case errors.Is(err, model.ErrComplaintTooShort):
		writeFailure(w, http.StatusBadRequest, msgComplaintTooShort)
		return
	}
	c, err := s.store.CreateComplaint(r.Context(), u, text)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.hub.broadcast(EventChanged, Change{ID: c.ID, Kind: ChangeCreated})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "complaint": c})
}

func (s *Server) handleUpdateComplaint(w http.ResponseWriter, r *http.Request) {
	var in complaintPayload
	if !decodeBody(r, &in) {
		writeFailure(w, http.StatusBadRequest, msgNoData)
		return
	}
	id := strings.TrimSpace(in.ComplaintID)
	text, err := model.ValidateComplaintText(in.Complaint)
	if id == "" || errors.Is(err, model.ErrComplaintEmpty) {
		writeFailure(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err != nil {
		writeFailure(w, http.StatusBadRequest, msgComplaintTooShort)
		return
	}
	if !s.authorizeOwner(w, r, id) {
		return
	}
	if err := s.store.UpdateComplaintText(r.Context(), id, text); err != nil {
		s.storeFailure(w, r, err)
		return
	}
	s.hub.broadcast(EventChanged, Change{ID: id, Kind: ChangeUpdated})
	writeSuccess(w, "Complaint updated successfully")
}

func (s *Server) handleDeleteComplaint(w http.ResponseWriter, r *http.Request) {
	var in complaintPayload
	if !decodeBody(r, &in) {
		writeFailure(w, http.StatusBadRequest, msgNoData)
		return
	}
	id := strings.TrimSpace(in.ComplaintID)
	if id == "" {
		writeFailure(w, http.StatusBadRequest, msgMissingID)
		return
	}
	if !s.authorizeOwner(w, r, id) {
		return
	}
	if err := s.store.DeleteComplaint(r.Context(), id); err != nil {
		s.storeFailure(w, r, err)
		return
	}
	s.hub.broadcast(EventChanged, Change{ID: id, Kind: ChangeDeleted})
	writeSuccess(w, "Complaint deleted successfully")
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if !perm.CanToggleStatus(u) {
		writeFailure(w, http.StatusForbidden, msgAdminRequired)
		return
	}
	var in complaintPayload
	if !decodeBody(r, &in) {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	id := strings.TrimSpace(in.ComplaintID)
	status := model.Status(in.Status)
	if id == "" || !status.Valid() {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := s.store.SetResolved(r.Context(), id, status.Resolved(), u.Email); err != nil {
		s.storeFailure(w, r, err)
		return
	}
	s.hub.broadcast(EventChanged, Change{ID: id, Kind: ChangeStatus})
	verb := "reopened"
	if status.Resolved() {
		verb = "resolved"
	}
	writeSuccess(w, "Complaint "+verb+" successfully")
}

// authorizeOwner lets admins through and otherwise requires the session user
// to own the complaint. It writes the failure response itself.
func (s *Server) authorizeOwner(w http.ResponseWriter, r *http.Request, id string) bool {
	u, _ := userFrom(r.Context())
	c, err := s.store.GetComplaint(r.Context(), id)
	if err != nil {
		s.storeFailure(w, r, err)
		return false
	}
	if !perm.CanEditComplaint(u, c) {
		writeFailure(w, http.StatusForbidden, msgPermissionDenied)
		return false
	}
	return true
}

func (s *Server) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if store.IsNotFound(err) {
		writeFailure(w, http.StatusNotFound, msgNotFound)
		return
	}
	s.serverError(w, r, err)
}
