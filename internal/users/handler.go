// Package users implements the HTTP handlers for account administration.
//
// Routes:
//
//	GET  /users              → all accounts except the bootstrap admin
//	POST /users              → create account ({username,email,password,group})
//	POST /users/{id}/lock    → toggle lock flag
//	GET  /recruiters         → REC accounts
//	POST /recruiters         → create recruiter with a temporary password
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Handler holds shared dependencies.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all account routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/users", h.handleUsers)
	mux.HandleFunc("/users/", h.handleUserAction)
	mux.HandleFunc("/recruiters", h.handleRecruiters)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listUsers(w, r)
	case http.MethodPost:
		h.createUser(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUserAction handles POST /users/{id}/lock.
func (h *Handler) handleUserAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	userID, err := strconv.Atoi(parts[1])
	if err != nil {
		jsonError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	switch action := parts[2]; action {
	case "lock":
		h.toggleLock(w, r, userID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

func (h *Handler) handleRecruiters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRecruiters(w, r)
	case http.MethodPost:
		h.createRecruiter(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, us)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Group    string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.Group == "" {
		body.Group = GroupCandidate
	}

	u, err := h.svc.Create(r.Context(), body.Username, body.Email, body.Password, body.Group)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, u)
}

func (h *Handler) toggleLock(w http.ResponseWriter, r *http.Request, userID int) {
	u, err := h.svc.ToggleLock(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, u)
}

func (h *Handler) listRecruiters(w http.ResponseWriter, r *http.Request) {
	us, err := h.svc.ListByGroup(r.Context(), GroupRecruiter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, us)
}

func (h *Handler) createRecruiter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, tempPassword, err := h.svc.CreateRecruiter(r.Context(), body.Username, body.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, map[string]any{
		"user":         u,
		"tempPassword": tempPassword,
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &verr):
		jsonError(w, verr.Msg, http.StatusBadRequest)
	default:
		log.Printf("[users] internal error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
