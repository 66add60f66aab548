// Package recruit implements the HTTP handlers for postings and applications.
//
// All mutating routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET  /jobs                        → active postings (?all=1 for admin view)
//	POST /jobs                        → create posting
//	GET  /jobs/{id}                   → posting detail
//	POST /jobs/{id}/toggle            → flip active flag
//	POST /jobs/{id}/update            → edit posting (skill edits re-screen)
//	GET  /jobs/{id}/applications      → applications by posting, best match first
//	POST /jobs/{id}/apply             → multipart resume submission
//	GET  /applications                → all (?status= or ?candidate= filters)
//	GET  /applications/{id}           → application detail
//	POST /applications/{id}/status    → permissive status write
//	POST /applications/{id}/note      → set free-text note
//	POST /applications/{id}/interview → schedule (or update with "update":true)
//	POST /applications/{id}/cancel    → cancel interview, status untouched
package recruit

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// maxResumeBytes caps multipart memory use for resume uploads.
const maxResumeBytes = 10 << 20

// Handler holds shared dependencies.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all recruitment routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobAction)
	mux.HandleFunc("/applications", h.handleApplications)
	mux.HandleFunc("/applications/", h.handleApplicationAction)
}

// ─── Route dispatch ───────────────────────────────────────────────────────────

// handleJobs handles GET /jobs and POST /jobs.
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listJobs(w, r)
	case http.MethodPost:
		h.createJob(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobAction handles GET /jobs/{id}, GET /jobs/{id}/applications and
// POST /jobs/{id}/toggle|update|apply.
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	jobID, err := strconv.Atoi(parts[1])
	if err != nil {
		jsonError(w, "invalid job id", http.StatusBadRequest)
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getJob(w, r, jobID)
		return
	}

	switch action := parts[2]; action {
	case "applications":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listJobApplications(w, r, jobID)
	case "toggle":
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.toggleJob(w, r, jobID)
	case "update":
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.updateJob(w, r, jobID)
	case "apply":
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.applyForJob(w, r, jobID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// handleApplications handles GET /applications with optional filters.
func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.listApplications(w, r)
}

// handleApplicationAction handles GET /applications/{id} and
// POST /applications/{id}/status|note|interview|cancel.
func (h *Handler) handleApplicationAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	appID, err := strconv.Atoi(parts[1])
	if err != nil {
		jsonError(w, "invalid application id", http.StatusBadRequest)
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.getApplication(w, r, appID)
		return
	}

	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action := parts[2]; action {
	case "status":
		h.updateStatus(w, r, appID)
	case "note":
		h.setNote(w, r, appID)
	case "interview":
		h.scheduleInterview(w, r, appID)
	case "cancel":
		h.cancelInterview(w, r, appID)
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
	}
}

// ─── Job handlers ─────────────────────────────────────────────────────────────

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	var (
		jobs []JobPosting
		err  error
	)
	if r.URL.Query().Get("all") != "" {
		jobs, err = h.svc.ListAllJobs(r.Context())
	} else {
		jobs, err = h.svc.ListActiveJobs(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, jobs)
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var in JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.svc.CreateJob(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request, jobID int) {
	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) toggleJob(w http.ResponseWriter, r *http.Request, jobID int) {
	job, err := h.svc.ToggleJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request, jobID int) {
	var in JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.svc.UpdateJob(r.Context(), jobID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) listJobApplications(w http.ResponseWriter, r *http.Request, jobID int) {
	if _, err := h.svc.GetJob(r.Context(), jobID); err != nil {
		h.writeError(w, err)
		return
	}
	apps, err := h.svc.ListByJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) applyForJob(w http.ResponseWriter, r *http.Request, jobID int) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		jsonError(w, "please select a resume file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	app, err := h.svc.SubmitApplication(
		r.Context(), jobID, userID, file, header.Filename, r.FormValue("notes"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

// ─── Application handlers ─────────────────────────────────────────────────────

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	var (
		apps []Application
		err  error
	)
	switch q := r.URL.Query(); {
	case q.Get("status") != "":
		apps, err = h.svc.ListByStatus(r.Context(), q.Get("status"))
	case q.Get("candidate") != "":
		var candidateID int
		candidateID, err = strconv.Atoi(q.Get("candidate"))
		if err != nil {
			jsonError(w, "invalid candidate id", http.StatusBadRequest)
			return
		}
		apps, err = h.svc.ListByCandidate(r.Context(), candidateID)
	default:
		apps, err = h.svc.ListAllApplications(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request, appID int) {
	app, err := h.svc.GetApplication(r.Context(), appID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, appID int) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		jsonError(w, "body must contain status", http.StatusBadRequest)
		return
	}

	app, err := h.svc.UpdateStatus(r.Context(), appID, body.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) setNote(w http.ResponseWriter, r *http.Request, appID int) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	app, err := h.svc.SetNote(r.Context(), appID, body.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request, appID int) {
	var body struct {
		InterviewInput
		Update bool `json:"update"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var (
		app *Application
		err error
	)
	if body.Update {
		app, err = h.svc.UpdateInterview(r.Context(), appID, body.InterviewInput)
	} else {
		app, err = h.svc.ScheduleInterview(r.Context(), appID, body.InterviewInput)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

func (h *Handler) cancelInterview(w http.ResponseWriter, r *http.Request, appID int) {
	app, err := h.svc.CancelInterview(r.Context(), appID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	jsonOK(w, app)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// callerID extracts and parses the x-user-id header. On failure it writes the
// error response and returns ok=false.
func callerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.Header.Get("x-user-id")
	if raw == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, "invalid x-user-id header", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &verr):
		jsonError(w, verr.Msg, http.StatusBadRequest)
	default:
		log.Printf("[recruit] internal error: %v", err)
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
