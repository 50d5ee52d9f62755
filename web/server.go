// ABOUTME: HTTP JSON API over the view service, syncer, and annotation store
// ABOUTME: The boundary layer maps core errors to statuses and validates input
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/harperreed/fiveyard/models"
	"github.com/harperreed/fiveyard/store"
	"github.com/harperreed/fiveyard/syncer"
	"github.com/harperreed/fiveyard/views"
)

const maxBodyBytes = 1 << 20

type Server struct {
	store          *store.Store
	views          *views.Service
	syncer         *syncer.Syncer
	excludedOwners []string
	log            *logrus.Entry
	validate       *validator.Validate
	mux            *http.ServeMux
}

func NewServer(st *store.Store, vs *views.Service, sy *syncer.Syncer, excludedOwners []string, log *logrus.Logger) *Server {
	s := &Server{
		store:          st,
		views:          vs,
		syncer:         sy,
		excludedOwners: excludedOwners,
		log:            log.WithField("component", "web"),
		validate:       validator.New(),
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /opportunities", s.handleListOpportunities)
	s.mux.HandleFunc("POST /sync", s.handleSync)
	s.mux.HandleFunc("GET /sync/status", s.handleSyncStatus)
	s.mux.HandleFunc("PUT /opportunities/{id}/priority", s.handleSetPriority)
	s.mux.HandleFunc("PUT /opportunities/{id}/notes", s.handleSetNotes)
	s.mux.HandleFunc("PUT /opportunities/{id}/followup", s.handleSetFollowUp)
	s.mux.HandleFunc("GET /user-preferences", s.handleGetPreferences)
	s.mux.HandleFunc("POST /user-preferences", s.handleSavePreference)
	s.mux.HandleFunc("POST /user-preferences/bulk", s.handleSaveBulkPreferences)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.WithField("addr", addr).Info("starting server")
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := views.Filter{
		UserID:         q.Get("userId"),
		Week:           q.Get("week"),
		Priority:       q.Get("priority"),
		ExcludedOwners: s.excludedOwners,
	}
	switch q.Get("view") {
	case "", "board":
	case "all":
		filter.ShowAll = true
	case "closing":
		filter.NearClose = true
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", q.Get("view")))
		return
	}
	if p := filter.Priority; p != "" && !models.ValidPriority(p) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown priority %q", p))
		return
	}
	if filter.Week != "" {
		if _, _, err := views.WeekBounds(filter.Week); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rows, err := s.views.List(r.Context(), filter)
	if err != nil {
		s.serverError(w, "list opportunities", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	count, err := s.syncer.RunSync(r.Context())
	if errors.Is(err, syncer.ErrSyncInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.serverError(w, "sync", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.syncer.Status(r.Context())
	if err != nil {
		s.serverError(w, "sync status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type priorityRequest struct {
	Priority int    `json:"priority" validate:"required,min=1,max=5"`
	UserID   string `json:"userId"`
}

func (s *Server) handleSetPriority(w http.ResponseWriter, r *http.Request) {
	var req priorityRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "priority must be between 1 and 5")
		return
	}
	pref, ok := s.loadPreference(w, r, req.UserID)
	if !ok {
		return
	}
	pref.Priority = models.ColorForRank(req.Priority)
	s.savePreference(w, r, pref)
}

type notesRequest struct {
	Notes  string `json:"notes"`
	UserID string `json:"userId"`
}

func (s *Server) handleSetNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !s.decode(w, r, &req) {
		return
	}
	pref, ok := s.loadPreference(w, r, req.UserID)
	if !ok {
		return
	}
	pref.Notes = req.Notes
	s.savePreference(w, r, pref)
}

type followUpRequest struct {
	FollowUpDate *string `json:"followUpDate"`
	UserID       string  `json:"userId"`
}

func (s *Server) handleSetFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if !s.decode(w, r, &req) {
		return
	}
	pref, ok := s.loadPreference(w, r, req.UserID)
	if !ok {
		return
	}
	if req.FollowUpDate == nil {
		pref.FollowUpDate = nil
	} else {
		date, err := time.Parse("2006-01-02", *req.FollowUpDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid followUpDate %q", *req.FollowUpDate))
			return
		}
		pref.FollowUpDate = &date
	}
	s.savePreference(w, r, pref)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.GetPreferences(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.serverError(w, "get preferences", err)
		return
	}
	if prefs == nil {
		prefs = []models.UserPreference{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleSavePreference(w http.ResponseWriter, r *http.Request) {
	var pref models.UserPreference
	if !s.decode(w, r, &pref) {
		return
	}
	if err := s.validate.Struct(&pref); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SavePreference(r.Context(), &pref); err != nil {
		s.serverError(w, "save preference", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSaveBulkPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs []models.UserPreference
	if !s.decode(w, r, &prefs) {
		return
	}
	for i := range prefs {
		if err := s.validate.Struct(&prefs[i]); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("record %d: %s", i, err))
			return
		}
	}
	if err := s.store.SaveBulkPreferences(r.Context(), prefs); err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			s.serverError(w, "bulk save", err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(prefs)})
}

// loadPreference fetches the caller's annotation for the opportunity in
// the path, or a fresh default-valued one. The annotation PUT endpoints
// are merges, so the existing row is the starting point.
func (s *Server) loadPreference(w http.ResponseWriter, r *http.Request, userID string) (*models.UserPreference, bool) {
	oppID := r.PathValue("id")
	pref, err := s.store.GetPreference(r.Context(), userID, oppID)
	if err != nil {
		s.serverError(w, "load preference", err)
		return nil, false
	}
	if pref == nil {
		pref = &models.UserPreference{UserID: userID, OpportunityID: oppID}
		pref.ApplyDefaults()
	}
	return pref, true
}

func (s *Server) savePreference(w http.ResponseWriter, r *http.Request, pref *models.UserPreference) {
	if err := s.store.SavePreference(r.Context(), pref); err != nil {
		s.serverError(w, "save preference", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// decode reads a JSON body into dst, mapping malformed input to a 400.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.WithError(err).Error(op + " failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}
