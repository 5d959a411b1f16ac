package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raaihank/record-sentinel/internal/masking"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// recordRequest is the create/update payload. Dates use YYYY-MM-DD.
type recordRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NationalID  string `json:"national_id"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
}

func (req recordRequest) toRecord() (records.Record, error) {
	record := records.Record{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		NationalID: strings.TrimSpace(req.NationalID),
		Email:      strings.TrimSpace(req.Email),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Phone:      strings.TrimSpace(req.Phone),
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			return records.Record{}, errors.New("date_of_birth must be YYYY-MM-DD")
		}
		record.DateOfBirth = dob
	}
	return record, nil
}

type maskRequest struct {
	Category  string `json:"category"`
	Value     string `json:"value"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type maskResponse struct {
	Category masking.Category `json:"category"`
	Masked   string           `json:"masked"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":              "record-sentinel",
		"version":           s.version,
		"storage_driver":    s.config.Storage.Driver,
		"cache_enabled":     s.config.Cache.Enabled,
		"sync_enabled":      s.config.Sync.Enabled,
		"websocket_enabled": s.wsHub != nil,
		"categories":        len(masking.Categories()),
		"uptime":            time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	var (
		list []records.Record
		err  error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		list, err = s.service.Search(r.Context(), query)
	} else {
		list, err = s.service.List(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if !wantMasked(r) {
		writeJSON(w, http.StatusOK, list)
		return
	}
	masked := make([]records.MaskedRecord, 0, len(list))
	for _, record := range list {
		masked = append(masked, record.Masked())
	}
	writeJSON(w, http.StatusOK, masked)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	stored, err := s.service.Add(r.Context(), record)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored.Masked())
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	record, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if wantMasked(r) {
		writeJSON(w, http.StatusOK, record.Masked())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	record.ID = id

	stored, err := s.service.Update(r.Context(), record)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored.Masked())
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, masking.Categories())
}

// handleMask applies a category rule to a single value
func (s *Server) handleMask(w http.ResponseWriter, r *http.Request) {
	var req maskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	category, ok := masking.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	var masked string
	if category == masking.CategoryFullName && req.Value == "" {
		masked = masking.FullName(req.FirstName, req.LastName)
	} else {
		masked = masking.Mask(category, req.Value)
	}
	writeJSON(w, http.StatusOK, maskResponse{Category: category, Masked: masked})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if s.auth == nil || !s.auth.AuthenticateAdmin(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (records.Record, bool) {
	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return records.Record{}, false
	}
	record, err := req.toRecord()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return records.Record{}, false
	}
	return record, true
}

// writeServiceError maps record errors to status codes. Error text never
// contains record values.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, records.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, records.ErrDuplicateID):
		writeError(w, http.StatusConflict, "record already exists")
	default:
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Record operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return uuid.Nil, false
	}
	return id, true
}

// wantMasked reports whether the caller asked for masked output. Masking is
// the default; only masked=false returns raw values.
func wantMasked(r *http.Request) bool {
	return r.URL.Query().Get("masked") != "false"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
