package patient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/identity"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/get-all-patients", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/add-patient", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/get-patient/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/delete-patient/{id}", h.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/get-patient/{id}/reports", h.handleListReports).Methods(http.MethodGet)
	r.HandleFunc("/duplicate-patients", h.handleDuplicates).Methods(http.MethodGet)
	r.HandleFunc("/similar-patients", h.handleSimilar).Methods(http.MethodGet)
	r.HandleFunc("/reports/{id}", h.handleGetReport).Methods(http.MethodGet)
	r.HandleFunc("/reports/{id}", h.handleDeleteReport).Methods(http.MethodDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	skip := parseQueryInt(r, "skip", 0)
	limit := parseQueryInt(r, "limit", 100)

	patients, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list patients")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

type createPatientRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Create(r.Context(), req.Name, req.Age, models.Gender(req.Gender))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims := identity.ClaimsFromContext(r.Context())
	if claims == nil || (claims.Role != identity.RoleAdmin && claims.Role != identity.RoleDoctor) {
		http.Error(w, "You do not have permission to delete a patient.", http.StatusForbidden)
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Patient '%s' and %d associated reports deleted.",
			summary.Name, summary.DeletedReportsCount),
		"deleted_patient": summary,
	})
}

func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	reports, err := h.service.ListReports(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to list reports")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name query parameter required", http.StatusBadRequest)
		return
	}

	patients, err := h.service.Duplicates(r.Context(), name)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list duplicate patients")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": patients})
}

func (h *Handler) handleSimilar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name query parameter required", http.StatusBadRequest)
		return
	}

	matches, err := h.service.Similar(r.Context(), name)
	if err != nil {
		logger.Log.WithError(err).Error("failed to find similar patients")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": matches})
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReport(r.Context(), id); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to delete report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			return value
		}
	}
	return defaultValue
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
