package xray

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/observability/metrics"
	"github.com/medanalyzer/platform/pkg/patient"
	"gorm.io/datatypes"
)

// Store is the slice of the registry the X-ray endpoints need. Satisfied by
// *patient.Repository.
type Store interface {
	GetPatient(ctx context.Context, id uint) (*patient.Patient, error)
	CreateReport(ctx context.Context, r *patient.Report) error
}

type Handler struct {
	client         *Client
	store          Store
	maxUploadBytes int64
}

func NewHandler(client *Client, store Store, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	return &Handler{client: client, store: store, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/analyze-xray/{patient_id}", h.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/compare-xrays/{patient_id}", h.handleCompare).Methods(http.MethodPost)
	r.HandleFunc("/ask-question", h.handleAskQuestion).Methods(http.MethodPost)
}

// handleAnalyze runs a single-image analysis and attaches the result to the
// patient as an XRAY_ANALYSIS report.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	p, ok := h.patientFromPath(w, r)
	if !ok {
		return
	}
	name, data, ok := h.readImage(w, r, "file")
	if !ok {
		return
	}

	analysis, err := h.client.Analyze(r.Context(), name, data)
	if err != nil {
		h.writeCollaboratorError(w, err)
		return
	}

	rep := &patient.Report{
		Filename:   name,
		ReportType: patient.ReportTypeXRayAnalysis,
		Results:    datatypes.JSONMap(analysis),
		PatientID:  p.ID,
	}
	if err := h.store.CreateReport(r.Context(), rep); err != nil {
		logger.Log.WithError(err).Error("failed to persist xray analysis report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncReportCreated()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"report":   rep,
		"analysis": analysis,
	})
}

// handleCompare runs an interval-change comparison over two images and
// attaches the result as an XRAY_COMPARISON report.
func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	p, ok := h.patientFromPath(w, r)
	if !ok {
		return
	}
	prevName, prevData, ok := h.readImage(w, r, "previous")
	if !ok {
		return
	}
	currName, currData, ok := h.readImage(w, r, "current")
	if !ok {
		return
	}

	comparison, err := h.client.Compare(r.Context(), prevName, prevData, currName, currData)
	if err != nil {
		h.writeCollaboratorError(w, err)
		return
	}

	rep := &patient.Report{
		Filename:   fmt.Sprintf("comparison_%s_vs_%s", prevName, currName),
		ReportType: patient.ReportTypeXRayComparison,
		Results:    datatypes.JSONMap(comparison),
		PatientID:  p.ID,
	}
	if err := h.store.CreateReport(r.Context(), rep); err != nil {
		logger.Log.WithError(err).Error("failed to persist xray comparison report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncReportCreated()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"report":     rep,
		"comparison": comparison,
	})
}

// handleAskQuestion is stateless visual question answering; nothing is
// persisted.
func (h *Handler) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	name, data, ok := h.readImage(w, r, "file")
	if !ok {
		return
	}
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		http.Error(w, "question form field required", http.StatusBadRequest)
		return
	}

	answer, err := h.client.AskQuestion(r.Context(), name, data, question)
	if err != nil {
		h.writeCollaboratorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (h *Handler) patientFromPath(w http.ResponseWriter, r *http.Request) (*patient.Patient, bool) {
	raw := mux.Vars(r)["patient_id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid patient_id", http.StatusBadRequest)
		return nil, false
	}

	p, err := h.store.GetPatient(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			http.Error(w, "Patient not found", http.StatusNotFound)
			return nil, false
		}
		logger.Log.WithError(err).Error("failed to load patient for xray request")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return p, true
}

func (h *Handler) readImage(w http.ResponseWriter, r *http.Request, field string) (string, []byte, bool) {
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			http.Error(w, "could not parse multipart form", http.StatusBadRequest)
			return "", nil, false
		}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		http.Error(w, field+" form field required", http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read uploaded file", http.StatusBadRequest)
		return "", nil, false
	}
	return header.Filename, data, true
}

func (h *Handler) writeCollaboratorError(w http.ResponseWriter, err error) {
	var unavailable *ErrUnavailable
	if errors.As(err, &unavailable) {
		metrics.IncXRayUnavailable()
		logger.Log.WithError(err).Error("xray collaborator unavailable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  "collaborator_unavailable",
			"detail": "The X-ray analysis service is unavailable. Try again later.",
		})
		return
	}
	logger.Log.WithError(err).Error("xray request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
