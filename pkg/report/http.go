package report

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/medanalyzer/platform/pkg/common/logger"
	"github.com/medanalyzer/platform/pkg/common/models"
	"github.com/medanalyzer/platform/pkg/extraction"
	"github.com/medanalyzer/platform/pkg/observability/metrics"
	"github.com/medanalyzer/platform/pkg/pdftext"
	"github.com/medanalyzer/platform/pkg/redact"
)

type Handler struct {
	service        *Service
	redactor       *redact.Redactor
	maxUploadBytes int64
}

func NewHandler(service *Service, redactor *redact.Redactor, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	return &Handler{service: service, redactor: redactor, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/upload", h.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/upload-strict", h.handleUploadStrict).Methods(http.MethodPost)
	r.HandleFunc("/upload-manual", h.handleUploadManual).Methods(http.MethodPost)
	r.HandleFunc("/debug-pdf", h.handleDebugPDF).Methods(http.MethodPost)
}

// handleUpload is the lenient entry point: a missing patient name falls
// back to a generated placeholder patient rather than rejecting the upload.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	text, filename, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	h.ingest(w, r, IngestInput{
		Text:     text,
		Filename: filename,
		Policy:   PolicyLenient,
	})
}

// handleUploadStrict rejects uploads whose patient cannot be identified.
// An optional patient_id form value pins the upload to a known patient.
func (h *Handler) handleUploadStrict(w http.ResponseWriter, r *http.Request) {
	text, filename, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	input := IngestInput{
		Text:     text,
		Filename: filename,
		Policy:   PolicyStrict,
	}
	if raw := r.FormValue("patient_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "patient_id must be a positive integer", http.StatusBadRequest)
			return
		}
		uid := uint(id)
		input.ExplicitPatientID = &uid
	}

	h.ingest(w, r, input)
}

// handleUploadManual takes operator-supplied identity fields alongside the
// document and skips automatic field extraction entirely.
func (h *Handler) handleUploadManual(w http.ResponseWriter, r *http.Request) {
	text, filename, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Error(w, "name form field required", http.StatusBadRequest)
		return
	}
	age := 0
	if raw := r.FormValue("age"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 120 {
			http.Error(w, "age must be an integer in [0, 120]", http.StatusBadRequest)
			return
		}
		age = parsed
	}
	gender := extraction.ParseGender(r.FormValue("gender"))

	h.ingest(w, r, IngestInput{
		Text:         text,
		Filename:     filename,
		ManualFields: &models.ExtractedFields{Name: name, Age: age, Gender: gender},
		Policy:       PolicyStrict,
	})
}

// handleDebugPDF extracts and inspects a document without persisting
// anything. The returned text preview is redacted.
func (h *Handler) handleDebugPDF(w http.ResponseWriter, r *http.Request) {
	text, filename, ok := h.readPDF(w, r)
	if !ok {
		return
	}

	fields := extraction.Extract(text)
	preview := text
	if h.redactor != nil {
		preview = h.redactor.Preview(text, previewLimit)
	} else if runes := []rune(preview); len(runes) > previewLimit {
		preview = string(runes[:previewLimit]) + "..."
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":         filename,
		"text_length":      len(text),
		"text_preview":     preview,
		"extracted_fields": fields,
	})
}

func (h *Handler) ingest(w http.ResponseWriter, r *http.Request, input IngestInput) {
	result, err := h.service.Ingest(r.Context(), input)
	if err != nil {
		metrics.IncUploadRejected()
		if ie, ok := AsIngestError(err); ok {
			writeJSON(w, statusForFailure(ie.Kind), ie)
			return
		}
		logger.Log.WithError(err).WithField("filename", input.Filename).Error("ingestion failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	metrics.IncUploadAccepted()
	writeJSON(w, http.StatusCreated, result)
}

// readPDF pulls the uploaded file out of the multipart form and extracts
// its text. It writes the error response itself on failure.
func (h *Handler) readPDF(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "could not parse multipart form", http.StatusBadRequest)
		return "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file form field required", http.StatusBadRequest)
		return "", "", false
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		http.Error(w, "only PDF uploads are accepted", http.StatusUnsupportedMediaType)
		return "", "", false
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "could not read uploaded file", http.StatusBadRequest)
		return "", "", false
	}

	text, pages, err := pdftext.Extract(raw)
	if err != nil {
		logger.Log.WithError(err).WithField("filename", header.Filename).Warn("PDF parse failed")
		writeJSON(w, http.StatusBadRequest, emptyDocumentError())
		return "", "", false
	}
	logger.Log.WithField("filename", header.Filename).WithField("pages", pages).Debug("extracted PDF text")

	return text, header.Filename, true
}

func statusForFailure(kind FailureKind) int {
	switch kind {
	case FailureEmptyDocument:
		return http.StatusBadRequest
	case FailureNameExtraction:
		return http.StatusUnprocessableEntity
	case FailurePatientIDNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
