package report

import "errors"

// FailureKind names the fatal ingestion failures surfaced to callers.
// Collaborator (NER) outages are deliberately absent: they degrade the
// pipeline instead of failing it.
type FailureKind string

const (
	FailureEmptyDocument     FailureKind = "empty_document"
	FailureNameExtraction    FailureKind = "name_extraction_failed"
	FailurePatientIDNotFound FailureKind = "patient_id_not_found"
)

// IngestError is a structured ingestion failure: machine-readable kind plus
// a human-readable suggestion that tells the caller how to retry. Nothing
// is persisted when one of these is returned.
type IngestError struct {
	Kind        FailureKind `json:"error"`
	Detail      string      `json:"detail"`
	Suggestion  string      `json:"suggestion,omitempty"`
	TextPreview string      `json:"text_preview,omitempty"`
}

func (e *IngestError) Error() string {
	return string(e.Kind) + ": " + e.Detail
}

// AsIngestError unwraps err into an IngestError when it is one.
func AsIngestError(err error) (*IngestError, bool) {
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

func emptyDocumentError() *IngestError {
	return &IngestError{
		Kind:       FailureEmptyDocument,
		Detail:     "Could not extract text from PDF.",
		Suggestion: "Ensure the document contains selectable text rather than scanned images only.",
	}
}

func nameExtractionError(preview string) *IngestError {
	return &IngestError{
		Kind:   FailureNameExtraction,
		Detail: "Could not automatically extract a patient name from the report.",
		Suggestion: "Ensure the PDF contains text like 'Patient Name: John Doe' or 'Name: John Doe', " +
			"supply an explicit patient_id, or retry via the manual entry endpoint with name/age/gender.",
		TextPreview: preview,
	}
}

func patientNotFoundError() *IngestError {
	return &IngestError{
		Kind:       FailurePatientIDNotFound,
		Detail:     "No patient exists with the supplied patient_id.",
		Suggestion: "Verify the id or omit it to resolve the patient from the report text.",
	}
}
