// Package metrics exposes pipeline counters in Prometheus text format.
// Counters are process-local; a restart resets them.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	uploadsAccepted atomic.Int64
	uploadsRejected atomic.Int64
	reportsCreated  atomic.Int64
	patientsCreated atomic.Int64
	patientsDeleted atomic.Int64
	nerDegraded     atomic.Int64
	xrayUnavailable atomic.Int64
)

func IncUploadAccepted()  { uploadsAccepted.Add(1) }
func IncUploadRejected()  { uploadsRejected.Add(1) }
func IncReportCreated()   { reportsCreated.Add(1) }
func IncPatientCreated()  { patientsCreated.Add(1) }
func IncPatientDeleted()  { patientsDeleted.Add(1) }
func IncNERDegraded()     { nerDegraded.Add(1) }
func IncXRayUnavailable() { xrayUnavailable.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeCounter(w, "medanalyzer_uploads_accepted_total", "Report uploads that produced a persisted report.", uploadsAccepted.Load())
	writeCounter(w, "medanalyzer_uploads_rejected_total", "Report uploads rejected before persistence.", uploadsRejected.Load())
	writeCounter(w, "medanalyzer_reports_created_total", "Reports persisted across all report types.", reportsCreated.Load())
	writeCounter(w, "medanalyzer_patients_created_total", "Patients created by registration or ingestion.", patientsCreated.Load())
	writeCounter(w, "medanalyzer_patients_deleted_total", "Patients removed, cascading their reports.", patientsDeleted.Load())
	writeCounter(w, "medanalyzer_ner_degraded_total", "Ingestions completed without entities because the NER service failed.", nerDegraded.Load())
	writeCounter(w, "medanalyzer_xray_unavailable_total", "X-ray requests that failed because the collaborator was unreachable.", xrayUnavailable.Load())
}

func writeCounter(w http.ResponseWriter, name, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n", name, value)
}

// Handler serves the scrape endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	}
}
