package handlers

import (
	"errors"
	"net/http"

	"media-catalog/internal/audit"
	"media-catalog/internal/envelope"
	"media-catalog/internal/logging"
)

// AssetAuditor is the part of audit.Auditor the handlers use.
type AssetAuditor interface {
	LastReport() (audit.Report, error)
	TriggerAudit()
}

// SetAuditor enables the audit endpoints. Without one they answer 404.
func (h *Handlers) SetAuditor(a AssetAuditor) {
	h.auditor = a
}

// GetAuditReport returns the last asset audit report
func (h *Handlers) GetAuditReport(w http.ResponseWriter, r *http.Request) {
	if h.auditor == nil {
		envelope.Fail(w, http.StatusNotFound, msgAuditDisabled)
		return
	}

	report, err := h.auditor.LastReport()
	switch {
	case err == nil:
		envelope.OK(w, report)
	case errors.Is(err, audit.ErrNoReport):
		envelope.Fail(w, http.StatusServiceUnavailable, msgAuditPending)
	default:
		l := logging.FromContext(r.Context())
		l.Error().Err(err).Int("checked", report.Checked).Msg("last asset audit failed")
		envelope.Fail(w, http.StatusInternalServerError, "")
	}
}

// TriggerAudit queues an asset audit outside the schedule
func (h *Handlers) TriggerAudit(w http.ResponseWriter, _ *http.Request) {
	if h.auditor == nil {
		envelope.Fail(w, http.StatusNotFound, msgAuditDisabled)
		return
	}

	h.auditor.TriggerAudit()
	envelope.Write(w, http.StatusAccepted, map[string]bool{"queued": true}, "")
}
