package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/gorilla/mux"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenders"
)

// RunSync runs one sync cycle synchronously and returns its summary.
func (h *Handlers) RunSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.services.Syncer.CheckNewTenders(r.Context())
	if err != nil {
		h.writeError(w, "Sync cycle failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMessages returns the notification texts of a key's open tenders.
func (h *Handlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	messages, err := h.services.Exporter.ExportMessages(r.Context(), key)
	if err != nil {
		h.writeError(w, "Failed to export messages", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":      key,
		"count":    len(messages),
		"messages": messages,
	})
}

// CreateReport builds the spreadsheet for a key and streams it back.
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	report, err := h.services.Reporter.Generate(r.Context(), key)
	if err != nil {
		h.writeError(w, "Failed to build report", err)
		return
	}

	h.logger.Info("Report generated",
		logging.String("key", key),
		logging.Int("rows", report.Rows),
		logging.String("path", report.Path),
	)

	name := filepath.Base(report.Path)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	w.Header().Set("X-Report-Rows", fmt.Sprint(report.Rows))
	http.ServeFile(w, r, report.Path)
}

// GetAttachments lists the stored documents of a delivered tender.
func (h *Handlers) GetAttachments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	attachments, err := h.storage.GetAttachments(r.Context(), id)
	if err != nil {
		h.writeError(w, "Failed to load attachments", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tender_id":   id,
		"attachments": attachments,
		"text":        tenders.AttachmentsText(attachments),
	})
}
