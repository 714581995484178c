package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/services"
)

var templateFuncs = template.FuncMap{
	"outcomeLabel": outcomeLabel,
	"formatTime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

func outcomeLabel(o models.ScanOutcome) string {
	switch o {
	case models.OutcomeGranted:
		return "Access granted"
	case models.OutcomeRegistrationRequired:
		return "Registration required"
	case models.OutcomeAdminGranted:
		return "Admin access granted"
	case models.OutcomeAdminDenied:
		return "Admin access denied"
	case models.OutcomeRegistered:
		return "Registered"
	default:
		return string(o)
	}
}

// HistoryPageData holds data for the scan history page
type HistoryPageData struct {
	AdminPageData
	Stats *services.ScanStats
	Scans []models.ScanEvent
	UID   string
}

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminHistory(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))

	stats, err := h.Scans.Stats(r.Context())
	if err != nil {
		http.Error(w, "failed to load scan statistics", http.StatusInternalServerError)
		return
	}

	var scans []models.ScanEvent
	if uid != "" {
		scans, err = h.Scans.History(r.Context(), uid, services.DefaultScanLimit)
	} else {
		scans, err = h.Scans.ListRecent(r.Context(), services.DefaultScanLimit)
	}
	if err != nil {
		http.Error(w, "failed to load scans", http.StatusInternalServerError)
		return
	}

	data := HistoryPageData{
		AdminPageData: AdminPageData{
			Title:     "Scan History",
			PageTitle: "Scan History",
			ActiveNav: "history",
		},
		Stats: stats,
		Scans: scans,
		UID:   uid,
	}
	h.templates.AdminHistory.ExecuteTemplate(w, "admin", data)
}

// ==================== Admin API ====================

func (h *Handlers) handleGetScans(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", services.DefaultScanLimit)
	if err != nil {
		respondError(w, err)
		return
	}

	var scans []models.ScanEvent
	if uid := strings.TrimSpace(r.URL.Query().Get("uid")); uid != "" {
		scans, err = h.Scans.History(r.Context(), uid, limit)
	} else {
		scans, err = h.Scans.ListRecent(r.Context(), limit)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ScansResponse{Scans: scans, Limit: limit})
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Scans.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handlePruneScans(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	removed, err := h.Scans.Prune(r.Context(), time.Duration(req.RetentionHours)*time.Hour)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, PruneResponse{Removed: removed})
}

func (h *Handlers) handleRefreshDirectory(w http.ResponseWriter, r *http.Request) {
	if err := h.Kiosk.RefreshDirectory(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondAccepted(w, "Directory reload requested")
}
