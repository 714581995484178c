package handlers

import (
	"net/http"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// IndexPageData holds data for the kiosk page
type IndexPageData struct {
	Title string
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.Execute(w, IndexPageData{Title: "RFID Access Kiosk"})
}

// handleState returns the controller state. Displays use it to recover after a reload.
func (h *Handlers) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Kiosk.Snapshot(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	resp := StateResponse{State: state}
	if h.Hub != nil {
		resp.Displays = h.Hub.ClientCount()
	}
	respondOK(w, resp)
}

// handleAdminMode arms admin mode; the next scan must be an admin card
func (h *Handlers) handleAdminMode(w http.ResponseWriter, r *http.Request) {
	if err := h.Kiosk.EnterAdminMode(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Admin mode active, scan an admin card")
}

// handleRegister forwards the registration form for the pending badge to the reader
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	form := models.RegistrationForm{Nume: req.Nume, Prenume: req.Prenume, Rol: req.Rol}
	if err := h.Kiosk.SubmitRegistration(r.Context(), form); err != nil {
		respondError(w, err)
		return
	}
	respondAccepted(w, "Registration request sent")
}

// handleDisplayQR serves a QR code of the kiosk page address
func (h *Handlers) handleDisplayQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Display.QRImage()
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
