package handlers

import (
	"github.com/abrezinsky/rfidkiosk/internal/kiosk"
	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// MessageResponse carries a human-readable outcome
type MessageResponse struct {
	Message string `json:"message"`
}

// StateResponse is the kiosk status served to displays and operators
type StateResponse struct {
	kiosk.State
	Displays int `json:"displays"`
}

// ScansResponse is a page of the scan journal
type ScansResponse struct {
	Scans []models.ScanEvent `json:"scans"`
	Limit int                `json:"limit"`
}

// PruneResponse reports how many journal entries were removed
type PruneResponse struct {
	Removed int64 `json:"removed"`
}
