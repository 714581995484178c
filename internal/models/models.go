package models

import (
	"strings"
	"time"
)

// RoleAdmin is the only privileged role. It cannot be self-assigned at the kiosk.
const RoleAdmin = "Admin"

// UserRecord is one entry of the device's user directory
type UserRecord struct {
	UID     string `json:"UID"`
	Nume    string `json:"Nume"`
	Prenume string `json:"Prenume"`
	Rol     string `json:"Rol"`
}

// IsAdmin reports whether the record carries the Admin role
func (u UserRecord) IsAdmin() bool {
	return u.Rol == RoleAdmin
}

// NormalizeUID returns the canonical (uppercase, trimmed) form of a badge identifier
func NormalizeUID(uid string) string {
	return strings.ToUpper(strings.TrimSpace(uid))
}

// FindUser returns the first record whose UID matches uid case-insensitively
func FindUser(directory []UserRecord, uid string) (UserRecord, bool) {
	want := strings.TrimSpace(uid)
	if want == "" {
		return UserRecord{}, false
	}
	for _, u := range directory {
		if strings.EqualFold(strings.TrimSpace(u.UID), want) {
			return u, true
		}
	}
	return UserRecord{}, false
}

// Inbound device message types
const (
	MsgUIDScan         = "UID_SCAN"
	MsgRegisterSuccess = "REGISTER_SUCCESS"
	MsgRegister        = "REGISTER"
)

// DeviceMessage is an inbound message from the reader device
type DeviceMessage struct {
	Type string      `json:"type"`
	UID  string      `json:"uid,omitempty"`
	User *UserRecord `json:"user,omitempty"`
}

// RegisterRequest is the outbound registration message sent to the device
type RegisterRequest struct {
	Type    string `json:"type"`
	UID     string `json:"uid"`
	Nume    string `json:"Nume"`
	Prenume string `json:"Prenume"`
	Rol     string `json:"Rol"`
}

// RegistrationForm holds operator input for a new badge
type RegistrationForm struct {
	Nume    string `json:"nume"`
	Prenume string `json:"prenume"`
	Rol     string `json:"rol"`
}

// ScanOutcome classifies how a scan was interpreted
type ScanOutcome string

const (
	OutcomeGranted              ScanOutcome = "granted"
	OutcomeRegistrationRequired ScanOutcome = "registration_required"
	OutcomeAdminGranted         ScanOutcome = "admin_granted"
	OutcomeAdminDenied          ScanOutcome = "admin_denied"
	OutcomeRegistered           ScanOutcome = "registered"
)

// ScanEvent is one row of the scan journal
type ScanEvent struct {
	ID        string      `json:"id"`
	UID       string      `json:"uid"`
	Outcome   ScanOutcome `json:"outcome"`
	Name      string      `json:"name"`
	Role      string      `json:"role"`
	ScannedAt time.Time   `json:"scanned_at"`
}

// WSMessage represents a message pushed to kiosk displays
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
