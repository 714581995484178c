// Package view models the kiosk display and renders it to per-element HTML patches.
package view

import (
	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// Stable element identifiers on the kiosk page
const (
	IDStatus           = "status"
	IDUserDisplay      = "user-display"
	IDAdminStatus      = "admin-status"
	IDAdminButton      = "admin-button"
	IDRegistrationForm = "registration-form"
	IDRegUIDDisplay    = "reg-uid-display"
	IDDatabaseDisplay  = "database-display"
)

// StatusState is the visual state of the status banner
type StatusState string

const (
	StatusConnecting   StatusState = "connecting"
	StatusConnected    StatusState = "connected"
	StatusDisconnected StatusState = "disconnected"
)

// Banner texts
const (
	TextConnecting   = "Connecting to reader..."
	TextReady        = "Connected and ready to scan!"
	TextDisconnected = "Disconnected. Reconnecting..."
	TextLoadFailed   = "Error loading data..."
	TextAdminWaiting = "Admin mode ACTIVE! Scan an admin card..."
	TextSending      = "Sending registration request..."
)

// Status is the banner at the top of the kiosk page
type Status struct {
	Text  string      `json:"text"`
	State StatusState `json:"state"`
}

// Access is the verdict shown on the user panel
type Access int

const (
	AccessGranted Access = iota
	AccessGrantedNew
	AccessRegistrationRequired
	AccessAdminGranted
	AccessAdminDenied
	AccessWaiting
)

// Label returns the operator-facing text for the verdict
func (a Access) Label() string {
	switch a {
	case AccessGranted:
		return "Access granted"
	case AccessGrantedNew:
		return "Access granted (new user)"
	case AccessRegistrationRequired:
		return "Registration required"
	case AccessAdminGranted:
		return "Admin access granted"
	case AccessAdminDenied:
		return "Admin access denied"
	case AccessWaiting:
		return "Waiting for card"
	default:
		return "Unknown"
	}
}

// Positive reports whether the verdict is styled as granted
func (a Access) Positive() bool {
	switch a {
	case AccessGranted, AccessGrantedNew, AccessAdminGranted, AccessWaiting:
		return true
	default:
		return false
	}
}

// Placeholder identities for panels without a directory match
var (
	UnknownUser = models.UserRecord{Nume: "UNKNOWN", Prenume: "N/A", Rol: "N/A"}
	DeniedUser  = models.UserRecord{Nume: "ACCESS", Prenume: "DENIED", Rol: "N/A"}
	WaitingUser = models.UserRecord{UID: "N/A", Nume: "ADMIN", Prenume: "MODE", Rol: "ACTIVE"}
)

// Placeholder returns p carrying the raw scanned uid
func Placeholder(p models.UserRecord, uid string) models.UserRecord {
	p.UID = uid
	return p
}

// UserPanel is the access panel. When Message is set it replaces the verdict.
type UserPanel struct {
	Access  Access            `json:"access"`
	User    models.UserRecord `json:"user"`
	Message string            `json:"message,omitempty"`
}

// Registration is the new-badge form
type Registration struct {
	Visible bool   `json:"visible"`
	UID     string `json:"uid"`
}

// Directory is the full user table
type Directory struct {
	Visible bool                `json:"visible"`
	Users   []models.UserRecord `json:"users"`
}

// Snapshot is the whole kiosk display state.
// At most one of Registration, Directory and AdminWaiting is visible.
type Snapshot struct {
	Status       Status       `json:"status"`
	Panel        *UserPanel   `json:"panel,omitempty"`
	AdminWaiting bool         `json:"admin_waiting"`
	Registration Registration `json:"registration"`
	Directory    Directory    `json:"directory"`
}

// Initial returns the display state before the reader connects
func Initial() Snapshot {
	return Snapshot{Status: Status{Text: TextConnecting, State: StatusConnecting}}
}

// SetStatus updates the banner
func (s *Snapshot) SetStatus(text string, state StatusState) {
	s.Status = Status{Text: text, State: state}
}

// ShowPanel renders the access panel for user
func (s *Snapshot) ShowPanel(access Access, user models.UserRecord) {
	s.Panel = &UserPanel{Access: access, User: user}
}

// ShowMessage replaces the access panel with a plain message
func (s *Snapshot) ShowMessage(msg string) {
	s.Panel = &UserPanel{Message: msg}
}

// ShowRegistration reveals the registration form for uid
func (s *Snapshot) ShowRegistration(uid string) {
	s.HideTransient()
	s.Registration = Registration{Visible: true, UID: uid}
}

// ShowDirectory reveals the directory table
func (s *Snapshot) ShowDirectory(users []models.UserRecord) {
	s.HideTransient()
	s.Directory = Directory{Visible: true, Users: append([]models.UserRecord(nil), users...)}
}

// ShowAdminWaiting reveals the admin-wait panel
func (s *Snapshot) ShowAdminWaiting() {
	s.HideTransient()
	s.AdminWaiting = true
}

// HideRegistration hides and clears the registration form
func (s *Snapshot) HideRegistration() {
	s.Registration = Registration{}
}

// HideDirectory hides and clears the directory table
func (s *Snapshot) HideDirectory() {
	s.Directory = Directory{}
}

// HideAdminWaiting hides the admin-wait panel
func (s *Snapshot) HideAdminWaiting() {
	s.AdminWaiting = false
}

// HideTransient hides the registration form, directory table and admin-wait panel
func (s *Snapshot) HideTransient() {
	s.HideRegistration()
	s.HideDirectory()
	s.HideAdminWaiting()
}

// Clone returns a deep copy safe to hand to another goroutine
func (s Snapshot) Clone() Snapshot {
	if s.Panel != nil {
		p := *s.Panel
		s.Panel = &p
	}
	if s.Directory.Users != nil {
		s.Directory.Users = append([]models.UserRecord(nil), s.Directory.Users...)
	}
	return s
}
