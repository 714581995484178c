package handlers

// RegisterRequest is the registration form posted by a kiosk display
type RegisterRequest struct {
	Nume    string `json:"nume"`
	Prenume string `json:"prenume"`
	Rol     string `json:"rol"`
}

// PruneRequest asks to drop journal entries older than RetentionHours
type PruneRequest struct {
	RetentionHours int `json:"retention_hours"`
}
