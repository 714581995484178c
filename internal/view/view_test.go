package view

import (
	"strings"
	"testing"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

func visibleCount(s Snapshot) int {
	n := 0
	if s.Registration.Visible {
		n++
	}
	if s.Directory.Visible {
		n++
	}
	if s.AdminWaiting {
		n++
	}
	return n
}

func TestSnapshot_AtMostOneTransientVisible(t *testing.T) {
	s := Initial()
	users := []models.UserRecord{{UID: "AA"}}

	steps := []struct {
		name string
		fn   func()
	}{
		{"registration", func() { s.ShowRegistration("AA") }},
		{"directory after registration", func() { s.ShowDirectory(users) }},
		{"admin after directory", func() { s.ShowAdminWaiting() }},
		{"registration after admin", func() { s.ShowRegistration("BB") }},
		{"hide all", func() { s.HideTransient() }},
	}

	for _, step := range steps {
		step.fn()
		if visibleCount(s) > 1 {
			t.Fatalf("after %s: %d transient elements visible", step.name, visibleCount(s))
		}
	}
	if visibleCount(s) != 0 {
		t.Errorf("expected nothing visible after HideTransient")
	}
}

func TestSnapshot_ShowRegistrationClearsOthers(t *testing.T) {
	s := Initial()
	s.ShowAdminWaiting()
	s.ShowRegistration("CCDD")

	if s.AdminWaiting {
		t.Error("expected admin waiting panel to be hidden")
	}
	if !s.Registration.Visible || s.Registration.UID != "CCDD" {
		t.Errorf("unexpected registration state: %+v", s.Registration)
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := Initial()
	s.ShowPanel(AccessGranted, models.UserRecord{UID: "AA", Nume: "Ion"})
	s.ShowDirectory([]models.UserRecord{{UID: "AA"}})

	c := s.Clone()
	c.Panel.User.Nume = "Changed"
	c.Directory.Users[0].UID = "ZZ"

	if s.Panel.User.Nume != "Ion" {
		t.Error("clone shares panel with original")
	}
	if s.Directory.Users[0].UID != "AA" {
		t.Error("clone shares directory with original")
	}
}

func TestAccess_Positive(t *testing.T) {
	tests := []struct {
		access Access
		want   bool
	}{
		{AccessGranted, true},
		{AccessGrantedNew, true},
		{AccessAdminGranted, true},
		{AccessWaiting, true},
		{AccessRegistrationRequired, false},
		{AccessAdminDenied, false},
	}
	for _, tt := range tests {
		t.Run(tt.access.Label(), func(t *testing.T) {
			if tt.access.Positive() != tt.want {
				t.Errorf("Positive() = %v, want %v", tt.access.Positive(), tt.want)
			}
		})
	}
}

func TestPlaceholder_CarriesScannedUID(t *testing.T) {
	p := Placeholder(DeniedUser, "CCDD")
	if p.UID != "CCDD" || p.Nume != "ACCESS" || p.Prenume != "DENIED" {
		t.Errorf("unexpected placeholder: %+v", p)
	}
	if DeniedUser.UID != "" {
		t.Error("Placeholder must not mutate the template record")
	}
}

func TestRenderPanel_GrantedUser(t *testing.T) {
	html, err := RenderPanel(UserPanel{Access: AccessGranted, User: models.UserRecord{UID: "aabb", Nume: "Ion", Prenume: "Pop", Rol: "User"}})
	if err != nil {
		t.Fatalf("RenderPanel failed: %v", err)
	}
	for _, want := range []string{ClassGranted, "Access granted", "AABB", "Ion", "Pop", "User"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected panel to contain %q, got: %s", want, html)
		}
	}
}

func TestRenderPanel_RegistrationRequiredShowsRawUID(t *testing.T) {
	html, err := RenderPanel(UserPanel{Access: AccessRegistrationRequired, User: Placeholder(UnknownUser, "CCDD")})
	if err != nil {
		t.Fatalf("RenderPanel failed: %v", err)
	}
	if !strings.Contains(html, ClassDenied) {
		t.Errorf("expected denied styling, got: %s", html)
	}
	if !strings.Contains(html, "CCDD") || !strings.Contains(html, "UNKNOWN") {
		t.Errorf("expected placeholder with scanned UID, got: %s", html)
	}
}

func TestRenderPanel_Message(t *testing.T) {
	html, err := RenderPanel(UserPanel{Message: TextSending})
	if err != nil {
		t.Fatalf("RenderPanel failed: %v", err)
	}
	if html != "<p>"+TextSending+"</p>" {
		t.Errorf("unexpected message panel: %s", html)
	}
}

func TestRenderPanel_EscapesIdentityFields(t *testing.T) {
	html, err := RenderPanel(UserPanel{Access: AccessGranted, User: models.UserRecord{UID: "AA", Nume: "<script>x</script>"}})
	if err != nil {
		t.Fatalf("RenderPanel failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("expected identity fields to be escaped, got: %s", html)
	}
}

func TestRenderDirectory_Empty(t *testing.T) {
	for _, users := range [][]models.UserRecord{nil, {}} {
		html, err := RenderDirectory(users)
		if err != nil {
			t.Fatalf("RenderDirectory failed: %v", err)
		}
		if !strings.Contains(html, "The database is empty.") {
			t.Errorf("expected empty notice, got: %s", html)
		}
		if strings.Contains(html, "<table>") {
			t.Errorf("expected no table for empty directory, got: %s", html)
		}
	}
}

func TestRenderDirectory_Rows(t *testing.T) {
	html, err := RenderDirectory([]models.UserRecord{
		{UID: "aabb", Nume: "Ion", Prenume: "Pop", Rol: "User"},
		{UID: "FF00", Nume: "Ana", Prenume: "Ionescu", Rol: "Admin"},
	})
	if err != nil {
		t.Fatalf("RenderDirectory failed: %v", err)
	}
	for _, want := range []string{"<table>", "AABB", "Ion Pop", "FF00", "Ana Ionescu", "Admin"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected table to contain %q, got: %s", want, html)
		}
	}
}

func patchByID(t *testing.T, patches []Patch, id string) Patch {
	t.Helper()
	for _, p := range patches {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no patch for %q", id)
	return Patch{}
}

func TestRender_AllElementsPatched(t *testing.T) {
	patches, err := Render(Initial())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	ids := []string{IDStatus, IDUserDisplay, IDAdminStatus, IDAdminButton, IDRegistrationForm, IDRegUIDDisplay, IDDatabaseDisplay}
	for _, id := range ids {
		patchByID(t, patches, id)
	}

	status := patchByID(t, patches, IDStatus)
	if *status.HTML != TextConnecting || *status.Class != "status-connecting" {
		t.Errorf("unexpected status patch: %q %q", *status.HTML, *status.Class)
	}
	if !patchByID(t, patches, IDRegistrationForm).Hidden {
		t.Error("expected registration form hidden initially")
	}
	if !patchByID(t, patches, IDDatabaseDisplay).Hidden {
		t.Error("expected directory hidden initially")
	}
}

func TestRender_AdminWaiting(t *testing.T) {
	s := Initial()
	s.ShowAdminWaiting()
	s.ShowPanel(AccessWaiting, WaitingUser)

	patches, err := Render(s)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !patchByID(t, patches, IDAdminButton).Disabled {
		t.Error("expected admin button disabled while waiting")
	}
	admin := patchByID(t, patches, IDAdminStatus)
	if *admin.HTML == "" || *admin.Class != ClassActiveAdmin {
		t.Errorf("unexpected admin status patch: %q %q", *admin.HTML, *admin.Class)
	}
	if patchByID(t, patches, IDAdminButton).HTML != nil {
		t.Error("admin button content must be left untouched")
	}
}

func TestRender_RegistrationForm(t *testing.T) {
	s := Initial()
	s.ShowRegistration("CCDD")

	patches, err := Render(s)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if patchByID(t, patches, IDRegistrationForm).Hidden {
		t.Error("expected registration form visible")
	}
	if *patchByID(t, patches, IDRegUIDDisplay).HTML != "CCDD" {
		t.Error("expected UID display to carry the scanned UID")
	}
}
