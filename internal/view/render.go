package view

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/abrezinsky/rfidkiosk/internal/models"
)

// Patch is an update to one element of the kiosk page.
// Nil HTML or Class leaves that aspect of the element untouched.
type Patch struct {
	ID       string  `json:"id"`
	HTML     *string `json:"html,omitempty"`
	Class    *string `json:"class,omitempty"`
	Hidden   bool    `json:"hidden"`
	Disabled bool    `json:"disabled"`
}

const (
	ClassGranted     = "access-granted"
	ClassDenied      = "access-denied"
	ClassActiveAdmin = "active-admin"
)

var funcs = template.FuncMap{"upper": strings.ToUpper}

var panelTmpl = template.Must(template.New("panel").Funcs(funcs).Parse(
	`{{if .Message}}<p>{{.Message}}</p>{{else}}<p class="{{.Class}}"><strong>Access: {{.Label}}</strong></p>
<p><strong>Scanned UID:</strong> {{upper .User.UID}}</p>
<p><strong>Last name:</strong> {{.User.Nume}} <strong>First name:</strong> {{.User.Prenume}}</p>
<p><strong>Role:</strong> {{.User.Rol}}</p>{{end}}`))

var directoryTmpl = template.Must(template.New("directory").Funcs(funcs).Parse(
	`<h4>User database</h4>{{if not .}}<p class="warning">The database is empty.</p>{{else}}<table>
<tr><th>UID</th><th>Name</th><th>Role</th></tr>{{range .}}
<tr><td>{{upper .UID}}</td><td>{{.Nume}} {{.Prenume}}</td><td>{{.Rol}}</td></tr>{{end}}
</table>{{end}}`))

var textTmpl = template.Must(template.New("text").Parse(`{{.}}`))

type panelData struct {
	Message string
	Class   string
	Label   string
	User    models.UserRecord
}

// Render turns a snapshot into patches for every element of the kiosk page
func Render(s Snapshot) ([]Patch, error) {
	status, err := execute(textTmpl, s.Status.Text)
	if err != nil {
		return nil, err
	}
	statusClass := "status-" + string(s.Status.State)

	panelHTML := ""
	if s.Panel != nil {
		if panelHTML, err = RenderPanel(*s.Panel); err != nil {
			return nil, err
		}
	}

	adminText, adminClass := "", ""
	if s.AdminWaiting {
		adminText, adminClass = TextAdminWaiting, ClassActiveAdmin
	}
	adminHTML, err := execute(textTmpl, adminText)
	if err != nil {
		return nil, err
	}

	regUID, err := execute(textTmpl, s.Registration.UID)
	if err != nil {
		return nil, err
	}

	dirHTML := ""
	if s.Directory.Visible {
		if dirHTML, err = RenderDirectory(s.Directory.Users); err != nil {
			return nil, err
		}
	}

	return []Patch{
		{ID: IDStatus, HTML: &status, Class: &statusClass},
		{ID: IDUserDisplay, HTML: &panelHTML},
		{ID: IDAdminStatus, HTML: &adminHTML, Class: &adminClass},
		{ID: IDAdminButton, Disabled: s.AdminWaiting},
		{ID: IDRegistrationForm, Hidden: !s.Registration.Visible},
		{ID: IDRegUIDDisplay, HTML: &regUID},
		{ID: IDDatabaseDisplay, HTML: &dirHTML, Hidden: !s.Directory.Visible},
	}, nil
}

// RenderPanel renders the access panel
func RenderPanel(p UserPanel) (string, error) {
	class := ClassDenied
	if p.Access.Positive() {
		class = ClassGranted
	}
	return execute(panelTmpl, panelData{
		Message: p.Message,
		Class:   class,
		Label:   p.Access.Label(),
		User:    p.User,
	})
}

// RenderDirectory renders the user table, or an empty-database notice
func RenderDirectory(users []models.UserRecord) (string, error) {
	return execute(directoryTmpl, users)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
