package kiosk

import (
	"encoding/json"
	"strings"

	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/metrics"
	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/view"
)

// NoticeRegistered is shown on every display when the reader confirms a registration
const NoticeRegistered = "User registered successfully!"

func (c *Controller) handleOpen() {
	c.connected = true
	metrics.ReaderConnections.WithLabelValues("opened").Inc()
	metrics.ReaderConnected.Set(1)
	c.log.Info("Reader connected")

	c.requestDirectory()
}

func (c *Controller) handleClose(err error) {
	c.connected = false
	metrics.ReaderConnections.WithLabelValues("closed").Inc()
	metrics.ReaderConnected.Set(0)
	if err != nil {
		c.log.Warn("Reader disconnected", "error", err)
	} else {
		c.log.Info("Reader disconnected")
	}

	c.view.SetStatus(view.TextDisconnected, view.StatusDisconnected)
	c.touch()
}

func (c *Controller) handleMessage(data []byte) {
	var msg models.DeviceMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn("Ignoring malformed reader message", "error", errors.Parse("invalid reader message", err))
		return
	}

	switch msg.Type {
	case models.MsgUIDScan:
		if strings.TrimSpace(msg.UID) == "" {
			c.log.Warn("Ignoring scan without uid")
			return
		}
		c.handleScan(msg.UID)
	case models.MsgRegisterSuccess:
		c.handleRegisterSuccess(msg.User)
	default:
		c.log.Debug("Ignoring reader message", "type", msg.Type)
	}
}

// handleScan interprets a badge scan against the cached directory
func (c *Controller) handleScan(rawUID string) {
	c.view.HideRegistration()
	c.view.HideDirectory()
	c.lastScannedUID = models.NormalizeUID(rawUID)
	c.touch()

	user, found := models.FindUser(c.directory, c.lastScannedUID)
	c.log.Info("Badge scanned", "uid", c.lastScannedUID, "known", found, "admin_mode", c.adminMode)

	if c.adminMode {
		// Admin mode is single-shot: any scan leaves it.
		if found && user.IsAdmin() {
			c.view.ShowPanel(view.AccessAdminGranted, user)
			c.view.ShowDirectory(c.directory)
			c.record(models.OutcomeAdminGranted, c.lastScannedUID, user)
		} else {
			c.view.ShowPanel(view.AccessAdminDenied, view.Placeholder(view.DeniedUser, c.lastScannedUID))
			c.record(models.OutcomeAdminDenied, c.lastScannedUID, user)
		}
		c.setAdminMode(false)
		return
	}

	if found {
		c.view.ShowPanel(view.AccessGranted, user)
		c.record(models.OutcomeGranted, c.lastScannedUID, user)
		return
	}

	c.view.ShowPanel(view.AccessRegistrationRequired, view.Placeholder(view.UnknownUser, c.lastScannedUID))
	c.view.ShowRegistration(c.lastScannedUID)
	c.record(models.OutcomeRegistrationRequired, c.lastScannedUID, models.UserRecord{})
}

func (c *Controller) handleRegisterSuccess(user *models.UserRecord) {
	metrics.Registrations.WithLabelValues("confirmed").Inc()
	c.log.Info("Reader confirmed registration")
	c.presenter.Notify(NoticeRegistered)

	// The badge is no longer pending; the reload below would hide the form anyway.
	c.view.HideRegistration()
	c.touch()
	c.requestDirectory()

	if user == nil {
		c.log.Warn("Registration confirmation carried no user")
		return
	}
	c.view.ShowPanel(view.AccessGrantedNew, *user)
	c.record(models.OutcomeRegistered, models.NormalizeUID(user.UID), *user)
}

func (c *Controller) enterAdminMode() {
	if c.adminMode {
		return
	}
	c.log.Info("Admin mode armed")
	c.view.HideRegistration()
	c.view.HideDirectory()
	c.setAdminMode(true)
}

func (c *Controller) setAdminMode(active bool) {
	c.adminMode = active
	if active {
		c.view.ShowAdminWaiting()
		c.view.ShowPanel(view.AccessWaiting, view.WaitingUser)
	} else {
		c.view.HideAdminWaiting()
	}
	c.touch()
}

func (c *Controller) submitRegistration(form models.RegistrationForm) error {
	nume := strings.TrimSpace(form.Nume)
	prenume := strings.TrimSpace(form.Prenume)
	rol := strings.TrimSpace(form.Rol)

	if nume == "" || prenume == "" || rol == "" {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return errors.Validation("please fill in all fields")
	}
	if strings.EqualFold(rol, models.RoleAdmin) {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return errors.Validation("the Admin role cannot be assigned from the kiosk")
	}
	if !c.view.Registration.Visible || c.lastScannedUID == "" {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return errors.Validation("no badge is waiting for registration")
	}
	if c.sender == nil {
		metrics.Registrations.WithLabelValues("failed").Inc()
		return errors.NotConnected("reader link is not configured")
	}

	req := models.RegisterRequest{
		Type:    models.MsgRegister,
		UID:     c.lastScannedUID,
		Nume:    nume,
		Prenume: prenume,
		Rol:     rol,
	}
	if err := c.sender.Send(req); err != nil {
		metrics.Registrations.WithLabelValues("failed").Inc()
		c.log.Warn("Failed to send registration", "uid", req.UID, "error", err)
		return err
	}

	metrics.Registrations.WithLabelValues("sent").Inc()
	c.log.Info("Registration request sent", "uid", req.UID, "role", rol)
	c.view.ShowMessage(view.TextSending)
	c.touch()
	return nil
}

func observeScan(outcome models.ScanOutcome) {
	metrics.ScansTotal.WithLabelValues(string(outcome)).Inc()
}
