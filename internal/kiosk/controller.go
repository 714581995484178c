// Package kiosk implements the access-control kiosk controller: it interprets
// reader events against the cached user directory and drives the display.
//
// All controller state is owned by a single event loop goroutine (Run). Reader
// callbacks, fetch completions, timers and operator actions are posted to that
// loop as closures, so no field below the "loop-owned" marker needs a lock.
package kiosk

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/rfidkiosk/internal/logger"
	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/view"
	"github.com/abrezinsky/rfidkiosk/pkg/kiosknet"
)

// DefaultRetryDelay is the wait before reloading the directory after a failed fetch
const DefaultRetryDelay = 5 * time.Second

// ErrStopped is returned by operator actions once the event loop has exited
var ErrStopped = stderrors.New("kiosk controller stopped")

// Sender delivers outbound messages to the reader
type Sender interface {
	Send(v any) error
}

// Presenter receives display updates
type Presenter interface {
	Present(patches []view.Patch)
	Notify(message string)
}

// Journal records interpreted scans
type Journal interface {
	RecordScan(ctx context.Context, ev models.ScanEvent) error
}

// Options tunes controller policies
type Options struct {
	RetryDelay time.Duration
	// RetryOnMalformedDirectory treats an unparseable directory like a failed
	// fetch (retry later) instead of falling back to an empty directory.
	RetryOnMalformedDirectory bool
}

type stopper interface {
	Stop() bool
}

// State is a point-in-time copy of the controller for status endpoints
type State struct {
	View            view.Snapshot `json:"view"`
	Connected       bool          `json:"connected"`
	DirectoryLoaded bool          `json:"directory_loaded"`
	DirectoryUsers  int           `json:"directory_users"`
	AdminMode       bool          `json:"admin_mode"`
	LastScannedUID  string        `json:"last_scanned_uid"`
}

// Controller is the kiosk's single stateful component
type Controller struct {
	log       logger.Logger
	source    kiosknet.Client
	presenter Presenter
	journal   Journal
	opts      Options

	events  chan func()
	done    chan struct{}
	current atomic.Pointer[[]view.Patch]

	after func(time.Duration, func()) stopper
	now   func() time.Time

	// loop-owned
	ctx            context.Context
	sender         Sender
	view           view.Snapshot
	directory      []models.UserRecord
	loaded         bool
	lastScannedUID string
	adminMode      bool
	connected      bool
	fetching       bool
	refetch        bool
	retry          stopper
	dirty          bool
}

// New creates a controller. A nil presenter or journal is allowed.
func New(log logger.Logger, source kiosknet.Client, presenter Presenter, journal Journal, opts Options) *Controller {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if presenter == nil {
		presenter = nopPresenter{}
	}

	c := &Controller{
		log:       log,
		source:    source,
		presenter: presenter,
		journal:   journal,
		opts:      opts,
		events:    make(chan func(), 64),
		done:      make(chan struct{}),
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		now:  time.Now,
		ctx:  context.Background(),
		view: view.Initial(),
	}
	c.render()
	return c
}

// SetSender sets the outbound channel to the reader
func (c *Controller) SetSender(s Sender) {
	c.sender = s
}

// Run processes events until ctx is cancelled
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.done)
	defer c.stopRetry()

	c.dirty = true
	c.flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-c.events:
			fn()
			c.flush()
		}
	}
}

// post queues fn on the event loop
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// do runs fn on the event loop and waits for it
func (c *Controller) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case c.events <- func() { fn(); close(finished) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// LinkOpened implements device.Handler
func (c *Controller) LinkOpened() {
	c.post(c.handleOpen)
}

// LinkClosed implements device.Handler
func (c *Controller) LinkClosed(err error) {
	c.post(func() { c.handleClose(err) })
}

// LinkMessage implements device.Handler
func (c *Controller) LinkMessage(data []byte) {
	c.post(func() { c.handleMessage(data) })
}

// EnterAdminMode arms admin mode: the next scan verifies an admin card
func (c *Controller) EnterAdminMode(ctx context.Context) error {
	return c.do(ctx, c.enterAdminMode)
}

// SubmitRegistration validates the form and sends a REGISTER message for the pending badge
func (c *Controller) SubmitRegistration(ctx context.Context, form models.RegistrationForm) error {
	var err error
	if doErr := c.do(ctx, func() { err = c.submitRegistration(form) }); doErr != nil {
		return doErr
	}
	return err
}

// RefreshDirectory requests a directory reload
func (c *Controller) RefreshDirectory(ctx context.Context) error {
	return c.do(ctx, c.requestDirectory)
}

// Snapshot returns a copy of the controller state
func (c *Controller) Snapshot(ctx context.Context) (State, error) {
	var st State
	err := c.do(ctx, func() { st = c.state() })
	return st, err
}

// Current returns the most recently rendered display patches
func (c *Controller) Current() []view.Patch {
	if p := c.current.Load(); p != nil {
		return *p
	}
	return nil
}

func (c *Controller) state() State {
	return State{
		View:            c.view.Clone(),
		Connected:       c.connected,
		DirectoryLoaded: c.loaded,
		DirectoryUsers:  len(c.directory),
		AdminMode:       c.adminMode,
		LastScannedUID:  c.lastScannedUID,
	}
}

// flush renders and presents the display if an event changed it
func (c *Controller) flush() {
	if !c.dirty {
		return
	}
	c.dirty = false
	if patches := c.render(); patches != nil {
		c.presenter.Present(patches)
	}
}

func (c *Controller) render() []view.Patch {
	patches, err := view.Render(c.view)
	if err != nil {
		c.log.Error("Failed to render display", "error", err)
		return nil
	}
	c.current.Store(&patches)
	return patches
}

func (c *Controller) touch() {
	c.dirty = true
}

func (c *Controller) record(outcome models.ScanOutcome, uid string, user models.UserRecord) {
	ev := models.ScanEvent{
		ID:        uuid.NewString(),
		UID:       uid,
		Outcome:   outcome,
		Name:      fullName(user),
		Role:      user.Rol,
		ScannedAt: c.now().UTC(),
	}
	observeScan(outcome)

	if c.journal == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.journal.RecordScan(ctx, ev); err != nil {
			c.log.Warn("Failed to record scan", "uid", ev.UID, "error", err)
		}
	}()
}

func fullName(u models.UserRecord) string {
	switch {
	case u.Nume == "":
		return u.Prenume
	case u.Prenume == "":
		return u.Nume
	default:
		return u.Nume + " " + u.Prenume
	}
}

type nopPresenter struct{}

func (nopPresenter) Present([]view.Patch) {}
func (nopPresenter) Notify(string)        {}
