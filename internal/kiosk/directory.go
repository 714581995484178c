package kiosk

import (
	"github.com/abrezinsky/rfidkiosk/internal/errors"
	"github.com/abrezinsky/rfidkiosk/internal/metrics"
	"github.com/abrezinsky/rfidkiosk/internal/models"
	"github.com/abrezinsky/rfidkiosk/internal/view"
)

// requestDirectory starts a directory fetch. At most one fetch is in flight;
// requests made meanwhile collapse into a single follow-up fetch.
func (c *Controller) requestDirectory() {
	if c.fetching {
		c.refetch = true
		return
	}
	c.stopRetry()
	c.fetching = true

	ctx := c.ctx
	source := c.source
	go func() {
		users, err := source.FetchDirectory(ctx)
		c.post(func() { c.directoryLoaded(users, err) })
	}()
}

func (c *Controller) directoryLoaded(users []models.UserRecord, err error) {
	c.fetching = false

	if err != nil && errors.IsKind(err, errors.ErrParse) && !c.opts.RetryOnMalformedDirectory {
		metrics.DirectoryFetches.WithLabelValues("parse_error").Inc()
		c.log.Error("Directory is malformed, continuing with an empty directory", "error", err)
		users, err = []models.UserRecord{}, nil
	}

	if err != nil {
		if errors.IsKind(err, errors.ErrParse) {
			metrics.DirectoryFetches.WithLabelValues("parse_error").Inc()
		} else {
			metrics.DirectoryFetches.WithLabelValues("fetch_error").Inc()
		}
		c.log.Error("Failed to load directory", "error", err, "retry_in", c.opts.RetryDelay)
		c.view.SetStatus(view.TextLoadFailed, view.StatusDisconnected)
		c.touch()
		c.scheduleRetry()
	} else {
		if users == nil {
			users = []models.UserRecord{}
		}
		c.directory = users
		c.loaded = true
		if len(users) == 0 {
			metrics.DirectoryFetches.WithLabelValues("empty").Inc()
		} else {
			metrics.DirectoryFetches.WithLabelValues("ok").Inc()
		}
		metrics.DirectorySize.Set(float64(len(users)))
		c.log.Info("Directory loaded", "users", len(users))

		c.view.SetStatus(view.TextReady, view.StatusConnected)
		c.view.HideTransient()
		if c.adminMode {
			// The waiting panel would otherwise keep advertising admin mode.
			c.log.Info("Directory reload cancelled admin mode")
			c.view.Panel = nil
			c.adminMode = false
		}
		c.touch()
	}

	if c.refetch {
		c.refetch = false
		c.requestDirectory()
	}
}

// scheduleRetry arms the single retry timer, replacing any pending one
func (c *Controller) scheduleRetry() {
	c.stopRetry()
	c.retry = c.after(c.opts.RetryDelay, func() {
		c.post(c.requestDirectory)
	})
}

func (c *Controller) stopRetry() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}
