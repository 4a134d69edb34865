// Package sentry reports errors to Sentry
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/report"
)

// flushTimeout is the maximum time spent sending buffered events on Close
const flushTimeout = 2 * time.Second

// Observer sends reported errors to Sentry
type Observer struct {
	hub *sentry.Hub
}

// New creates a Sentry client from the config
func New(c *config.Sentry) (*Observer, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         config.ValueOf(c.DSN),
		Environment: config.ValueOf(c.Environment),
		SampleRate:  c.SampleRate,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sentry client")
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing Sentry client
func NewWithClient(client *sentry.Client) *Observer {
	return &Observer{hub: sentry.NewHub(client, sentry.NewScope())}
}

// Report captures err on a fresh scope. A "user_id" field is moved to the
// Sentry user, the remaining fields are attached as the "request" context.
func (o *Observer) Report(ctx context.Context, err error, fields report.Fields) {
	hub := o.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if id, ok := fields["user_id"]; ok {
			scope.SetUser(sentry.User{ID: fmt.Sprint(id)})
			delete(fields, "user_id")
		}
		if len(fields) > 0 {
			scope.SetContext("request", sentry.Context(fields))
		}
		hub.CaptureException(err)
	})
}

// Close flushes buffered events
func (o *Observer) Close() error {
	if !o.hub.Flush(flushTimeout) {
		return errors.New("sentry: flush timeout")
	}
	return nil
}
