// Package journey defines a context type, which carries information about
// a specific inbound request. It is created when it hits the first service
// and it is propagated accross all services (see the Request-Id header).
//
// It has been named journey instead of request, because a journey can result
// of multiple sub-requests. And also because it sounds nice, isn't it?
package journey

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/stairlin/rest/bg"
	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/ctx"
	"github.com/stairlin/rest/ctx/app"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/report"
	"github.com/stairlin/rest/stats"
)

// Type defines how a journey branches off its parent
type Type int

const (
	// Child journeys are cancelled along with their parent
	Child Type = iota
	// Background journeys outlive their parent
	Background
)

// Ctx is the journey context interface
type Ctx interface {
	context.Context
	ctx.Ctx

	UUID() string
	ShortID() string
	AppConfig() *config.Config
	BranchOff(t Type) Ctx
	BG(f func(c Ctx)) error
	Report(err error, fields report.Fields)
	Cancel()
	End()
}

// journey holds the context of a request during its whole lifecycle
type journey struct {
	context.Context
	cancel context.CancelFunc

	id      string
	stepper *Stepper
	app     app.Ctx
}

// New creates a new root journey
func New(app app.Ctx) Ctx {
	return NewFrom(context.Background(), app, "")
}

// NewFrom creates a journey derived from parent. When id is empty, a new
// UUID is generated, otherwise the journey continues the given one.
// The journey expires after the configured request timeout (if any).
func NewFrom(parent context.Context, app app.Ctx, id string) Ctx {
	if id == "" {
		id = uuid.New().String()
	}

	var c context.Context
	var cancel context.CancelFunc
	if d := app.Config().Request.Timeout(); d > 0 {
		c, cancel = context.WithTimeout(parent, d)
	} else {
		c, cancel = context.WithCancel(parent)
	}

	return &journey{
		Context: c,
		cancel:  cancel,
		id:      id,
		stepper: NewStepper(),
		app:     app,
	}
}

// AppConfig returns the application configuration on which this context currently runs
func (c *journey) AppConfig() *config.Config {
	return c.app.Config()
}

func (c *journey) Stats() stats.Stats {
	return c.app.Stats()
}

// UUID returns the universally unique identifier assigned to this context
func (c *journey) UUID() string {
	return c.id
}

// ShortID returns a partial representation of a request ID for the sake of readability
// However its uniqueness is not guarantee
func (c *journey) ShortID() string {
	return strings.Split(c.id, "-")[0]
}

// BranchOff returns a new journey which shares the same ID. A Child journey
// is cancelled with its parent, whereas a Background journey is not.
func (c *journey) BranchOff(t Type) Ctx {
	var parent context.Context = c
	if t == Background {
		parent = context.Background()
	}
	nc, cancel := context.WithCancel(parent)

	return &journey{
		Context: nc,
		cancel:  cancel,
		id:      c.id,
		stepper: c.stepper.BranchOff(),
		app:     c.app,
	}
}

// BG executes the given function in background with a background journey.
// The function is tracked by the app background registry, so the app waits
// for it when it drains.
func (c *journey) BG(f func(c Ctx)) error {
	b := c.BranchOff(Background)
	return c.app.BG().Dispatch(bg.NewTask(func() {
		defer b.End()
		f(b)
	}))
}

// Report sends err to the app error reporter, along with the journey ID
func (c *journey) Report(err error, fields report.Fields) {
	f := report.Fields{"journey": c.id}
	for k, v := range fields {
		f[k] = v
	}
	c.app.Reporter().Report(c, err, f)
}

// Cancel releases the journey and its children
func (c *journey) Cancel() {
	c.cancel()
}

// End marks the journey as complete and releases its resources
func (c *journey) End() {
	c.cancel()
}

func (c *journey) Trace(tag, msg string, fields ...log.Field) {
	c.incTag(tag)
	c.app.L().Trace(tag, msg, c.fields(fields)...)
}

func (c *journey) Warning(tag, msg string, fields ...log.Field) {
	c.app.L().Warning(tag, msg, c.fields(fields)...)
}

func (c *journey) Error(tag, msg string, fields ...log.Field) {
	c.app.L().Error(tag, msg, c.fields(fields)...)
}

func (c *journey) fields(l []log.Field) []log.Field {
	c.stepper.Inc()
	return append([]log.Field{
		log.String("log_type", "J"),
		log.String("app", c.app.Name()),
		log.String("id", c.ShortID()),
		log.String("step", c.stepper.String()),
	}, l...)
}

func (c *journey) incTag(tag string) {
	c.app.Stats().Inc("log", map[string]string{"tag": tag})
}
