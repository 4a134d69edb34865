package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stairlin/rest/report"
	"github.com/stretchr/testify/assert"
)

type observer struct {
	mu     sync.Mutex
	errs   []error
	fields []report.Fields
	closed bool
}

func (o *observer) Report(ctx context.Context, err error, fields report.Fields) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
	o.fields = append(o.fields, fields)
	delete(fields, "user_id")
}

func (o *observer) Close() error {
	o.closed = true
	return nil
}

func TestRegistry_Report(t *testing.T) {
	reg := report.NewRegistry(nil)
	a, b := &observer{}, &observer{}
	reg.Register(a)
	deregister := reg.Register(b)
	assert.Equal(t, 2, reg.Len())

	fields := report.Fields{"user_id": "42", "url": "/foo"}
	reg.Report(context.Background(), errors.New("oh noes"), fields)

	assert.Len(t, a.errs, 1)
	assert.Len(t, b.errs, 1)
	assert.EqualError(t, a.errs[0], "oh noes")
	assert.Equal(t, "42", fields["user_id"], "expect observers to receive a copy of the fields")

	deregister()
	deregister()
	assert.Equal(t, 1, reg.Len())

	reg.Report(context.Background(), errors.New("again"), nil)
	reg.Report(context.Background(), nil, nil)
	assert.Len(t, a.errs, 2)
	assert.Len(t, b.errs, 1)
}

func TestRegistry_Close(t *testing.T) {
	reg := report.NewRegistry(nil)
	o := &observer{}
	reg.Register(o)

	assert.NoError(t, reg.Close())
	assert.True(t, o.closed)
	assert.Equal(t, 0, reg.Len())
}
