package http_test

import (
	"context"
	"math"
	netHttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/net/http"
	"github.com/stairlin/rest/param"
	"github.com/stairlin/rest/report"
	lt "github.com/stairlin/rest/testing"
)

// observer records reported errors
type observer struct {
	mu     sync.Mutex
	errs   []error
	fields []report.Fields
}

func (o *observer) Report(ctx context.Context, err error, fields report.Fields) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errs = append(o.errs, err)
	o.fields = append(o.fields, fields)
}

func (o *observer) Close() error { return nil }

func (o *observer) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.errs)
}

func do(
	tt *lt.T, s *http.Server, method, target string,
) *httptest.ResponseRecorder {
	return doRequest(tt, s, httptest.NewRequest(method, target, nil))
}

func doRequest(
	tt *lt.T, s *http.Server, r *netHttp.Request,
) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler(tt.NewAppCtx("test-http")).ServeHTTP(w, r)
	return w
}

func echo() *http.Resource {
	return http.NewResource(param.Set{
		"id": param.Int(param.Required()),
	}).Get(func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
		return map[string]interface{}{
			"id":   r.Values.Int("id"),
			"name": "Zoë <b>&</b>",
		}, nil
	})
}

func fail(err error) *http.Resource {
	return http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			return nil, err
		},
	)
}

func TestResource_JSON(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo?id=3")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":3,"name":"Zoë <b>&</b>"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(http.HeaderRequestID))
}

func TestResource_MissingParam(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestResource_StatusEnvelope(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.SetOptions(http.OptEnvelope(http.StatusEnvelope))
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `{"data":null,"message":"400 id: Required","status":400}`, w.Body.String())

	w = do(tt, s, http.GET, "/echo?id=1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		`{"data":{"id":1,"name":"Zoë <b>&</b>"},"message":null,"status":200}`,
		w.Body.String(),
	)
}

func TestResource_EnvelopeOverride(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.SetOptions(http.OptEnvelope(http.StatusEnvelope))
	s.Route(`/raw$`, echo().SetEnvelope(http.Identity))

	w := do(tt, s, http.GET, "/raw?id=1")
	assert.Equal(t, `{"id":1,"name":"Zoë <b>&</b>"}`, w.Body.String())

	// Errors go through the resource envelope too
	w = do(tt, s, http.GET, "/raw")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "null", w.Body.String())

	// whereas requests without a resource get the server one
	w = do(tt, s, http.GET, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `{"data":null,"message":"404 Not Found","status":404}`, w.Body.String())
}

func TestResource_CustomEnvelope(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/wrapped$`, echo().SetEnvelope(
		func(v interface{}, code int, message string) interface{} {
			return map[string]interface{}{"code": code, "body": v}
		},
	))

	w := do(tt, s, http.GET, "/wrapped?id=2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"body":{"id":2,"name":"Zoë <b>&</b>"},"code":200}`, w.Body.String())
}

func TestResource_MethodNotAllowed(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.POST, "/echo?id=1")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
}

func TestResource_Head(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.HEAD, "/echo?id=1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResource_Methods(t *testing.T) {
	tt := lt.New(t)
	reply := func(v string) http.JSONFunc {
		return func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			return v, nil
		}
	}
	res := http.NewResource(nil).
		Post(reply("post")).
		Put(reply("put")).
		Patch(reply("patch")).
		Delete(reply("delete"))
	assert.Equal(t, []string{"DELETE", "PATCH", "POST", "PUT"}, res.Allow())

	s := http.NewServer()
	s.Route(`/x$`, res)
	for _, m := range []string{http.POST, http.PUT, http.PATCH, http.DELETE} {
		w := do(tt, s, m, "/x")
		assert.Equal(t, http.StatusOK, w.Code, m)
	}
	assert.Equal(t, `"put"`, do(tt, s, http.PUT, "/x").Body.String())
	assert.Equal(t, http.StatusMethodNotAllowed, do(tt, s, http.GET, "/x").Code)
}

func TestResource_InvalidParams(t *testing.T) {
	assert.Panics(t, func() {
		http.NewResource(param.Set{
			"id": param.Int(param.Required(), param.Default(1)),
		})
	})
}

func TestJSONP(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo?id=1&callback=jQuery.cb_1$")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.ContentTypeJavaScript, w.Header().Get("Content-Type"))
	assert.Equal(t, `jQuery.cb_1$({"id":1,"name":"Zoë <b>&</b>"})`, w.Body.String())

	// Errors keep a 200, so that the callback gets called
	w = do(tt, s, http.GET, "/echo?callback=cb")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `cb(null)`, w.Body.String())
}

func TestJSONP_InvalidCallback(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo?id=1&callback=alert(1)")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, `"Invalid callback"`, w.Body.String())
}

func TestJSONP_MultipleCallbacks(t *testing.T) {
	tt := lt.New(t)
	s := http.NewServer()
	s.Route(`/echo$`, echo())

	w := do(tt, s, http.GET, "/echo?id=1&callback=a&callback=b")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":1,"name":"Zoë <b>&</b>"}`, w.Body.String())
}

func TestFailure_ClientError(t *testing.T) {
	tt := lt.New(t)
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.SetOptions(http.OptEnvelope(http.StatusEnvelope))
	s.Route(`/conflict$`, fail(errors.Wrap(http.NewError(409, "Already exists"), "create")))

	w := do(tt, s, http.GET, "/conflict")
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, `{"data":null,"message":"409 Already exists","status":409}`, w.Body.String())
	assert.Equal(t, 0, o.len())
}

func TestFailure_ServerError(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.SetOptions(http.OptEnvelope(http.StatusEnvelope))
	s.Route(`/boom$`, fail(errors.New("boom")).SetContext(
		func(r *http.Request) report.Fields {
			return report.Fields{"user_id": "u-42"}
		},
	))

	w := do(tt, s, http.GET, "/boom?a=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, `{"data":null,"message":"Server-side error","status":500}`, w.Body.String())

	require.Equal(t, 1, o.len())
	assert.EqualError(t, o.errs[0], "boom")
	f := o.fields[0]
	assert.Equal(t, "/boom?a=1", f["url"])
	assert.Equal(t, http.GET, f["method"])
	assert.Equal(t, "a=1", f["query_string"])
	assert.Equal(t, map[string][]string{"a": {"1"}}, f["data"])
	assert.Equal(t, "u-42", f["user_id"])
	assert.NotEmpty(t, f["journey"])
}

func TestFailure_5xxError(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.Route(`/bad-gateway$`, fail(http.NewError(502, "")))

	w := do(tt, s, http.GET, "/bad-gateway")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, o.len())
}

func TestFailure_Panic(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.Route(`/panic$`, http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			panic("oops")
		},
	))

	w := do(tt, s, http.GET, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, o.len())
	assert.Contains(t, o.errs[0].Error(), "oops")
}

func TestFailure_Encoding(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.Route(`/nan$`, http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			return math.NaN(), nil
		},
	))

	w := do(tt, s, http.GET, "/nan")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "null", w.Body.String())
	assert.Equal(t, 1, o.len())
}

func TestFailure_UnencodableEnvelope(t *testing.T) {
	tt := lt.New(t)
	tt.DisableStrictMode()
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.Route(`/broken$`, echo().SetEnvelope(
		func(v interface{}, code int, message string) interface{} {
			return func() {}
		},
	))

	w := do(tt, s, http.GET, "/broken?id=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, http.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.Equal(t, `"Server-side error"`, w.Body.String())
	assert.Equal(t, 1, o.len())
}

func TestFailure_ConnectionError(t *testing.T) {
	tt := lt.New(t)
	o := &observer{}
	tt.Reporter().Register(o)

	s := http.NewServer()
	s.Route(`/gone$`, fail(errors.Wrap(context.Canceled, "upstream")))

	w := do(tt, s, http.GET, "/gone")
	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, o.len())
}

func TestTimeout(t *testing.T) {
	tt := lt.New(t)
	tt.Config().Request.TimeoutMS = 20

	s := http.NewServer()
	s.Route(`/slow$`, http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	))

	w := do(tt, s, http.GET, "/slow")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestClientCancel(t *testing.T) {
	tt := lt.New(t)
	called := make(chan struct{})
	s := http.NewServer()
	s.Route(`/slow$`, http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			close(called)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
				return "late", nil
			}
		},
	))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-called
		cancel()
	}()
	r := httptest.NewRequest(http.GET, "/slow", nil).WithContext(ctx)
	w := doRequest(tt, s, r)
	assert.Equal(t, 0, w.Body.Len())
}
