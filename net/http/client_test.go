package http_test

import (
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/net/http"
	lt "github.com/stairlin/rest/testing"
)

func TestClient_PropagateContext(t *testing.T) {
	tt := lt.New(t)
	tt.Config().Request.AllowContext = true
	appCtx := tt.NewAppCtx("test-client")

	s := http.NewServer()
	s.Route(`/id$`, http.NewResource(nil).Get(
		func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
			return ctx.UUID(), nil
		},
	))
	ts := httptest.NewServer(s.Handler(appCtx))
	defer ts.Close()

	ctx := journey.New(appCtx)
	client := &http.Client{PropagateContext: true}
	res, err := client.Get(ctx, ts.URL+"/id")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, ctx.UUID(), res.Header.Get(http.HeaderRequestID))

	// Not propagated by default
	res, err = http.Get(ctx, ts.URL+"/id")
	require.NoError(t, err)
	res.Body.Close()
	assert.NotEqual(t, ctx.UUID(), res.Header.Get(http.HeaderRequestID))
}

func TestClient_GetAll(t *testing.T) {
	tt := lt.New(t)
	appCtx := tt.NewAppCtx("test-client")

	var inFlight, max int64
	s := http.NewServer()
	s.RoutePath(`/n/(\d+)$`, func(params map[string]string, args []string) *http.Resource {
		return http.NewResource(nil).Get(
			func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
				n := atomic.AddInt64(&inFlight, 1)
				defer atomic.AddInt64(&inFlight, -1)
				for {
					m := atomic.LoadInt64(&max)
					if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
						break
					}
				}

				i, _ := strconv.Atoi(args[0])
				time.Sleep(time.Duration(5-i) * 5 * time.Millisecond)
				return i, nil
			},
		)
	})
	ts := httptest.NewServer(s.Handler(appCtx))
	defer ts.Close()

	var urls []string
	for i := 0; i < 5; i++ {
		urls = append(urls, ts.URL+"/n/"+strconv.Itoa(i))
	}

	ctx := journey.New(appCtx)
	f, err := (&http.Client{}).GetAll(ctx, urls, 2)
	require.NoError(t, err)
	l, err := f.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, l, 5)
	for i, res := range l {
		assert.Equal(t, urls[i], res.URL)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		var n int
		require.NoError(t, res.JSON(&n))
		assert.Equal(t, i, n)
	}
	assert.True(t, atomic.LoadInt64(&max) <= 2, "too many requests in flight")
}

func TestClient_GetAllFailure(t *testing.T) {
	tt := lt.New(t)
	appCtx := tt.NewAppCtx("test-client")

	s := http.NewServer()
	s.Route(`/ok$`, constant("ok"))
	ts := httptest.NewServer(s.Handler(appCtx))
	defer ts.Close()

	ctx := journey.New(appCtx)
	f, err := http.DefaultClient.GetAll(ctx, []string{ts.URL + "/ok", ts.URL + "/missing"}, 1)
	require.NoError(t, err)
	_, err = f.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestClient_GetAllInvalidLimit(t *testing.T) {
	tt := lt.New(t)
	ctx := journey.New(tt.NewAppCtx("test-client"))

	_, err := http.DefaultClient.GetAll(ctx, []string{"http://127.0.0.1/"}, 0)
	assert.Error(t, err)
}
