package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/stairlin/rest/async"
	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
)

// DefaultClient is the default Client and is used by Get, Head, and Post.
var DefaultClient = &Client{}

// Client is a wrapper for the standard net/http client.
type Client struct {
	// HTTP is the standard net/http client
	HTTP http.Client
	// PropagateContext tells whether the journey ID should be sent upstream
	// with the Request-Id header.
	//
	// The upstream service continues the journey only when it allows it.
	PropagateContext bool
}

// Do sends an HTTP request with the provided http.Client and returns
// an HTTP response.
//
// The provided ctx must be non-nil. If it is canceled or times out,
// ctx.Err() will be returned.
func (c *Client) Do(ctx journey.Ctx, req *http.Request) (*http.Response, error) {
	if c.PropagateContext {
		req.Header.Set(HeaderRequestID, ctx.UUID())
	}

	resp, err := c.HTTP.Do(req.WithContext(ctx))
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			return nil, err
		}
	}
	return resp, nil
}

// Get issues a GET request via the Do function.
func (c *Client) Get(ctx journey.Ctx, url string) (*http.Response, error) {
	req, err := http.NewRequest(GET, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Head issues a HEAD request via the Do function.
func (c *Client) Head(ctx journey.Ctx, url string) (*http.Response, error) {
	req, err := http.NewRequest(HEAD, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post issues a POST request via the Do function.
func (c *Client) Post(
	ctx journey.Ctx, url string, bodyType string, body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequest(POST, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", bodyType)
	return c.Do(ctx, req)
}

// PostForm issues a POST request via the Do function.
func (c *Client) PostForm(
	ctx journey.Ctx, url string, data url.Values,
) (*http.Response, error) {
	return c.Post(ctx, url, "application/x-www-form-urlencoded", strings.NewReader(data.Encode()))
}

// Response is a fully read HTTP response
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v
func (r *Response) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// GetAll fetches all urls with at most limit requests in flight at a time.
// Each request runs on a child journey.
//
// The future resolves with the responses in the order of urls, or it rejects
// with the first failure. Responses with a 4xx or 5xx status are failures.
func (c *Client) GetAll(
	ctx journey.Ctx, urls []string, limit int,
) (*async.Future[[]*Response], error) {
	factories := make([]async.Factory[*Response], len(urls))
	for i, u := range urls {
		u := u
		factories[i] = func() *async.Future[*Response] {
			child := ctx.BranchOff(journey.Child)
			return async.Go(func() (*Response, error) {
				defer child.End()
				return c.fetch(child, u)
			})
		}
	}
	return async.Limited(factories, limit)
}

func (c *Client) fetch(ctx journey.Ctx, url string) (*Response, error) {
	ctx.Trace("http.client.fetch", "Fetch", log.String("url", url))

	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Get issues a GET request via the Do function.
func Get(ctx journey.Ctx, url string) (*http.Response, error) {
	return DefaultClient.Get(ctx, url)
}

// Post issues a POST to the specified URL.
func Post(
	ctx journey.Ctx, url string, contentType string, body io.Reader,
) (resp *http.Response, err error) {
	return DefaultClient.Post(ctx, url, contentType, body)
}

// PostForm issues a POST to the specified URL, with data's keys and
// values URL-encoded as the request body.
func PostForm(
	ctx journey.Ctx, url string, data url.Values,
) (resp *http.Response, err error) {
	return DefaultClient.PostForm(ctx, url, data)
}

// Head issues a HEAD to the specified URL.
//
// Head is a wrapper around DefaultClient.Head
func Head(ctx journey.Ctx, url string) (resp *http.Response, err error) {
	return DefaultClient.Head(ctx, url)
}
