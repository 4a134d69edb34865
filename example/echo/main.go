package main

import (
	"fmt"
	"os"

	"github.com/stairlin/rest"
	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/net/http"
	"github.com/stairlin/rest/param"
	"github.com/stairlin/rest/report"
	"github.com/stairlin/rest/stats"
)

type AppConfig struct {
	Addr    string   `toml:"addr"`
	Mirrors []string `toml:"mirrors"`
	Limit   int      `toml:"limit"`
}

func main() {
	app, err := rest.New("echo")
	if err != nil {
		fmt.Println("Problem initialising app", err)
		os.Exit(1)
	}

	config := AppConfig{Addr: "127.0.0.1:3000", Limit: 2}
	if err := app.Config().App.Unmarshal(&config); err != nil {
		fmt.Println("Problem reading app config", err)
		os.Exit(1)
	}

	// Register HTTP server
	s := http.NewServer()
	s.SetOptions(http.OptEnvelope(http.StatusEnvelope))
	s.Route(`/echo$`, EchoResource())
	s.RoutePath(`/hello/(?P<name>\w+)$`, Hello)
	s.Route(`/fanout$`, FanOutResource(&config))
	if e, ok := app.Stats().(stats.Exporter); ok {
		s.Handle("/metrics", e.Handler())
	}
	app.RegisterServer(config.Addr, s)

	// Start serving requests
	if err := app.Serve(); err != nil {
		fmt.Println("Problem serving requests", err)
		os.Exit(1)
	}
}

// EchoResource echoes the query string back, as long as it has an id
func EchoResource() *http.Resource {
	return http.NewResource(param.Set{
		"id": param.Int(param.Required()),
	}).Get(func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
		ctx.Trace("action.echo", "Echo", log.Int("id", r.Values.Int("id")))
		return r.HTTP.URL.Query(), nil
	}).SetContext(func(r *http.Request) report.Fields {
		return report.Fields{"user_id": r.HTTP.Header.Get("X-User-Id")}
	})
}

// Hello greets the name captured in the path, in the requested language
func Hello(params map[string]string, args []string) *http.Resource {
	greetings := map[string]string{"en": "Hello", "fr": "Bonjour", "de": "Hallo"}
	return http.NewResource(param.Set{
		"lang": param.Lang(param.Default("en")),
	}).Get(func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
		g, ok := greetings[r.Values.String("lang")]
		if !ok {
			g = greetings["en"]
		}
		return map[string]string{"greeting": g + " " + params["name"]}, nil
	})
}

// FanOutResource fetches all mirrors with a bounded concurrency and returns
// their status codes in order
func FanOutResource(c *AppConfig) *http.Resource {
	client := &http.Client{PropagateContext: true}
	return http.NewResource(param.Set{
		"limit": param.Int(param.Min(1), param.Max(10), param.Default(c.Limit)),
	}).Get(func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
		f, err := client.GetAll(ctx, c.Mirrors, r.Values.Int("limit"))
		if err != nil {
			return nil, err
		}
		l, err := f.Wait(ctx)
		if err != nil {
			return nil, err
		}

		codes := make(map[string]int, len(l))
		for _, res := range l {
			codes[res.URL] = res.StatusCode
		}
		return codes, nil
	})
}
