package statsd

import (
	"sort"
	"time"

	"github.com/pkg/errors"
	statsd "gopkg.in/alexcesaro/statsd.v2"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/stats"
)

// Name is the adapter name used in the config
const Name = "statsd"

var tagsFormats = map[string]statsd.TagFormat{
	"influxdb": statsd.InfluxDB,
	"datadog":  statsd.Datadog,
}

// Config is the statsd section of the stats config
//
//	[stats.statsd]
//	addr = "127.0.0.1:8125"
//	prefix = "myapp"
//	tags_format = "datadog"
//	[stats.statsd.tags]
//	dc = "$DATACENTER"
type Config struct {
	Addr       string            `toml:"addr"`
	Prefix     string            `toml:"prefix"`
	TagsFormat string            `toml:"tags_format"`
	Tags       map[string]string `toml:"tags"`
}

// New creates a statsd client from the given config tree
func New(tree config.Tree) (stats.Stats, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "statsd config")
	}

	var opts []statsd.Option
	if c.Addr != "" {
		opts = append(opts, statsd.Address(config.ValueOf(c.Addr)))
	}
	if c.Prefix != "" {
		opts = append(opts, statsd.Prefix(c.Prefix))
	}
	if c.TagsFormat != "" {
		f, ok := tagsFormats[c.TagsFormat]
		if !ok {
			return nil, errors.Errorf("statsd: unknown tags format <%s>", c.TagsFormat)
		}
		opts = append(opts, statsd.TagsFormat(f))
	}
	if tags := flatten(c.Tags); len(tags) > 0 {
		opts = append(opts, statsd.Tags(tags...))
	}

	client, err := statsd.New(opts...)
	if err != nil {
		// The returned client is muted but still usable
		return nil, errors.Wrap(err, "statsd")
	}

	return &Client{
		addr:   c.Addr,
		tagged: c.TagsFormat != "",
		C:      client,
		logger: log.Nop(),
	}, nil
}

// Client is a stats adapter which pushes metrics to a statsd daemon
type Client struct {
	addr   string
	tagged bool
	C      *statsd.Client
	logger log.Logger
}

func (c *Client) Start() {
	c.logger.Trace("stats.statsd.start", "Pushing metrics", log.String("addr", c.addr))
}

func (c *Client) Stop() {
	c.C.Close()
}

func (c *Client) SetLogger(l log.Logger) {
	c.logger = l
}

func (c *Client) Count(key string, n interface{}, meta ...map[string]string) {
	c.with(meta).Count(key, n)
}

func (c *Client) Inc(key string, meta ...map[string]string) {
	c.with(meta).Increment(key)
}

func (c *Client) Dec(key string, meta ...map[string]string) {
	c.with(meta).Count(key, -1)
}

func (c *Client) Gauge(key string, n interface{}, meta ...map[string]string) {
	c.with(meta).Gauge(key, n)
}

func (c *Client) Timing(key string, t time.Duration, meta ...map[string]string) {
	c.with(meta).Timing(key, int64(t/time.Millisecond))
}

func (c *Client) Histogram(key string, n interface{}, meta ...map[string]string) {
	c.with(meta).Histogram(key, n)
}

// with returns a client carrying the metric tags. Tags are dropped when no
// tags format has been configured, since plain statsd cannot encode them.
func (c *Client) with(meta []map[string]string) *statsd.Client {
	if !c.tagged || len(meta) == 0 || len(meta[0]) == 0 {
		return c.C
	}
	return c.C.Clone(statsd.Tags(flatten(meta[0])...))
}

// flatten converts a tag map into sorted key/value pairs
func flatten(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := make([]string, 0, len(m)*2)
	for _, k := range keys {
		l = append(l, k, config.ValueOf(m[k]))
	}
	return l
}
