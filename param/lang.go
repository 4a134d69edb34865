package param

import (
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

const langKey = "lang"

// wildcard is the tag "*" is parsed into
var wildcard = language.MustParse("mul")

type lang struct {
	*base
}

// Lang returns the "lang" query value when present. Otherwise it picks the
// preferred language of the Accept-Language header, and falls back to the
// default value when the header is missing or malformed.
func Lang(opts ...Option) Param {
	return &lang{
		base: newBase(func(key, v string) (interface{}, error) {
			return v, nil
		}, append([]Option{Name(langKey)}, opts...)),
	}
}

func (l *lang) Parse(name string, r *http.Request) (interface{}, error) {
	if _, ok := r.URL.Query()[l.key(name)]; ok {
		return l.base.Parse(name, r)
	}
	return l.infer(r), nil
}

func (l *lang) infer(r *http.Request) interface{} {
	h := r.Header.Get("Accept-Language")
	if h == "" {
		return l.fallback()
	}

	// Tags are sorted by descending weight
	tags, _, err := language.ParseAcceptLanguage(h)
	if err != nil {
		return l.fallback()
	}
	for _, t := range tags {
		if t == language.Und || t == wildcard {
			continue
		}
		return t.String()
	}
	return l.fallback()
}

func (l *lang) fallback() interface{} {
	if l.def == nil {
		return nil
	}
	return fmt.Sprint(l.def)
}
