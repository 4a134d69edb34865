package http

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
)

// fileEndpoint serves the files of a directory. Directories without an
// index.html are not listed.
type fileEndpoint struct {
	prefix string
	root   http.FileSystem
	rs     *resourceServer
}

func (e *fileEndpoint) Path() string {
	return e.prefix
}

func (e *fileEndpoint) Attach(r *mux.Router, h http.Handler) {
	r.PathPrefix(e.prefix).Handler(h)
}

func (e *fileEndpoint) Serve(ctx journey.Ctx, w ResponseWriter, r *Request) {
	rc := e.rs.renderCtx(ctx, w, r, nil)
	if m := r.HTTP.Method; m != GET && m != HEAD {
		w.Header().Set("Allow", GET+", "+HEAD)
		rc.fail(NewError(http.StatusMethodNotAllowed, ""), nil)
		return
	}

	name := strings.TrimPrefix(r.HTTP.URL.Path, e.prefix)
	name = path.Clean("/" + name)
	f, err := e.root.Open(name)
	if err != nil {
		rc.fail(fsError(err), nil)
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		rc.fail(fsError(err), nil)
		return
	}

	if st.IsDir() {
		index, err := e.root.Open(path.Join(name, "index.html"))
		if err != nil {
			rc.fail(NewError(http.StatusMethodNotAllowed, "Not allowed"), nil)
			return
		}
		defer index.Close()
		if st, err = index.Stat(); err != nil {
			rc.fail(fsError(err), nil)
			return
		}
		f = index
	}

	ctx.Trace("h.http.static", "Serve static file",
		log.String("name", name),
		log.String("if_modified_since", r.HTTP.Header.Get("If-Modified-Since")),
	)
	w.Content(r.HTTP, st.Name(), f, st.ModTime())
}

// fsError converts a file system error to an HTTP error
func fsError(err error) error {
	switch {
	case os.IsNotExist(err):
		return NewError(http.StatusNotFound, "")
	case os.IsPermission(err):
		return NewError(http.StatusForbidden, "")
	}
	return err
}
