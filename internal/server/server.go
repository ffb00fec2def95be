// Package server implements the wfrender preview HTTP API.
//
// Routes:
//
//	GET    /healthz                       liveness and version
//	POST   /scenes                        store an iwf.json scene, returns its id
//	GET    /scenes                        list stored scenes
//	GET    /scenes/{id}                   the stored scene
//	DELETE /scenes/{id}                   remove a scene
//	GET    /scenes/{id}/render.{format}   render a stored scene
//	POST   /render.{format}               render the scene in the body
//
// Render endpoints take the frame in query parameters: time, time_policy,
// preview, width, height, refresh, no_defaults; any other parameter is a
// live value by kind name (heartrate=99).
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wfstudio/wfrender/pkg/buildinfo"
	"github.com/wfstudio/wfrender/pkg/cache"
	"github.com/wfstudio/wfrender/pkg/errors"
	wfio "github.com/wfstudio/wfrender/pkg/io"
	"github.com/wfstudio/wfrender/pkg/observability"
	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
	"github.com/wfstudio/wfrender/pkg/scenestore"
)

// MaxSceneBytes bounds request bodies holding a scene.
const MaxSceneBytes = 1 << 20

// RequestTimeout bounds each request.
const RequestTimeout = 15 * time.Second

// Server serves scenes and rendered frames.
type Server struct {
	runner *pipeline.Runner
	store  scenestore.Store
	logger *log.Logger

	// Defaults applied to every render before query parameters.
	Defaults pipeline.Options
}

// New creates a server rendering with runner and storing scenes in store.
func New(runner *pipeline.Runner, store scenestore.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: store, logger: logger}
}

// Routes returns the HTTP handler with all routes and middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", s.health)
	r.Post("/render.{format}", s.renderBody)
	r.Route("/scenes", func(r chi.Router) {
		r.Post("/", s.createScene)
		r.Get("/", s.listScenes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getScene)
			r.Delete("/", s.deleteScene)
			r.Get("/render.{format}", s.renderStored)
		})
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const loggerKey ctxKey = 0

// logRequests attaches a request-scoped logger and reports requests to the
// HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		ctx := r.Context()
		l := s.logger.With("req", middleware.GetReqID(ctx))
		ctx = context.WithValue(ctx, loggerKey, l)
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		l.Debug("request", "method", r.Method, "path", r.URL.Path, "status", status, "bytes", ww.BytesWritten(), "dur", dur)
	})
}

func requestLogger(r *http.Request) *log.Logger {
	if l, ok := r.Context().Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Server", buildinfo.ServerHeader())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type sceneSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func summarize(rec *scenestore.Record) sceneSummary {
	return sceneSummary{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt}
}

func (s *Server) createScene(w http.ResponseWriter, r *http.Request) {
	doc, err := readSceneBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rec, err := scenestore.NewRecord(doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.fail(w, r, err)
		return
	}
	requestLogger(r).Info("stored scene", "id", rec.ID, "name", rec.Name, "widgets", len(doc.Widgets))
	w.Header().Set("Location", "/scenes/"+rec.ID)
	writeJSON(w, http.StatusCreated, summarize(rec))
}

func (s *Server) listScenes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]sceneSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, summarize(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(rec.Scene)
}

func (s *Server) deleteScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderStored(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := rec.Document()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, doc)
}

func (s *Server) renderBody(w http.ResponseWriter, r *http.Request) {
	doc, err := readSceneBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, doc)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, doc *scene.Document) {
	opts, err := s.frameOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = requestLogger(r)

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("ETag", frameETag(res))
	cacheState := "miss"
	if res.CacheInfo.FrameHit {
		cacheState = "hit"
	}
	w.Header().Set("X-Frame-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// frameETag derives a strong ETag from the frame's cache key, so frames
// differing in any render input get distinct tags.
func frameETag(res *pipeline.Result) string {
	return strconv.Quote(cache.Hash([]byte(res.FrameKey))[:32])
}

// frameOptions builds pipeline options from the route format and query.
func (s *Server) frameOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.Defaults
	opts.Values = nil
	opts.Format = chi.URLParam(r, "format")
	if opts.Format == "jpg" {
		opts.Format = pipeline.FormatJPEG
	}

	q := r.URL.Query()
	for key, vals := range q {
		if len(vals) == 0 {
			continue
		}
		v := vals[len(vals)-1]
		var err error
		switch key {
		case "time":
			opts.Time = v
		case "time_policy":
			opts.TimePolicy = v
		case "preview":
			opts.Preview, err = strconv.ParseBool(v)
		case "refresh":
			opts.Refresh, err = strconv.ParseBool(v)
		case "no_defaults":
			opts.NoDefaults, err = strconv.ParseBool(v)
		case "width":
			opts.Width, err = strconv.Atoi(v)
		case "height":
			opts.Height, err = strconv.Atoi(v)
		default:
			if opts.Values == nil {
				opts.Values = make(map[string]string)
			}
			opts.Values[key] = v
		}
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", key)
		}
	}
	return opts, nil
}

func readSceneBody(w http.ResponseWriter, r *http.Request) (*scene.Document, error) {
	body := http.MaxBytesReader(w, r.Body, MaxSceneBytes)
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scene body")
	}
	doc, err := wfio.ReadScene(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for _, it := range doc.Unsupported {
		requestLogger(r).Warn("skipping unsupported item", "item", wfio.ItemLabel(it))
	}
	return doc, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

// fail writes err as a JSON error with the status its code maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	l := requestLogger(r)
	if status >= 500 {
		l.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		l.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	msg := errors.UserMessage(err)
	if status >= 500 {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
