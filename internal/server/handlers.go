package server

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// MaxBodyBytes caps the size of a posted rig document
const MaxBodyBytes = 16 << 20

// Handler serves the pipeline actions
type Handler struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	log      *zap.Logger
	version  string
}

// NewHandler creates a handler. defaults are the options used when a
// request does not override them.
func NewHandler(runner *pipeline.Runner, defaults pipeline.Options, version string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{runner: runner, defaults: defaults, log: log, version: version}
}

// Routes builds the chi router for the bridge
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/v1/rigs", func(r chi.Router) {
		r.Post("/{action}", h.runAction)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		RenderErrorWithStatus(w, http.StatusNotFound, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request) {
	action, err := pipeline.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		RenderErrorWithStatus(w, http.StatusNotFound, err)
		return
	}

	opts, err := h.options(r)
	if err != nil {
		RenderErrorWithStatus(w, http.StatusBadRequest, err)
		return
	}

	format := requestFormat(r)
	rig, err := skeleton.Decode(http.MaxBytesReader(w, r.Body, MaxBodyBytes), format)
	if err != nil {
		RenderError(w, err)
		return
	}

	result, err := h.runner.Run(action, rig, opts)
	if err != nil {
		h.log.Info("Action failed",
			zap.String("action", string(action)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		RenderError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := skeleton.Encode(&buf, rig, skeleton.FormatJSON); err != nil {
		RenderError(w, err)
		return
	}

	RenderJSON(w, http.StatusOK, ActionResponse{
		Status:  result.Status,
		Summary: result.Summary,
		Stats:   result.Stats,
		Rig:     buf.Bytes(),
	})
}

// options applies query overrides such as ?symmetrize=false to the defaults
func (h *Handler) options(r *http.Request) (pipeline.Options, error) {
	opts := h.defaults
	opts.Exclude = slices.Clone(h.defaults.Exclude)
	q := r.URL.Query()

	toggles := map[string]*bool{
		"symmetrize":          &opts.Symmetrize,
		"simplify":            &opts.Simplify,
		"renumber_hairjoints": &opts.RenumberHairJoints,
		"leaf_bones":          &opts.RemoveLeaves,
		"bone_chains":         &opts.ConnectChains,
	}
	for name, target := range toggles {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("query parameter %s: %q is not a boolean", name, raw)
		}
		*target = v
	}
	// Renumbering follows simplify unless asked for or decoupled in the defaults
	if _, explicit := q["renumber_hairjoints"]; !explicit && q.Get("simplify") != "" &&
		h.defaults.RenumberHairJoints == h.defaults.Simplify {
		opts.RenumberHairJoints = opts.Simplify
	}

	if raw := q.Get("collision"); raw != "" {
		policy, err := naming.ParseCollisionPolicy(raw)
		if err != nil {
			return opts, err
		}
		opts.Collision = policy
	}
	if raw, ok := q["exclude"]; ok {
		opts.Exclude = []string{}
		for _, v := range raw {
			for _, category := range strings.Split(v, ",") {
				if category = strings.TrimSpace(category); category != "" {
					opts.Exclude = append(opts.Exclude, category)
				}
			}
		}
	}
	return opts, nil
}

// requestFormat picks the body encoding from the Content-Type; JSON unless
// the client says YAML
func requestFormat(r *http.Request) skeleton.Format {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return skeleton.FormatYAML
	}
	return skeleton.FormatJSON
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// logRequests logs one line per request, skipping health checks
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.log.Info("Request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}
