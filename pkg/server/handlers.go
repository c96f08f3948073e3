package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/scenelayout/pkg/buildinfo"
	"github.com/matzehuels/scenelayout/pkg/errors"
	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/pipeline"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// Content types of the exports served by /v1/align.
var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDXF:  "image/vnd.dxf",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Strategies []string `json:"strategies"`
		Formats    []string `json:"formats"`
		Default    string   `json:"default"`
	}{layout.StrategyNames, pipeline.FormatNames, pipeline.DefaultStrategy})
}

// inputFormat maps a request Content-Type to a scene document format.
func inputFormat(contentType string) (string, error) {
	if contentType == "" {
		return scene.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "content type")
	}
	switch mt {
	case "application/json", "text/json":
		return scene.FormatJSON, nil
	case "application/toml", "text/toml":
		return scene.FormatTOML, nil
	case contentTypes[pipeline.FormatXLSX]:
		return scene.FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported content type %q", mt)
}

// queryOptions reads option overrides from the query string.
func queryOptions(r *http.Request) (pipeline.Options, string, error) {
	var opts pipeline.Options
	q := r.URL.Query()

	opts.Strategy = q.Get("strategy")
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, "", errors.New(errors.ErrCodeInvalidOption, "seed must be an unsigned integer, got %q", v)
		}
		opts.Seed = pipeline.Uint(seed)
	}
	for name, dst := range map[string]*bool{"audit": &opts.Audit, "refresh": &opts.Refresh} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, "", errors.New(errors.ErrCodeInvalidOption, "%s must be a boolean, got %q", name, v)
			}
			*dst = b
		}
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, "", err
	}
	opts.Formats = []string{format}
	return opts, format, nil
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	opts, format, err := queryOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	inFormat, err := inputFormat(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	doc, err := pipeline.Parse(body, inFormat, &opts)
	if err != nil {
		writeError(w, err)
		return
	}

	l, hit, err := s.runner.Align(r.Context(), doc, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.Header().Set("X-Run-Id", l.RunID)

	if format == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, l)
		return
	}

	artifacts, err := pipeline.Render(r.Context(), l, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// collisionsRequest is the body of /v1/collisions. Objects use the same
// shape as the objects of a layout; only name, position and size (or
// bounding_box) are needed.
type collisionsRequest struct {
	Objects          []scene.Placement `json:"objects"`
	MaxOverlapVolume *float64          `json:"max_overlap_volume,omitempty"`
}

type collisionsResponse struct {
	Collisions []layout.CollisionRecord `json:"collisions"`
	Summary    layout.AuditSummary      `json:"summary"`
}

func (s *Server) handleCollisions(w http.ResponseWriter, r *http.Request) {
	var req collisionsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode request"))
		return
	}
	for i, p := range req.Objects {
		if p.Name == "" {
			writeError(w, errors.New(errors.ErrCodeInvalidDocument, "objects[%d] has no name", i))
			return
		}
	}

	l := scene.Layout{Objects: req.Objects}
	records, hit, err := s.runner.Audit(r.Context(), l, req.MaxOverlapVolume)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []layout.CollisionRecord{}
	}
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, collisionsResponse{
		Collisions: records,
		Summary:    layout.Summarize(len(req.Objects), records),
	})
}
