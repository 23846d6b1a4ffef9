package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	kio "github.com/matzehuels/kitchendesigner/pkg/io"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/objective"
	"github.com/matzehuels/kitchendesigner/pkg/pipeline"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

// Engine describes one solver engine.
type Engine struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Default   bool   `json:"default"`
}

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	Document *kio.Document    `json:"document"`
	Options  pipeline.Options `json:"options"`
}

// SolveResponse is the body of a successful solve.
type SolveResponse struct {
	RunID      string                   `json:"run_id"`
	Status     milp.Status              `json:"status"`
	Objective  float64                  `json:"objective"`
	Cached     bool                     `json:"cached"`
	Layout     kio.Layout               `json:"layout"`
	Breakdown  []objective.Contribution `json:"breakdown"`
	Ambiguous  []int                    `json:"ambiguous,omitempty"`
	Violations []string                 `json:"violations,omitempty"`
	Artifacts  map[string][]byte        `json:"artifacts,omitempty"` // base64 in JSON
	Stats      ResponseStats            `json:"stats"`
}

// ResponseStats summarizes model size and stage timings.
type ResponseStats struct {
	Segments    int     `json:"segments"`
	Fixtures    int     `json:"fixtures"`
	Variables   int     `json:"variables"`
	Constraints int     `json:"constraints"`
	CompileMS   float64 `json:"compile_ms"`
	SolveMS     float64 `json:"solve_ms"`
}

// ValidateResponse is the body of a successful validation.
type ValidateResponse struct {
	Valid       bool `json:"valid"`
	Parts       int  `json:"parts"`
	Segments    int  `json:"segments"`
	Fixtures    int  `json:"fixtures"`
	Variables   int  `json:"variables"`
	Constraints int  `json:"constraints"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEngines(w http.ResponseWriter, _ *http.Request) {
	engines := make([]Engine, 0, len(solver.Names))
	for _, name := range solver.Names {
		engines = append(engines, Engine{Name: name, Available: solver.Available(name), Default: name == solver.Default})
	}
	writeJSON(w, http.StatusOK, engines)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var doc kio.Document
	if err := decode(r, &doc); err != nil {
		s.writeError(w, err)
		return
	}
	if err := doc.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.opts.Defaults
	opts.Formats = nil
	opts.ModelDump = ""
	model, err := s.runner.Compile(r.Context(), &doc, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st := model.Compiled.Model.Stats()
	writeJSON(w, http.StatusOK, ValidateResponse{
		Valid:       true,
		Parts:       len(model.Kitchen.Parts),
		Segments:    len(model.Kitchen.Segments),
		Fixtures:    len(model.Kitchen.Fixtures),
		Variables:   st.Variables,
		Constraints: st.Constraints,
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Document == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat, "request has no document"))
		return
	}

	opts := s.merge(req.Options)
	res, err := s.runner.Execute(r.Context(), req.Document, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := SolveResponse{
		RunID:     res.RunID,
		Status:    res.Solution.Status,
		Objective: res.Stats.Objective,
		Cached:    res.CacheInfo.SolutionHit,
		Layout:    res.Layout,
		Breakdown: res.Breakdown,
		Artifacts: res.Artifacts,
		Stats: ResponseStats{
			Segments:    res.Stats.Segments,
			Fixtures:    res.Stats.Fixtures,
			Variables:   res.Stats.Model.Variables,
			Constraints: res.Stats.Model.Constraints,
			CompileMS:   ms(res.Stats.CompileTime),
			SolveMS:     ms(res.Stats.SolveTime),
		},
	}
	for _, id := range res.Extract.Ambiguous {
		resp.Ambiguous = append(resp.Ambiguous, id.Number())
	}
	for _, v := range res.Violations {
		resp.Violations = append(resp.Violations, v.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// merge fills unset request options from the server defaults. Server-side
// paths never come from a request.
func (s *Server) merge(req pipeline.Options) pipeline.Options {
	d := s.opts.Defaults
	if req.Engine == "" {
		req.Engine = d.Engine
	}
	if req.TimeLimit <= 0 || (d.TimeLimit > 0 && req.TimeLimit > d.TimeLimit) {
		req.TimeLimit = d.TimeLimit
	}
	if len(req.Families) == 0 {
		req.Families = d.Families
	}
	if req.Weights == nil {
		req.Weights = d.Weights
	}
	req.ModelDump = ""
	req.WorkDir = ""
	req.KeepFiles = false
	req.Logger = s.logger
	return req
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}
