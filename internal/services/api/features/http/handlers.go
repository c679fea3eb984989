// Package http provides the feature extraction endpoints
package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"eogfeat/internal/core/aggregate"
	"eogfeat/internal/core/features"
	"eogfeat/internal/modkit/httpkit"
	perr "eogfeat/internal/platform/errors"
	"eogfeat/internal/platform/net/http/bind"
	"eogfeat/internal/services/features/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Deps are the handler dependencies; Writer may be nil
type Deps struct {
	Extractor domain.ExtractorPort
	Writer    domain.WriterPort
	Reader    domain.ReaderPort
}

type handlers struct {
	deps Deps
}

var registerOnce sync.Once

// registerValidations installs the lab_condition tag used by ExtractRequest
func registerValidations() {
	registerOnce.Do(func() {
		err := bind.RegisterValidation("lab_condition", "{0} must be a condition name or tag", func(fl validator.FieldLevel) bool {
			_, err := features.ParseCondition(fl.Field().String())
			return err == nil
		})
		if err != nil {
			panic("features http: " + err.Error())
		}
	})
}

// Register mounts the feature routes
func Register(r httpkit.Router, d Deps) {
	registerValidations()
	h := &handlers{deps: d}

	httpkit.PostJSON[ExtractRequest](r, "/extract", h.extract)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/summary", h.summary)
}

//
// Swagger DTOs and route docs
//

// ExtractRequest carries one raw recording export
// swagger:model
type ExtractRequest struct {
	Subject   string `json:"subject"   validate:"required,max=128" example:"S01"`
	Condition string `json:"condition" validate:"required,lab_condition" example:"HAPPY"`
	Recording string `json:"recording" validate:"required"`
	Source    string `json:"source,omitempty" validate:"max=512" example:"S01 HAPPY.txt"`
	Persist   bool   `json:"persist"   example:"false"`
}

// ExtractResponse is the feature row of one recording
type ExtractResponse struct {
	Row       domain.Row `json:"row"`
	Persisted bool       `json:"persisted"`
	RunID     string     `json:"run_id,omitempty"`
}

// SummaryResponse holds per condition means and their change from baseline
type SummaryResponse struct {
	Conditions []aggregate.ConditionSummary `json:"conditions"`
	Deltas     []aggregate.Delta            `json:"deltas"`
}

// swagger:route POST /features/extract Features featuresExtract
// @Summary Extract features from one recording
// @Tags Features
// @Accept json
// @Produce json
// @Param payload body ExtractRequest true "Recording"
// @Success 200 type ExtractResponse ok
// @Success 201 type ExtractResponse persisted
// @Failure 422 "unreadable, degenerate or unextractable recording"
// @Router /features/extract [post]
func (h *handlers) extract(r *http.Request, in ExtractRequest) (any, error) {
	cond, err := features.ParseCondition(in.Condition)
	if err != nil {
		return nil, err
	}
	src := in.Source
	if src == "" {
		src = "upload:" + in.Subject + " " + cond.Tag()
	}
	rec := domain.Recording{Subject: in.Subject, Condition: cond, Source: src}

	row, err := h.deps.Extractor.ExtractOne(r.Context(), rec, strings.NewReader(in.Recording))
	if err != nil {
		return nil, err
	}
	out := ExtractResponse{Row: row}
	if !in.Persist {
		return out, nil
	}
	if h.deps.Writer == nil {
		return nil, perr.Unavailablef("persistence is not configured")
	}
	out.RunID = uuid.NewString()
	if err := h.deps.Writer.Save(r.Context(), out.RunID, []domain.Row{row}); err != nil {
		return nil, err
	}
	out.Persisted = true
	return httpkit.Created(out), nil
}

// swagger:route GET /features Features featuresList
// @Summary List stored feature rows
// @Tags Features
// @Produce json
// @Param condition query string false "BASELINE, POSITIVE, STRESS or a tag"
// @Param subject query string false "Subject id"
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} domain.Stored ok
// @Router /features [get]
func (h *handlers) list(r *http.Request) (any, error) {
	f, err := filterFrom(r)
	if err != nil {
		return nil, err
	}
	rows, total, err := h.deps.Reader.List(r.Context(), f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Stored{}
	}
	return httpkit.List(rows, httpkit.Page{Total: total, Limit: f.Limit, Offset: f.Offset}), nil
}

// swagger:route GET /features/summary Features featuresSummary
// @Summary Per condition means of stored rows
// @Tags Features
// @Produce json
// @Success 200 type SummaryResponse ok
// @Router /features/summary [get]
func (h *handlers) summary(r *http.Request) (any, error) {
	sums, err := h.deps.Reader.Summary(r.Context())
	if err != nil {
		return nil, err
	}
	deltas := aggregate.Against(features.Baseline, sums)
	if deltas == nil {
		deltas = []aggregate.Delta{}
	}
	return SummaryResponse{Conditions: sums, Deltas: deltas}, nil
}

func filterFrom(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{Subject: strings.TrimSpace(q.Get("subject"))}

	if s := q.Get("condition"); s != "" {
		c, err := features.ParseCondition(s)
		if err != nil {
			return f, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "unknown condition %q", s), "condition")
		}
		f.Condition = c
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s must be a non negative integer", p.name), p.name)
		}
		*p.dst = n
	}
	return f, nil
}
