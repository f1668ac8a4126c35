package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/chart"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"github.com/m-mizutani/meteo/pkg/lang"
)

const defaultRunLimit = 20

// APIHandler serves the report data as JSON
type APIHandler struct {
	catalogUC interfaces.CatalogUseCase
	syncUC    interfaces.SyncUseCase
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(catalogUC interfaces.CatalogUseCase, syncUC interfaces.SyncUseCase) *APIHandler {
	return &APIHandler{catalogUC: catalogUC, syncUC: syncUC}
}

type reportResponse struct {
	Label string       `json:"label"`
	Month string       `json:"month"`
	File  string       `json:"file,omitempty"`
	Chart *chart.Chart `json:"chart"`
}

type queryRequest struct {
	Expr string `json:"expr"`
}

type queryResponse struct {
	Value  string         `json:"value"`
	Series []*lang.Series `json:"series"`
}

type queryErrorResponse struct {
	Error      string `json:"error"`
	Diagnostic string `json:"diagnostic"`
}

// ListReports returns the manifest of the stored reports
func (h *APIHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.catalogUC.Manifest(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, manifest)
}

// GetReport returns the chart of one month, or its original text with kind=text
func (h *APIHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	stored, err := h.catalogUC.Report(r.Context(), month)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, stored.Original); err != nil {
			ctxlog.From(r.Context()).Error("Failed to write report text", "error", err)
		}
		return
	}

	h.writeChart(w, r, stored.Report, kind, stored.File)
}

// GetDashboard returns the chart of every report merged together
func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.catalogUC.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeChart(w, r, dashboard, r.URL.Query().Get("kind"), "")
}

func (h *APIHandler) writeChart(w http.ResponseWriter, r *http.Request, report *model.Report, kindParam, file string) {
	kind, err := chart.ParseKind(kindParam)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	c, err := chart.Build(report, kind)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, &reportResponse{
		Label: report.Label(),
		Month: report.Month(),
		File:  file,
		Chart: c,
	})
}

// Query evaluates a pipeline over the dashboard and returns the drawn series
func (h *APIHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPayloadSize)).Decode(&req); err != nil {
		writeError(w, goerr.Wrap(err, "invalid query request"), http.StatusBadRequest)
		return
	}
	if req.Expr == "" {
		writeError(w, goerr.New("expr is required"), http.StatusBadRequest)
		return
	}

	result, err := h.catalogUC.Query(r.Context(), req.Expr)
	if err != nil {
		var langErr *lang.Error
		var parenErr *lang.MissingParenError
		if errors.As(err, &langErr) || errors.As(err, &parenErr) {
			writeJSON(w, r, http.StatusBadRequest, &queryErrorResponse{
				Error:      err.Error(),
				Diagnostic: lang.Render(req.Expr, err),
			})
			return
		}
		h.fail(w, r, err)
		return
	}

	series := result.Drawn
	if series == nil {
		series = []*lang.Series{}
	}
	writeJSON(w, r, http.StatusOK, &queryResponse{
		Value:  lang.Format(result.Value),
		Series: series,
	})
}

// ListRuns returns the latest sync runs
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, goerr.New("limit must be a positive integer", goerr.V("limit", s)), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.syncUC.Runs(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []*model.SyncResult{}
	}
	writeJSON(w, r, http.StatusOK, runs)
}

// fail maps use case errors to status codes
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrReportNotFound), errors.Is(err, model.ErrNoReport):
		writeError(w, err, http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidMonth), errors.Is(err, chart.ErrUnknownKind):
		writeError(w, err, http.StatusBadRequest)
	default:
		ctxlog.From(r.Context()).Error("Failed to serve API request", "error", err, "path", r.URL.Path)
		writeError(w, err, http.StatusInternalServerError)
	}
}
