package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	appErr "github.com/samims/indexer/internal/errors"
	"github.com/samims/indexer/internal/report"
	"github.com/samims/indexer/internal/service"
	"github.com/samims/indexer/pkg/tracing"
)

type RunHandler struct {
	svc    service.IndexingService
	logger *slog.Logger
	tracer *tracing.Tracer
}

func NewRunHandler(s service.IndexingService, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		svc:    s,
		logger: logger.With("layer", "handler", "component", "runHandler"),
		tracer: tracing.NewTracer(tracing.GetTracer("run-handler")),
	}
}

// annotate records the final response on the server span.
func (h *RunHandler) annotate(span trace.Span, r *http.Request, route string, status *int) {
	h.tracer.AddRequestAttributes(span, r.Method, route, r.UserAgent(), *status)
}

// Start runs one indexing pass synchronously and returns its report.
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "StartRun")
	defer span.End()
	status := http.StatusOK
	defer h.annotate(span, r, "/indexing", &status)

	run, err := h.svc.StartRun(ctx)
	if err != nil {
		h.tracer.RecordError(span, err)
		switch {
		case appErr.IsRunInProgress(err):
			h.logger.Warn("Run rejected, another run is in progress")
			status = http.StatusConflict
		case appErr.IsSourceUnavailable(err):
			h.logger.Error("Run aborted", slog.Any("error", err))
			status = http.StatusServiceUnavailable
		default:
			h.logger.Error("Run failed", slog.Any("error", err))
			status = http.StatusInternalServerError
		}
		respondError(w, status, err.Error())
		return
	}
	h.tracer.AddRunAttributes(span, run.RunID, run.TotalURLsTried+run.SkippedURLs+run.UnassignedURLs, len(run.Accounts))
	respondJSON(w, status, report.Summarize(run))
}

func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "ListRuns")
	defer span.End()
	status := http.StatusOK
	defer h.annotate(span, r, "/runs", &status)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			status = http.StatusBadRequest
			respondError(w, status, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(ctx, limit)
	if err != nil {
		h.tracer.RecordError(span, err)
		h.logger.Error("ListRuns failed", slog.Any("error", err))
		status = http.StatusInternalServerError
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, status, runs)
}

func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.StartServerSpan(r.Context(), "GetRun")
	defer span.End()
	status := http.StatusOK
	defer h.annotate(span, r, "/runs/{id}", &status)

	id := chi.URLParam(r, "id")
	run, err := h.svc.GetRun(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, appErr.ErrInvalidInput):
			status = http.StatusBadRequest
		case appErr.IsNotFound(err):
			h.logger.Warn("Run not found", "id", id)
			status = http.StatusNotFound
		default:
			h.tracer.RecordError(span, err)
			h.logger.Error("GetRun failed", "id", id, "error", err)
			status = http.StatusInternalServerError
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, status, report.Summarize(run))
}
