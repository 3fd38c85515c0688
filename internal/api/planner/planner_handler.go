package planner

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-date-planner/internal/api"
	"github.com/FACorreiaa/go-date-planner/internal/types"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// PlanDate handles POST /planner/plan.
func (h *Handler) PlanDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "PlanDate")
	defer span.End()

	l := h.logger.With(slog.String("method", "PlanDate"))

	var req types.PlanDateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid plan request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Preferences.StartTime != "" {
		if _, _, err := types.SplitClock(req.Preferences.StartTime); err != nil {
			l.WarnContext(ctx, "Invalid start time", slog.String("start_time", req.Preferences.StartTime))
			span.SetStatus(codes.Error, "Invalid start time")
			api.ErrorResponse(w, r, http.StatusBadRequest, "start_time must be HH:MM")
			return
		}
	}
	if req.Preferences.EndTime != "" {
		if _, _, err := types.SplitClock(req.Preferences.EndTime); err != nil {
			l.WarnContext(ctx, "Invalid end time", slog.String("end_time", req.Preferences.EndTime))
			span.SetStatus(codes.Error, "Invalid end time")
			api.ErrorResponse(w, r, http.StatusBadRequest, "end_time must be HH:MM")
			return
		}
	}

	result, err := h.service.PlanDate(ctx, &req.Preferences, req.Query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to plan date", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service operation failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to plan date")
		return
	}

	span.SetStatus(codes.Ok, "Date planned")
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}
