package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"malpot/internal/land/models"
	landservice "malpot/internal/land/service"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/httputil"
	"malpot/pkg/requestcontext"
)

// Service defines the land operations used by the HTTP layer.
type Service interface {
	Register(ctx context.Context, cmd landservice.RegisterCommand) (*models.Land, error)
	Get(ctx context.Context, landID id.LandID) (*models.Land, error)
}

// Handler serves the land registration endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts land endpoints on the router. Authentication is applied by
// the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/land/register", h.HandleRegister)
	r.Get("/land/{landID}", h.HandleGet)
}

// HandleRegister handles POST /land/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	land, err := h.service.Register(ctx, req.Command())
	if err != nil {
		h.logger.WarnContext(ctx, "register land failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, LandResponse{
		Success: true,
		Message: "Land registered successfully",
		Land:    land,
	})
}

// HandleGet handles GET /land/{landID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	landID, err := id.ParseLandID(chi.URLParam(r, "landID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	land, err := h.service.Get(ctx, landID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, land)
}

type LandResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Land    *models.Land `json:"land"`
}
