package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"malpot/internal/platform/middleware"
	"malpot/internal/transfer/models"
	transferservice "malpot/internal/transfer/service"
	usermodels "malpot/internal/users/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/httputil"
	"malpot/pkg/requestcontext"
)

// Service defines the transfer workflow operations used by the HTTP layer.
type Service interface {
	Apply(ctx context.Context, cmd transferservice.ApplyCommand) (*models.Transfer, error)
	Approve(ctx context.Context, transferID id.TransferID, reviewerID id.UserID) (*models.Transfer, error)
	Reject(ctx context.Context, transferID id.TransferID, reviewerID id.UserID, reason string) (*models.Transfer, error)
	Get(ctx context.Context, transferID id.TransferID) (*models.Transfer, error)
	History(ctx context.Context, landID id.LandID) ([]transferservice.TransferRecord, error)
}

// Handler serves the transfer workflow endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the transfer endpoints. Decisions require the officer
// role; authentication is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/transfers", h.HandleApply)
	r.Get("/transfers/{transferID}", h.HandleGet)
	r.Get("/land/{landID}/transfers", h.HandleHistory)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.logger, usermodels.RoleOfficer))
		r.Post("/transfers/{transferID}/approve", h.HandleApprove)
		r.Post("/transfers/{transferID}/reject", h.HandleReject)
	})
}

// HandleApply handles POST /transfers.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ApplyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	transfer, err := h.service.Apply(ctx, req.Command())
	if err != nil {
		h.logger.WarnContext(ctx, "apply transfer failed",
			"request_id", requestID,
			"land_id", req.LandID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, TransferResponse{
		Success:  true,
		Message:  "Ownership transfer request submitted",
		Transfer: transfer,
	})
}

// HandleApprove handles POST /transfers/{transferID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	transferID, err := id.ParseTransferID(chi.URLParam(r, "transferID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	transfer, err := h.service.Approve(ctx, transferID, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "approve transfer failed",
			"request_id", requestID,
			"transfer_id", transferID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TransferResponse{
		Success:  true,
		Message:  "Ownership transferred successfully",
		Transfer: transfer,
	})
}

// HandleReject handles POST /transfers/{transferID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	transferID, err := id.ParseTransferID(chi.URLParam(r, "transferID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	transfer, err := h.service.Reject(ctx, transferID, requestcontext.UserID(ctx), req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "reject transfer failed",
			"request_id", requestID,
			"transfer_id", transferID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, TransferResponse{
		Success:  true,
		Message:  "Transfer rejected",
		Transfer: transfer,
	})
}

// HandleGet handles GET /transfers/{transferID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	transferID, err := id.ParseTransferID(chi.URLParam(r, "transferID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	transfer, err := h.service.Get(ctx, transferID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transfer)
}

// HandleHistory handles GET /land/{landID}/transfers.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	landID, err := id.ParseLandID(chi.URLParam(r, "landID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.History(ctx, landID)
	if err != nil {
		h.logger.WarnContext(ctx, "transfer history failed",
			"request_id", requestcontext.RequestID(ctx),
			"land_id", landID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{LandID: landID, Transfers: records})
}

type TransferResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Transfer *models.Transfer `json:"transfer"`
}

type HistoryResponse struct {
	LandID    id.LandID                        `json:"land_id"`
	Transfers []transferservice.TransferRecord `json:"transfers"`
}
