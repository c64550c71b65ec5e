package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderPuller runs one pull of pending storefront orders
type OrderPuller interface {
	Pull(ctx context.Context) (*appintegration.PullResult, error)
}

// SyncRunReader reads recorded sync runs
type SyncRunReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*integration.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]*integration.SyncRun, error)
}

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// SyncHandler handles manual sync triggers and the run history
type SyncHandler struct {
	BaseHandler
	puller OrderPuller
	pusher StockPusher
	runs   SyncRunReader
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(puller OrderPuller, pusher StockPusher, runs SyncRunReader) *SyncHandler {
	return &SyncHandler{puller: puller, pusher: pusher, runs: runs}
}

// UpdateOrderStockRequest is the body of the manual push
// @Description Manual stock push. When remote_order_ref is set the storefront order is marked completed first.
type UpdateOrderStockRequest struct {
	RemoteOrderRef   string     `json:"remote_order_ref" binding:"max=64" example:"1042"`
	Articles         []string   `json:"articles" binding:"required,min=1,max=1000,dive,required,max=64" example:"A1,A2"`
	DocumentNumber   string     `json:"document_number" binding:"max=32" example:"SO12"`
	DocumentDate     *time.Time `json:"document_date,omitempty"`
	UpdateRemoteDate bool       `json:"update_remote_date"`
}

// SyncRunResponse is a recorded run. Batches are only filled for a single run.
// @Description Sync run record
type SyncRunResponse struct {
	ID             uuid.UUID               `json:"id"`
	Kind           string                  `json:"kind" example:"STOCK_PUSH"`
	Platform       string                  `json:"platform" example:"woocommerce"`
	DocumentNumber string                  `json:"document_number,omitempty" example:"SO12"`
	RemoteRef      string                  `json:"remote_ref,omitempty" example:"1042"`
	Status         string                  `json:"status" example:"SUCCESS"`
	Total          int                     `json:"total"`
	Updated        int                     `json:"updated"`
	Skipped        int                     `json:"skipped"`
	Failed         int                     `json:"failed"`
	Messages       []string                `json:"messages"`
	Batches        []integration.SyncBatch `json:"batches,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     time.Time               `json:"finished_at"`
	DurationMS     int64                   `json:"duration_ms"`
}

func toSyncRunResponse(run *integration.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:             run.ID,
		Kind:           string(run.Kind),
		Platform:       run.Platform,
		DocumentNumber: run.DocumentNumber,
		RemoteRef:      run.RemoteRef,
		Status:         run.Status.String(),
		Total:          run.TotalCount,
		Updated:        run.SuccessCount,
		Skipped:        run.SkippedCount,
		Failed:         run.ErrorCount,
		Messages:       run.Messages,
		Batches:        run.Batches,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		DurationMS:     run.Duration.Milliseconds(),
	}
}

// PullOrders godoc
// @ID           pullOrders
// @Summary      Pull pending storefront orders
// @Description  Copies every pending storefront order into the ledger. Running it again converges on one document per order. Per-order problems are listed in messages.
// @Tags         sync
// @Produce      json
// @Success      200 {object} APIResponse[appintegration.PullResult]
// @Failure      502 {object} APIResponse[appintegration.PullResult]
// @Security     BearerAuth
// @Router       /sync/orders [get]
func (h *SyncHandler) PullOrders(c *gin.Context) {
	result, err := h.puller.Pull(c.Request.Context())
	respondRun(c, result, err)
}

// UpdateOrderStock godoc
// @ID           updateOrderStock
// @Summary      Push stock to the storefront
// @Description  Pushes the current stock of the listed articles in chunks, optionally completing a storefront order first.
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        request body UpdateOrderStockRequest true "Push request"
// @Success      200 {object} APIResponse[appintegration.PushResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} APIResponse[appintegration.PushResult]
// @Security     BearerAuth
// @Router       /woo/update-order-stock [post]
func (h *SyncHandler) UpdateOrderStock(c *gin.Context) {
	var req UpdateOrderStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	push := appintegration.PushRequest{
		Articles:         req.Articles,
		DocumentDate:     req.DocumentDate,
		DocumentNumber:   strings.TrimSpace(req.DocumentNumber),
		UpdateRemoteDate: req.UpdateRemoteDate,
	}
	if strings.TrimSpace(req.RemoteOrderRef) != "" {
		ref, err := ledger.NormalizeRemoteRef(req.RemoteOrderRef)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		push.RemoteOrderRef = ref.Ptr()
	}

	result, err := h.pusher.PushStockAndStatus(c.Request.Context(), push)
	respondRun(c, result, err)
}

// ListRuns godoc
// @ID           listSyncRuns
// @Summary      Recent sync runs
// @Tags         sync
// @Produce      json
// @Param        limit query int false "Maximum runs" default(20) maximum(200)
// @Success      200 {object} APIResponse[[]SyncRunResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sync/runs [get]
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunLimit {
			h.HandleError(c, shared.NewValidationError("limit must be between 1 and 200"))
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, toSyncRunResponse(run))
	}
	h.Success(c, out)
}

// GetRun godoc
// @ID           getSyncRun
// @Summary      One sync run with its batches
// @Tags         sync
// @Produce      json
// @Param        id path string true "Run id" format(uuid)
// @Success      200 {object} APIResponse[SyncRunResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sync/runs/{id} [get]
func (h *SyncHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.HandleError(c, shared.NewValidationError("run id must be a UUID"))
		return
	}
	run, err := h.runs.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSyncRunResponse(run))
}
