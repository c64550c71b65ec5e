package handler

import (
	"context"
	"strings"

	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InventoryService is the stock side of the ledger used by the API
type InventoryService interface {
	CreateAdjustment(ctx context.Context, in appledger.AdjustmentInput) (*appledger.DocumentRef, error)
	CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error)
}

// maxStockQuery bounds the articles of one stock lookup
const maxStockQuery = 200

// InventoryHandler handles stock adjustments and stock lookups
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// AdjustmentLineRequest is one signed correction
// @Description Positive delta adds stock, negative removes it
type AdjustmentLineRequest struct {
	ArticleID string          `json:"article_id" binding:"required,max=64" example:"A1"`
	Delta     decimal.Decimal `json:"delta" swaggertype:"number" example:"-3"`
}

// CreateAdjustmentRequest is the body of the adjustment endpoint
// @Description Stock adjustment
type CreateAdjustmentRequest struct {
	Note  string                  `json:"note" binding:"max=500" example:"cycle count"`
	Lines []AdjustmentLineRequest `json:"lines" binding:"dive"`
}

// StockLevelResponse is the on-hand quantity of one article
// @Description Stock level
type StockLevelResponse struct {
	ArticleID string          `json:"article_id" example:"A1"`
	Quantity  decimal.Decimal `json:"quantity" swaggertype:"number" example:"12"`
}

// CreateAdjustment godoc
// @ID           createAdjustment
// @Summary      Adjust stock
// @Description  Writes an ADJUSTMENT document. The adjusted stock is pushed to the storefront afterwards.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body CreateAdjustmentRequest true "Adjustment"
// @Success      201 {object} APIResponse[appledger.DocumentRef]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) CreateAdjustment(c *gin.Context) {
	var req CreateAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines := make([]appledger.AdjustmentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, appledger.AdjustmentLine{
			ArticleID: strings.TrimSpace(l.ArticleID),
			Delta:     l.Delta,
		})
	}

	created, err := h.inventory.CreateAdjustment(c.Request.Context(), appledger.AdjustmentInput{
		CreatedBy: getActor(c),
		Note:      req.Note,
		Lines:     lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetStock godoc
// @ID           getStock
// @Summary      Current stock
// @Description  Returns on-hand quantities in request order. Unknown articles read as zero. Accepts repeated or comma separated article parameters.
// @Tags         inventory
// @Produce      json
// @Param        article query []string true "Article ids" collectionFormat(multi)
// @Success      200 {object} APIResponse[[]StockLevelResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stock [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	articles := parseArticleQuery(c.QueryArray("article"))
	if len(articles) > maxStockQuery {
		h.HandleError(c, shared.NewValidationError("too many articles in one lookup"))
		return
	}

	stock, err := h.inventory.CurrentStock(c.Request.Context(), articles)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	levels := make([]StockLevelResponse, 0, len(articles))
	for _, id := range articles {
		levels = append(levels, StockLevelResponse{ArticleID: id, Quantity: stock[id]})
	}
	h.Success(c, levels)
}

// parseArticleQuery splits comma separated values, trims them and drops
// blanks and repeats.
func parseArticleQuery(values []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
