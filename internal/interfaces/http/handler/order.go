package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerService is the document side of the ledger used by the API
type LedgerService interface {
	CreateDocument(ctx context.Context, in appledger.CreateDocumentInput) (*appledger.DocumentRef, error)
	UpdateDocument(ctx context.Context, number string, in appledger.UpdateDocumentInput) (*appledger.DocumentRef, error)
	VoidDocument(ctx context.Context, number string, docType ledger.DocumentType, reason string) (*appledger.DocumentRef, error)
	GetDocument(ctx context.Context, number string) (*ledger.Document, error)
	GetDocumentByRemoteRef(ctx context.Context, ref ledger.RemoteRef) (*ledger.Document, error)
}

// StockPusher runs a stock and status push
type StockPusher interface {
	PushStockAndStatus(ctx context.Context, req appintegration.PushRequest) (*appintegration.PushResult, error)
}

// OrderHandler handles ledger document endpoints
type OrderHandler struct {
	BaseHandler
	ledger           LedgerService
	pusher           StockPusher
	updateRemoteDate bool
}

// NewOrderHandler creates a new OrderHandler. updateRemoteDate is the
// default for confirm requests that do not say.
func NewOrderHandler(ledger LedgerService, pusher StockPusher, updateRemoteDate bool) *OrderHandler {
	return &OrderHandler{
		ledger:           ledger,
		pusher:           pusher,
		updateRemoteDate: updateRemoteDate,
	}
}

// DocumentLineRequest represents one requested line
// @Description Document line. Nature is + (stock in), - (stock out) or S (sale, stock out).
type DocumentLineRequest struct {
	ArticleID        string          `json:"article_id" binding:"max=64" example:"A1"`
	Quantity         decimal.Decimal `json:"quantity" swaggertype:"number" example:"2"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"gte=0" swaggertype:"number" example:"1000"`
	DiscountPct      decimal.Decimal `json:"discount_pct" binding:"gte=0,lte=100" swaggertype:"number" example:"0"`
	Nature           string          `json:"nature" example:"S"`
	OriginDocumentID *int64          `json:"origin_document_id,omitempty"`
	OriginLineSeq    *int            `json:"origin_line_seq,omitempty"`
}

func (r DocumentLineRequest) toInput() ledger.LineInput {
	return ledger.LineInput{
		ArticleID:        strings.TrimSpace(r.ArticleID),
		Quantity:         r.Quantity,
		UnitPrice:        r.UnitPrice,
		DiscountPct:      r.DiscountPct,
		Nature:           ledger.Nature(strings.ToUpper(strings.TrimSpace(r.Nature))),
		OriginDocumentID: r.OriginDocumentID,
		OriginLineSeq:    r.OriginLineSeq,
	}
}

// DocumentRequest is the body of create and update
// @Description Document header and lines. Type defaults to SALE.
type DocumentRequest struct {
	Type           string                `json:"type" example:"SALE"`
	CounterpartyID string                `json:"counterparty_id" binding:"max=64" example:"C-7"`
	RemoteRef      string                `json:"remote_ref" binding:"max=64" example:"1042"`
	Note           string                `json:"note" binding:"max=500"`
	DiscountPct    decimal.Decimal       `json:"discount_pct" binding:"gte=0,lte=100" swaggertype:"number" example:"10"`
	PriceList      string                `json:"price_list" binding:"max=32" example:"retail"`
	Lines          []DocumentLineRequest `json:"lines" binding:"dive"`
}

func (r DocumentRequest) parse() (ledger.DocumentType, *ledger.RemoteRef, []ledger.LineInput, error) {
	docType, err := parseDocumentType(r.Type)
	if err != nil {
		return "", nil, nil, err
	}
	var ref *ledger.RemoteRef
	if strings.TrimSpace(r.RemoteRef) != "" {
		parsed, err := ledger.NormalizeRemoteRef(r.RemoteRef)
		if err != nil {
			return "", nil, nil, err
		}
		ref = parsed.Ptr()
	}
	lines := make([]ledger.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, l.toInput())
	}
	return docType, ref, lines, nil
}

// VoidDocumentRequest is the body of the void endpoint
// @Description Void request. Type is the expected document type and defaults to SALE.
type VoidDocumentRequest struct {
	Type   string `json:"type" example:"SALE"`
	Reason string `json:"reason" binding:"max=500" example:"customer cancelled"`
}

// ConfirmOrderRequest is the optional body of the confirm endpoint
// @Description Confirm options
type ConfirmOrderRequest struct {
	UpdateRemoteDate *bool `json:"update_remote_date,omitempty"`
}

// DocumentLineResponse is a stored line
// @Description Document line
type DocumentLineResponse struct {
	Seq              int             `json:"seq" example:"1"`
	ArticleID        string          `json:"article_id" example:"A1"`
	Quantity         decimal.Decimal `json:"quantity" swaggertype:"number" example:"2"`
	UnitPrice        decimal.Decimal `json:"unit_price" swaggertype:"number" example:"1000"`
	DiscountPct      decimal.Decimal `json:"discount_pct" swaggertype:"number" example:"0"`
	Nature           string          `json:"nature" example:"S"`
	Total            decimal.Decimal `json:"total" swaggertype:"number" example:"1800"`
	OriginDocumentID *int64          `json:"origin_document_id,omitempty"`
	OriginLineSeq    *int            `json:"origin_line_seq,omitempty"`
}

// DocumentResponse is a document with its lines
// @Description Ledger document
type DocumentResponse struct {
	ID             int64                  `json:"id" example:"41"`
	Number         string                 `json:"number" example:"SO12"`
	Type           string                 `json:"type" example:"SALE"`
	Status         string                 `json:"status" example:"ACTIVE"`
	CounterpartyID string                 `json:"counterparty_id,omitempty" example:"C-7"`
	RemoteRef      string                 `json:"remote_ref,omitempty" example:"1042"`
	Note           string                 `json:"note,omitempty"`
	DiscountPct    decimal.Decimal        `json:"discount_pct" swaggertype:"number" example:"10"`
	PriceList      string                 `json:"price_list,omitempty" example:"retail"`
	CreatedAt      time.Time              `json:"created_at"`
	CreatedBy      string                 `json:"created_by,omitempty"`
	VoidReason     string                 `json:"void_reason,omitempty"`
	Total          decimal.Decimal        `json:"total" swaggertype:"number" example:"1800"`
	Lines          []DocumentLineResponse `json:"lines"`
}

func toDocumentResponse(doc *ledger.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             doc.ID,
		Number:         doc.Number,
		Type:           string(doc.Type),
		Status:         string(doc.Status),
		CounterpartyID: doc.CounterpartyID,
		Note:           doc.Note,
		DiscountPct:    doc.DiscountPct,
		PriceList:      doc.PriceList,
		CreatedAt:      doc.CreatedAt,
		CreatedBy:      doc.CreatedBy,
		VoidReason:     doc.VoidReason,
		Total:          doc.Total(),
		Lines:          make([]DocumentLineResponse, 0, len(doc.Lines)),
	}
	if doc.RemoteRef != nil {
		resp.RemoteRef = doc.RemoteRef.String()
	}
	for _, l := range doc.Lines {
		resp.Lines = append(resp.Lines, DocumentLineResponse{
			Seq:              l.Seq,
			ArticleID:        l.ArticleID,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			DiscountPct:      l.DiscountPct,
			Nature:           string(l.Nature),
			Total:            l.Total,
			OriginDocumentID: l.OriginDocumentID,
			OriginLineSeq:    l.OriginLineSeq,
		})
	}
	return resp
}

func parseDocumentType(raw string) (ledger.DocumentType, error) {
	if strings.TrimSpace(raw) == "" {
		return ledger.DocumentTypeSale, nil
	}
	return ledger.ParseDocumentType(raw)
}

// CreateDocument godoc
// @ID           createDocument
// @Summary      Create a ledger document
// @Description  Allocates a number and writes the header and lines in one transaction. Stock of the touched articles is pushed to the storefront afterwards.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body DocumentRequest true "Document"
// @Success      201 {object} APIResponse[appledger.DocumentRef]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) CreateDocument(c *gin.Context) {
	var req DocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	docType, ref, lines, err := req.parse()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	created, err := h.ledger.CreateDocument(c.Request.Context(), appledger.CreateDocumentInput{
		Type:           docType,
		CounterpartyID: strings.TrimSpace(req.CounterpartyID),
		CreatedBy:      getActor(c),
		RemoteRef:      ref,
		Note:           req.Note,
		DiscountPct:    req.DiscountPct,
		PriceList:      req.PriceList,
		Lines:          lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// GetDocument godoc
// @ID           getDocument
// @Summary      Get a ledger document
// @Tags         orders
// @Produce      json
// @Param        number path string true "Document number" example(SO12)
// @Success      200 {object} APIResponse[DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{number} [get]
func (h *OrderHandler) GetDocument(c *gin.Context) {
	doc, err := h.ledger.GetDocument(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDocumentResponse(doc))
}

// UpdateDocument godoc
// @ID           updateDocument
// @Summary      Replace a document's header and lines
// @Description  The stored document must have the requested type, be active and not yet fulfilled.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        number path string true "Document number"
// @Param        request body DocumentRequest true "Document"
// @Success      200 {object} APIResponse[appledger.DocumentRef]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{number} [put]
func (h *OrderHandler) UpdateDocument(c *gin.Context) {
	var req DocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	docType, ref, lines, err := req.parse()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	updated, err := h.ledger.UpdateDocument(c.Request.Context(), c.Param("number"), appledger.UpdateDocumentInput{
		Type:           docType,
		CounterpartyID: strings.TrimSpace(req.CounterpartyID),
		RemoteRef:      ref,
		Note:           req.Note,
		DiscountPct:    req.DiscountPct,
		PriceList:      req.PriceList,
		Lines:          lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// VoidDocument godoc
// @ID           voidDocument
// @Summary      Void a document
// @Description  A voided document keeps its lines but no longer counts toward stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        number path string true "Document number"
// @Param        request body VoidDocumentRequest false "Void request"
// @Success      200 {object} APIResponse[appledger.DocumentRef]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{number}/void [post]
func (h *OrderHandler) VoidDocument(c *gin.Context) {
	var req VoidDocumentRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	docType, err := parseDocumentType(req.Type)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	voided, err := h.ledger.VoidDocument(c.Request.Context(), c.Param("number"), docType, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voided)
}

// ConfirmOrder godoc
// @ID           confirmOrder
// @Summary      Confirm a storefront order
// @Description  Marks the storefront order completed and pushes the stock of every article on the document holding the reference. Item failures are reported in the result; 502 means the push could not run at all.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        number path string true "Storefront order reference" example(1042)
// @Param        request body ConfirmOrderRequest false "Confirm options"
// @Success      200 {object} APIResponse[appintegration.PushResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} APIResponse[appintegration.PushResult]
// @Security     BearerAuth
// @Router       /orders/{number}/confirm [post]
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	var req ConfirmOrderRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	ref, err := ledger.NormalizeRemoteRef(c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	doc, err := h.ledger.GetDocumentByRemoteRef(ctx, ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if doc.IsVoided() {
		h.HandleError(c, ledger.ErrDocumentVoided)
		return
	}

	updateDate := h.updateRemoteDate
	if req.UpdateRemoteDate != nil {
		updateDate = *req.UpdateRemoteDate
	}
	createdAt := doc.CreatedAt
	result, err := h.pusher.PushStockAndStatus(ctx, appintegration.PushRequest{
		RemoteOrderRef:   ref.Ptr(),
		Articles:         doc.ArticleIDs(),
		DocumentNumber:   doc.Number,
		DocumentDate:     &createdAt,
		UpdateRemoteDate: updateDate,
	})
	respondRun(c, result, err)
}

// respondRun answers with a run result, or 502 with the result when the
// run could not proceed.
func respondRun(c *gin.Context, result any, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewFailedRunResponse(err.Error(), getRequestID(c), result))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
