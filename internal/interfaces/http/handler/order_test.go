package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderRouter(svc *MockLedgerService, pusher *MockStockPusher) *gin.Engine {
	h := NewOrderHandler(svc, pusher, false)
	r := gin.New()
	r.POST("/orders", h.CreateDocument)
	r.GET("/orders/:number", h.GetDocument)
	r.PUT("/orders/:number", h.UpdateDocument)
	r.POST("/orders/:number/void", h.VoidDocument)
	r.POST("/orders/:number/confirm", h.ConfirmOrder)
	return r
}

func TestOrderHandler_CreateDocument(t *testing.T) {
	t.Run("creates a sale by default", func(t *testing.T) {
		svc := new(MockLedgerService)
		svc.On("CreateDocument", mock.Anything, mock.MatchedBy(func(in appledger.CreateDocumentInput) bool {
			return in.Type == ledger.DocumentTypeSale &&
				in.CounterpartyID == "C-7" &&
				in.CreatedBy == "api" &&
				in.RemoteRef != nil && *in.RemoteRef == ledger.MustRemoteRef("WC-1042") &&
				in.DiscountPct.Equal(dec("10")) &&
				len(in.Lines) == 1 &&
				in.Lines[0].Nature == ledger.NatureSale &&
				in.Lines[0].Quantity.Equal(dec("2"))
		})).Return(&appledger.DocumentRef{ID: 41, Number: "SO12"}, nil)

		w := performRequest(newOrderRouter(svc, nil), http.MethodPost, "/orders", `{
			"counterparty_id": "C-7",
			"remote_ref": " wc-1042 ",
			"discount_pct": 10,
			"lines": [{"article_id": "A1", "quantity": "2", "unit_price": 1000, "nature": "s"}]
		}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var ref appledger.DocumentRef
		decodeData(t, w, &ref)
		assert.Equal(t, "SO12", ref.Number)
		svc.AssertExpectations(t)
	})

	t.Run("maps ledger rejections", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			code int
		}{
			{"no lines", ledger.ErrNoLines, http.StatusBadRequest},
			{"invalid nature", ledger.ErrInvalidNature, http.StatusBadRequest},
			{"duplicate ref", shared.ErrDuplicateRemoteRef, http.StatusConflict},
			{"storage failure", errors.New("connection reset"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := new(MockLedgerService)
				svc.On("CreateDocument", mock.Anything, mock.Anything).Return(nil, tt.err)

				w := performRequest(newOrderRouter(svc, nil), http.MethodPost, "/orders", `{"type":"PURCHASE","lines":[]}`)

				assert.Equal(t, tt.code, w.Code)
				resp := decodeResponse(t, w)
				assert.False(t, resp.Success)
				if tt.code == http.StatusInternalServerError {
					assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
					assert.NotContains(t, w.Body.String(), "connection reset")
				}
			})
		}
	})

	t.Run("unknown type never reaches the ledger", func(t *testing.T) {
		svc := new(MockLedgerService)
		w := performRequest(newOrderRouter(svc, nil), http.MethodPost, "/orders", `{"type":"INVOICE","lines":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeInvalidDocumentType, decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
	})

	t.Run("binding validation lists fields", func(t *testing.T) {
		svc := new(MockLedgerService)
		w := performRequest(newOrderRouter(svc, nil), http.MethodPost, "/orders", `{"discount_pct": 120, "lines":[{"article_id":"A1","quantity":1,"unit_price":-5,"nature":"S"}]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := []string{}
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"discount_pct", "lines[0].unit_price"}, fields)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := performRequest(newOrderRouter(new(MockLedgerService), nil), http.MethodPost, "/orders", `{"lines": [`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_GetDocument(t *testing.T) {
	svc := new(MockLedgerService)
	ref := ledger.MustRemoteRef("1042")
	doc := &ledger.Document{
		ID: 41, Number: "SO12", Type: ledger.DocumentTypeSale, Status: ledger.DocumentStatusActive,
		CounterpartyID: "C-7", RemoteRef: &ref, DiscountPct: dec("10"),
		Lines: []ledger.Line{
			{Seq: 1, ArticleID: "A1", Quantity: dec("2"), UnitPrice: dec("1000"), Nature: ledger.NatureSale, Total: dec("1800")},
		},
	}
	svc.On("GetDocument", mock.Anything, "SO12").Return(doc, nil)
	svc.On("GetDocument", mock.Anything, "SO99").Return(nil, ledger.DocumentNotFound("SO99"))
	router := newOrderRouter(svc, nil)

	w := performRequest(router, http.MethodGet, "/orders/SO12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got DocumentResponse
	decodeData(t, w, &got)
	assert.Equal(t, "SO12", got.Number)
	assert.Equal(t, "1042", got.RemoteRef)
	assert.True(t, got.Total.Equal(dec("1800")))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "S", got.Lines[0].Nature)

	w = performRequest(router, http.MethodGet, "/orders/SO99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeResponse(t, w).Error.Message, "SO99")
}

func TestOrderHandler_UpdateDocument(t *testing.T) {
	t.Run("passes the expected type", func(t *testing.T) {
		svc := new(MockLedgerService)
		svc.On("UpdateDocument", mock.Anything, "PO3", mock.MatchedBy(func(in appledger.UpdateDocumentInput) bool {
			return in.Type == ledger.DocumentTypePurchase && len(in.Lines) == 2 && in.RemoteRef == nil
		})).Return(&appledger.DocumentRef{ID: 9, Number: "PO3"}, nil)

		w := performRequest(newOrderRouter(svc, nil), http.MethodPut, "/orders/PO3", `{
			"type": "purchase", "counterparty_id": "SUP-1",
			"lines": [
				{"article_id": "A1", "quantity": 5, "unit_price": 3, "nature": "+"},
				{"article_id": "A2", "quantity": 1, "unit_price": 3, "nature": "+"}
			]
		}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("conflicts", func(t *testing.T) {
		for _, err := range []error{ledger.ErrDocumentVoided, ledger.ErrDocumentFinalized} {
			svc := new(MockLedgerService)
			svc.On("UpdateDocument", mock.Anything, "SO7", mock.Anything).Return(nil, err)

			w := performRequest(newOrderRouter(svc, nil), http.MethodPut, "/orders/SO7", `{"lines":[]}`)
			assert.Equal(t, http.StatusConflict, w.Code)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		svc := new(MockLedgerService)
		svc.On("UpdateDocument", mock.Anything, "PO1", mock.Anything).Return(nil, ledger.ErrWrongDocumentType)

		w := performRequest(newOrderRouter(svc, nil), http.MethodPut, "/orders/PO1", `{"lines":[]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeWrongDocumentType, decodeResponse(t, w).Error.Code)
	})
}

func TestOrderHandler_VoidDocument(t *testing.T) {
	svc := new(MockLedgerService)
	svc.On("VoidDocument", mock.Anything, "SO4", ledger.DocumentTypeSale, "").Return(&appledger.DocumentRef{ID: 4, Number: "SO4"}, nil).Once()
	svc.On("VoidDocument", mock.Anything, "PO2", ledger.DocumentTypePurchase, "duplicate").Return(nil, ledger.ErrDocumentVoided).Once()
	router := newOrderRouter(svc, nil)

	w := performRequest(router, http.MethodPost, "/orders/SO4/void", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPost, "/orders/PO2/void", `{"type":"PURCHASE","reason":"duplicate"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, shared.CodeDocumentVoided, decodeResponse(t, w).Error.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_ConfirmOrder(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ref := ledger.MustRemoteRef("1042")
	doc := &ledger.Document{
		ID: 41, Number: "SO12", Type: ledger.DocumentTypeSale, Status: ledger.DocumentStatusActive,
		RemoteRef: &ref, CreatedAt: created,
		Lines: []ledger.Line{
			{Seq: 1, ArticleID: "A1", Quantity: dec("2"), Nature: ledger.NatureSale},
			{Seq: 2, ArticleID: "A2", Quantity: dec("1"), Nature: ledger.NatureSale},
		},
	}

	t.Run("pushes the document's articles", func(t *testing.T) {
		svc := new(MockLedgerService)
		pusher := new(MockStockPusher)
		svc.On("GetDocumentByRemoteRef", mock.Anything, ref).Return(doc, nil)
		pusher.On("PushStockAndStatus", mock.Anything, mock.MatchedBy(func(req appintegration.PushRequest) bool {
			return req.RemoteOrderRef != nil && *req.RemoteOrderRef == ref &&
				assert.ObjectsAreEqual([]string{"A1", "A2"}, req.Articles) &&
				req.DocumentNumber == "SO12" &&
				req.DocumentDate != nil && req.DocumentDate.Equal(created) &&
				req.UpdateRemoteDate
		})).Return(&appintegration.PushResult{Status: integration.SyncStatusSuccess, Total: 2, Updated: 2}, nil)

		w := performRequest(newOrderRouter(svc, pusher), http.MethodPost, "/orders/1042/confirm", `{"update_remote_date": true}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var result appintegration.PushResult
		decodeData(t, w, &result)
		assert.Equal(t, 2, result.Updated)
		pusher.AssertExpectations(t)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc := new(MockLedgerService)
		pusher := new(MockStockPusher)
		svc.On("GetDocumentByRemoteRef", mock.Anything, ledger.MustRemoteRef("77")).Return(nil, shared.NewNotFoundError("No document holds remote reference 77"))

		w := performRequest(newOrderRouter(svc, pusher), http.MethodPost, "/orders/77/confirm", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		pusher.AssertNotCalled(t, "PushStockAndStatus", mock.Anything, mock.Anything)
	})

	t.Run("voided document", func(t *testing.T) {
		voided := *doc
		voided.Status = ledger.DocumentStatusVoided
		svc := new(MockLedgerService)
		svc.On("GetDocumentByRemoteRef", mock.Anything, ref).Return(&voided, nil)

		w := performRequest(newOrderRouter(svc, new(MockStockPusher)), http.MethodPost, "/orders/1042/confirm", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("push that could not run", func(t *testing.T) {
		svc := new(MockLedgerService)
		pusher := new(MockStockPusher)
		svc.On("GetDocumentByRemoteRef", mock.Anything, ref).Return(doc, nil)
		pusher.On("PushStockAndStatus", mock.Anything, mock.Anything).
			Return(&appintegration.PushResult{Status: integration.SyncStatusError}, errors.New("failed to read stock: timeout"))

		w := performRequest(newOrderRouter(svc, pusher), http.MethodPost, "/orders/1042/confirm", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeSyncFailed, resp.Error.Code)
		assert.NotNil(t, resp.Data)
	})
}
