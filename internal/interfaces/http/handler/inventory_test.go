package handler

import (
	"net/http"
	"testing"

	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInventoryRouter(svc *MockInventoryService, subject string) *gin.Engine {
	h := NewInventoryHandler(svc)
	r := gin.New()
	if subject != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTSubjectKey, subject)
			c.Next()
		})
	}
	r.POST("/inventory/adjustments", h.CreateAdjustment)
	r.GET("/inventory/stock", h.GetStock)
	return r
}

func TestInventoryHandler_CreateAdjustment(t *testing.T) {
	t.Run("records the token subject", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("CreateAdjustment", mock.Anything, mock.MatchedBy(func(in appledger.AdjustmentInput) bool {
			return in.CreatedBy == "ops@example.com" &&
				in.Note == "cycle count" &&
				len(in.Lines) == 2 &&
				in.Lines[0].ArticleID == "A1" && in.Lines[0].Delta.Equal(dec("5")) &&
				in.Lines[1].ArticleID == "A2" && in.Lines[1].Delta.Equal(dec("-3"))
		})).Return(&appledger.DocumentRef{ID: 7, Number: "ADJ7"}, nil)

		w := performRequest(newInventoryRouter(svc, "ops@example.com"), http.MethodPost, "/inventory/adjustments", `{
			"note": "cycle count",
			"lines": [{"article_id": " A1 ", "delta": 5}, {"article_id": "A2", "delta": "-3"}]
		}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing article id", func(t *testing.T) {
		svc := new(MockInventoryService)
		w := performRequest(newInventoryRouter(svc, ""), http.MethodPost, "/inventory/adjustments", `{"lines":[{"delta":1}]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "lines[0].article_id", resp.Error.Details[0].Field)
		svc.AssertNotCalled(t, "CreateAdjustment", mock.Anything, mock.Anything)
	})

	t.Run("zero delta rejected by the ledger", func(t *testing.T) {
		svc := new(MockInventoryService)
		svc.On("CreateAdjustment", mock.Anything, mock.Anything).Return(nil, ledger.ErrInvalidQuantity)

		w := performRequest(newInventoryRouter(svc, ""), http.MethodPost, "/inventory/adjustments", `{"lines":[{"article_id":"A1","delta":0}]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInventoryHandler_GetStock(t *testing.T) {
	svc := new(MockInventoryService)
	svc.On("CurrentStock", mock.Anything, []string{"A2", "A1", "A9"}).Return(map[string]decimal.Decimal{
		"A1": dec("12"),
		"A2": dec("-1"),
	}, nil)

	w := performRequest(newInventoryRouter(svc, ""), http.MethodGet, "/inventory/stock?article=A2,A1&article=%20A9%20&article=A1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var levels []StockLevelResponse
	decodeData(t, w, &levels)
	require.Len(t, levels, 3)
	assert.Equal(t, "A2", levels[0].ArticleID)
	assert.True(t, levels[0].Quantity.Equal(dec("-1")))
	assert.Equal(t, "A1", levels[1].ArticleID)
	assert.True(t, levels[2].Quantity.IsZero())
	svc.AssertExpectations(t)
}

func TestParseArticleQuery(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"empty", nil, []string{}},
		{"comma separated", []string{"A1,A2"}, []string{"A1", "A2"}},
		{"repeated and blank", []string{"A1", " ", "A1, ,A3"}, []string{"A1", "A3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseArticleQuery(tt.values))
		})
	}
}
