package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appintegration "github.com/erp/stocksync/internal/application/integration"
	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/interfaces/http/dto"
	"github.com/erp/stocksync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateDocument(ctx context.Context, in appledger.CreateDocumentInput) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

func (m *MockLedgerService) UpdateDocument(ctx context.Context, number string, in appledger.UpdateDocumentInput) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, number, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

func (m *MockLedgerService) VoidDocument(ctx context.Context, number string, docType ledger.DocumentType, reason string) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, number, docType, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

func (m *MockLedgerService) GetDocument(ctx context.Context, number string) (*ledger.Document, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

func (m *MockLedgerService) GetDocumentByRemoteRef(ctx context.Context, ref ledger.RemoteRef) (*ledger.Document, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) CreateAdjustment(ctx context.Context, in appledger.AdjustmentInput) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

func (m *MockInventoryService) CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, articleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockStockPusher is a mock implementation of StockPusher
type MockStockPusher struct {
	mock.Mock
}

func (m *MockStockPusher) PushStockAndStatus(ctx context.Context, req appintegration.PushRequest) (*appintegration.PushResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appintegration.PushResult), args.Error(1)
}

// MockOrderPuller is a mock implementation of OrderPuller
type MockOrderPuller struct {
	mock.Mock
}

func (m *MockOrderPuller) Pull(ctx context.Context) (*appintegration.PullResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appintegration.PullResult), args.Error(1)
}

// MockSyncRunReader is a mock implementation of SyncRunReader
type MockSyncRunReader struct {
	mock.Mock
}

func (m *MockSyncRunReader) FindByID(ctx context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.SyncRun), args.Error(1)
}

func (m *MockSyncRunReader) ListRecent(ctx context.Context, limit int) ([]*integration.SyncRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.SyncRun), args.Error(1)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func performRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the data field into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
