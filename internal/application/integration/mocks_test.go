package integration

import (
	"context"
	"sync"
	"time"

	appledger "github.com/erp/stocksync/internal/application/ledger"
	"github.com/erp/stocksync/internal/domain/integration"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockStockPlatform is a mock implementation of integration.StockPlatform
type MockStockPlatform struct {
	mock.Mock
	chunkSize int
}

func (m *MockStockPlatform) Name() string { return "woocommerce" }

func (m *MockStockPlatform) ChunkSize() int { return m.chunkSize }

func (m *MockStockPlatform) ListOrders(ctx context.Context, status string, page, perPage int) ([]integration.PlatformOrder, error) {
	args := m.Called(ctx, status, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.PlatformOrder), args.Error(1)
}

func (m *MockStockPlatform) UpdateOrderStatus(ctx context.Context, remoteOrderID, status string) error {
	return m.Called(ctx, remoteOrderID, status).Error(0)
}

func (m *MockStockPlatform) BatchUpdateStock(ctx context.Context, updates []integration.StockUpdate) (*integration.BatchResult, error) {
	args := m.Called(ctx, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.BatchResult), args.Error(1)
}

// MockDocumentWriter is a mock of the ledger service write side
type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) CreateDocument(ctx context.Context, in appledger.CreateDocumentInput) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

func (m *MockDocumentWriter) UpdateDocument(ctx context.Context, number string, in appledger.UpdateDocumentInput) (*appledger.DocumentRef, error) {
	args := m.Called(ctx, number, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appledger.DocumentRef), args.Error(1)
}

// MockDocumentRepository is a mock implementation of ledger.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *ledger.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, number string) (*ledger.Document, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumberForUpdate(ctx context.Context, number string) (*ledger.Document, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByRemoteRef(ctx context.Context, ref ledger.RemoteRef) (*ledger.Document, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateHeader(ctx context.Context, doc *ledger.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) ReplaceLines(ctx context.Context, doc *ledger.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockDocumentRepository) IsFulfilled(ctx context.Context, documentID int64) (bool, error) {
	args := m.Called(ctx, documentID)
	return args.Bool(0), args.Error(1)
}

// MockArticleMappingRepository is a mock implementation of integration.ArticleMappingRepository
type MockArticleMappingRepository struct {
	mock.Mock
}

func (m *MockArticleMappingRepository) Save(ctx context.Context, mapping *integration.ArticleMapping) error {
	return m.Called(ctx, mapping).Error(0)
}

func (m *MockArticleMappingRepository) FindBySKUs(ctx context.Context, skus []string) (map[string]*integration.ArticleMapping, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*integration.ArticleMapping), args.Error(1)
}

func (m *MockArticleMappingRepository) FindByArticleIDs(ctx context.Context, articleIDs []string) (map[string]*integration.ArticleMapping, error) {
	args := m.Called(ctx, articleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*integration.ArticleMapping), args.Error(1)
}

// MockPartyRepository is a mock implementation of integration.PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByEmail(ctx context.Context, email string) (*integration.Party, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Party), args.Error(1)
}

func (m *MockPartyRepository) Save(ctx context.Context, party *integration.Party) error {
	return m.Called(ctx, party).Error(0)
}

// MockStockReader is a mock implementation of ledger.StockReader
type MockStockReader struct {
	mock.Mock
}

func (m *MockStockReader) CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, articleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockRefLocker is a mock implementation of integration.RefLocker
type MockRefLocker struct {
	mock.Mock
}

func (m *MockRefLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// memoryRunRepository keeps saved runs for assertions
type memoryRunRepository struct {
	mu   sync.Mutex
	runs []*integration.SyncRun
}

func (r *memoryRunRepository) Save(_ context.Context, run *integration.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *memoryRunRepository) FindByID(_ context.Context, id uuid.UUID) (*integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRunRepository) ListRecent(_ context.Context, limit int) ([]*integration.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	return r.runs[len(r.runs)-limit:], nil
}

func (r *memoryRunRepository) last() *integration.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == 0 {
		return nil
	}
	return r.runs[len(r.runs)-1]
}

// MockRunArchiver is a mock implementation of integration.RunArchiver
type MockRunArchiver struct {
	mock.Mock
}

func (m *MockRunArchiver) Archive(ctx context.Context, run *integration.SyncRun) error {
	return m.Called(ctx, run).Error(0)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
