package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/domain/shared"
	"github.com/erp/stocksync/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PushDispatcher queues stock pushes without waiting for them
type PushDispatcher interface {
	Submit(task PushTask) error
}

// Service writes ledger documents. Every write runs in one transaction;
// a stock push is handed to the dispatcher only after the commit.
type Service struct {
	txScope    TransactionScope
	documents  ledger.DocumentRepository
	stock      ledger.StockReader
	dispatcher PushDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new ledger Service
func NewService(
	txScope TransactionScope,
	documents ledger.DocumentRepository,
	stock ledger.StockReader,
	logger *zap.Logger,
) *Service {
	return &Service{
		txScope:   txScope,
		documents: documents,
		stock:     stock,
		logger:    logger,
		now:       time.Now,
	}
}

// SetPushDispatcher sets where post-commit stock pushes go. Without one,
// writes succeed and no push is scheduled.
func (s *Service) SetPushDispatcher(d PushDispatcher) {
	s.dispatcher = d
}

// CreateDocument validates and writes a new document with its lines
func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput) (ref *DocumentRef, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_document",
		attribute.String(telemetry.SpanAttrDocumentType, in.Type.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	header := in.header()
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if err := ledger.ValidateLines(in.Lines); err != nil {
		return nil, err
	}

	var doc *ledger.Document
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		id, err := repos.Sequences().NextDocumentID(ctx, ledger.SequenceKindDocument)
		if err != nil {
			return err
		}
		n, err := repos.Sequences().NextDocumentNumber(ctx, in.Type.Code())
		if err != nil {
			return err
		}

		doc = ledger.NewDocument(id, ledger.FormatNumber(in.Type.Code(), n), header, s.now())
		doc.ReplaceLines(in.Lines)
		return repos.Documents().Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(telemetry.SpanAttrDocumentNumber, doc.Number))
	s.logger.Info("Document created",
		zap.String("number", doc.Number),
		zap.String("type", doc.Type.String()),
		zap.Int("lines", len(doc.Lines)),
		zap.String("total", doc.Total().StringFixed(2)),
	)
	s.schedulePush(doc, doc.ArticleIDs())
	return &DocumentRef{ID: doc.ID, Number: doc.Number}, nil
}

// UpdateDocument replaces the header fields and all lines of an existing document.
// The document must have the expected type, be active, and not be
// referenced by a later active document.
func (s *Service) UpdateDocument(ctx context.Context, number string, in UpdateDocumentInput) (ref *DocumentRef, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update_document",
		attribute.String(telemetry.SpanAttrDocumentNumber, number))
	defer func() { telemetry.EndSpan(span, err) }()

	header := in.header()
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if err := ledger.ValidateLines(in.Lines); err != nil {
		return nil, err
	}

	var (
		doc      *ledger.Document
		previous []string
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = s.loadForUpdate(ctx, repos, number)
		if err != nil {
			return err
		}
		if err := doc.EnsureModifiable(in.Type); err != nil {
			return err
		}
		fulfilled, err := repos.Documents().IsFulfilled(ctx, doc.ID)
		if err != nil {
			return err
		}
		if fulfilled {
			return ledger.ErrDocumentFinalized
		}

		previous = doc.ArticleIDs()
		doc.ApplyHeader(header)
		doc.ReplaceLines(in.Lines)
		if err := repos.Documents().UpdateHeader(ctx, doc); err != nil {
			return err
		}
		return repos.Documents().ReplaceLines(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document updated",
		zap.String("number", doc.Number),
		zap.Int("lines", len(doc.Lines)),
		zap.String("total", doc.Total().StringFixed(2)),
	)
	// Articles dropped from the document changed stock too.
	s.schedulePush(doc, mergeArticles(previous, doc.ArticleIDs()))
	return &DocumentRef{ID: doc.ID, Number: doc.Number}, nil
}

// VoidDocument marks a document voided so its lines stop counting toward stock
func (s *Service) VoidDocument(ctx context.Context, number string, docType ledger.DocumentType, reason string) (ref *DocumentRef, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "void_document",
		attribute.String(telemetry.SpanAttrDocumentNumber, number))
	defer func() { telemetry.EndSpan(span, err) }()

	if !docType.IsValid() {
		return nil, ledger.ErrInvalidType
	}

	var doc *ledger.Document
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = s.loadForUpdate(ctx, repos, number)
		if err != nil {
			return err
		}
		if err := doc.Void(docType, reason); err != nil {
			return err
		}
		return repos.Documents().UpdateHeader(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Document voided", zap.String("number", doc.Number), zap.String("reason", reason))
	s.schedulePush(doc, doc.ArticleIDs())
	return &DocumentRef{ID: doc.ID, Number: doc.Number}, nil
}

// GetDocument loads a document with its lines
func (s *Service) GetDocument(ctx context.Context, number string) (*ledger.Document, error) {
	doc, err := s.documents.FindByNumber(ctx, number)
	if shared.IsNotFound(err) {
		return nil, ledger.DocumentNotFound(number)
	}
	return doc, err
}

// GetDocumentByRemoteRef loads the document holding a storefront reference
func (s *Service) GetDocumentByRemoteRef(ctx context.Context, ref ledger.RemoteRef) (*ledger.Document, error) {
	doc, err := s.documents.FindByRemoteRef(ctx, ref)
	if shared.IsNotFound(err) {
		return nil, shared.NewNotFoundError(fmt.Sprintf("No document holds remote reference %s", ref))
	}
	return doc, err
}

// CreateAdjustment writes an ADJUSTMENT document from signed deltas
func (s *Service) CreateAdjustment(ctx context.Context, in AdjustmentInput) (*DocumentRef, error) {
	return s.CreateDocument(ctx, CreateDocumentInput{
		Type:      ledger.DocumentTypeAdjustment,
		CreatedBy: in.CreatedBy,
		Note:      in.Note,
		Lines:     in.lines(),
	})
}

// CurrentStock returns on-hand quantities; unknown articles read as zero
func (s *Service) CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error) {
	if len(articleIDs) == 0 {
		return nil, shared.NewValidationError("at least one article is required")
	}
	return s.stock.CurrentStock(ctx, articleIDs)
}

func (s *Service) loadForUpdate(ctx context.Context, repos TransactionalRepositories, number string) (*ledger.Document, error) {
	doc, err := repos.Documents().FindByNumberForUpdate(ctx, number)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ledger.DocumentNotFound(number)
	}
	return doc, err
}

// schedulePush hands the push to the dispatcher. Quotations never move stock.
func (s *Service) schedulePush(doc *ledger.Document, articles []string) {
	if s.dispatcher == nil || doc.Type == ledger.DocumentTypeQuote || len(articles) == 0 {
		return
	}
	task := PushTask{
		DocumentNumber: doc.Number,
		Articles:       articles,
		DocumentDate:   doc.CreatedAt,
	}
	if err := s.dispatcher.Submit(task); err != nil {
		s.logger.Warn("Stock push not scheduled",
			zap.String("number", doc.Number),
			zap.Strings("articles", articles),
			zap.Error(err),
		)
	}
}

func mergeArticles(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
