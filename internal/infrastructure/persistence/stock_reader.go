package persistence

import (
	"context"

	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stockQuery folds every line of an active, non-quote document into a signed quantity.
const stockQuery = `
SELECT l.article_id AS article_id,
       SUM(CASE
             WHEN l.nature = ? THEN l.quantity
             WHEN l.nature IN (?, ?) THEN -l.quantity
             ELSE 0
           END) AS quantity
FROM document_lines l
JOIN documents d ON d.id = l.document_id
WHERE d.status = ?
  AND d.type <> ?
  AND l.article_id IN ?
GROUP BY l.article_id`

// GormStockReader derives on-hand quantities from the ledger
type GormStockReader struct {
	db *gorm.DB
}

// NewGormStockReader creates a new GormStockReader
func NewGormStockReader(db *gorm.DB) *GormStockReader {
	return &GormStockReader{db: db}
}

// CurrentStock returns the quantity of every requested article.
// Articles without lines report zero.
func (r *GormStockReader) CurrentStock(ctx context.Context, articleIDs []string) (map[string]decimal.Decimal, error) {
	stock := make(map[string]decimal.Decimal, len(articleIDs))
	if len(articleIDs) == 0 {
		return stock, nil
	}
	for _, id := range articleIDs {
		stock[id] = decimal.Zero
	}

	var rows []struct {
		ArticleID string
		Quantity  decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Raw(stockQuery,
		ledger.NatureIncrease, ledger.NatureDecrease, ledger.NatureSale,
		ledger.DocumentStatusActive, ledger.DocumentTypeQuote, articleIDs,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stock[row.ArticleID] = row.Quantity
	}
	return stock, nil
}

var _ ledger.StockReader = (*GormStockReader)(nil)
