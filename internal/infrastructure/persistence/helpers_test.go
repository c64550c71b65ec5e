package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/stocksync/internal/domain/ledger"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive and serializes
// transactions the way row locks would on PostgreSQL.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockGormDB returns a GORM handle over sqlmock speaking the PostgreSQL dialect
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}

type lineSpec struct {
	article string
	qty     int64
	price   int64
	nature  ledger.Nature
}

// seedDocument stores a document with the given lines and returns it
func seedDocument(t *testing.T, db *gorm.DB, id int64, docType ledger.DocumentType, ref *ledger.RemoteRef, lines ...lineSpec) *ledger.Document {
	t.Helper()

	doc := ledger.NewDocument(id, ledger.FormatNumber(docType.Code(), id), ledger.Header{
		Type:           docType,
		CounterpartyID: "P1",
		CreatedBy:      "tester",
		RemoteRef:      ref,
	}, time.Now())

	inputs := make([]ledger.LineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, ledger.LineInput{
			ArticleID: l.article,
			Quantity:  decimal.NewFromInt(l.qty),
			UnitPrice: decimal.NewFromInt(l.price),
			Nature:    l.nature,
		})
	}
	doc.ReplaceLines(inputs)

	require.NoError(t, NewGormDocumentRepository(db).Create(context.Background(), doc))
	return doc
}

func seedTime() time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}
