package integration

import (
	"context"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// ArticleMapping Entity
// ---------------------------------------------------------------------------

// ArticleMapping links a local article to its storefront product.
// SKU is the key inbound orders are matched on; RemoteProductID is the key
// stock pushes are addressed to.
type ArticleMapping struct {
	ArticleID       string
	RemoteProductID string
	SKU             string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewArticleMapping creates a new active mapping
func NewArticleMapping(articleID, remoteProductID, sku string) (*ArticleMapping, error) {
	if strings.TrimSpace(articleID) == "" {
		return nil, ErrMappingInvalidArticleID
	}
	if strings.TrimSpace(remoteProductID) == "" {
		return nil, ErrMappingInvalidRemoteID
	}

	now := time.Now()
	return &ArticleMapping{
		ArticleID:       articleID,
		RemoteProductID: remoteProductID,
		SKU:             strings.TrimSpace(sku),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Deactivate stops the mapping from being used by syncs
func (m *ArticleMapping) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
}

// ArticleMappingRepository reads and writes article mappings
type ArticleMappingRepository interface {
	Save(ctx context.Context, mapping *ArticleMapping) error
	// FindBySKUs returns active mappings keyed by SKU. Missing SKUs are absent from the map.
	FindBySKUs(ctx context.Context, skus []string) (map[string]*ArticleMapping, error)
	// FindByArticleIDs returns active mappings keyed by article id.
	FindByArticleIDs(ctx context.Context, articleIDs []string) (map[string]*ArticleMapping, error)
}

// ---------------------------------------------------------------------------
// Party
// ---------------------------------------------------------------------------

// Party is the counterparty read model used to resolve storefront buyers.
type Party struct {
	ID    string
	Name  string
	Email string
}

// PartyRepository looks up counterparties
type PartyRepository interface {
	// FindByEmail matches case-insensitively. Returns shared.ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*Party, error)
	Save(ctx context.Context, party *Party) error
}
