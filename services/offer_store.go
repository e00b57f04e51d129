package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// OfferStore persists discovered deals. Put is an upsert keyed on offer id,
// so re-discovering the same deal is idempotent.
type OfferStore interface {
	Put(ctx context.Context, deal models.Deal) error
	Get(ctx context.Context, offerID string) (*models.Deal, error)
	QueryByProvider(ctx context.Context, provider models.Provider) ([]models.Deal, error)
	ScanAll(ctx context.Context) ([]models.Deal, error)
	ScanExpiringWithin(ctx context.Context, window time.Duration) ([]models.Deal, error)
}

// PostgresOfferStore stores deals in the deals table
type PostgresOfferStore struct {
	db *sql.DB
}

// NewPostgresOfferStore creates a Postgres-backed offer store
func NewPostgresOfferStore(db *sql.DB) *PostgresOfferStore {
	return &PostgresOfferStore{db: db}
}

const dealColumns = `offer_id, provider, certification_name, discount_type, eligibility,
	deal_type, confidence_score, source_url, source_name, raw_text, expiry_date, discovered_at`

// Put inserts the deal or refreshes the stored row when the offer id already
// exists
func (s *PostgresOfferStore) Put(ctx context.Context, deal models.Deal) error {
	query := `
		INSERT INTO deals (` + dealColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (offer_id) DO UPDATE SET
			certification_name = EXCLUDED.certification_name,
			discount_type = EXCLUDED.discount_type,
			eligibility = EXCLUDED.eligibility,
			deal_type = EXCLUDED.deal_type,
			confidence_score = EXCLUDED.confidence_score,
			source_name = EXCLUDED.source_name,
			raw_text = EXCLUDED.raw_text,
			expiry_date = EXCLUDED.expiry_date,
			updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		deal.OfferID, string(deal.Provider), deal.CertificationName, deal.DiscountType,
		deal.Eligibility, deal.DealType, deal.ConfidenceScore, deal.SourceURL,
		deal.SourceName, deal.RawText, deal.ExpiryDate, deal.DiscoveredAt)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_UPSERT_FAILED",
			"failed to upsert deal", "PostgresOfferStore", "Put", true, err)
	}
	return nil
}

// Get returns the deal with the given offer id, or a not_found error
func (s *PostgresOfferStore) Get(ctx context.Context, offerID string) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE offer_id = $1`

	deal, err := scanDealRow(s.db.QueryRowContext(ctx, query, offerID))
	if err == sql.ErrNoRows {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "OFFER_NOT_FOUND",
			"no deal with offer id "+offerID, "PostgresOfferStore", "Get", false, err)
	}
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_LOOKUP_FAILED",
			"failed to load deal", "PostgresOfferStore", "Get", true, err)
	}
	return deal, nil
}

// QueryByProvider returns the provider's deals ordered by confidence
func (s *PostgresOfferStore) QueryByProvider(ctx context.Context, provider models.Provider) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE provider = $1 ORDER BY confidence_score DESC, discovered_at DESC`

	rows, err := s.db.QueryContext(ctx, query, string(provider))
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_QUERY_FAILED",
			"failed to query deals by provider", "PostgresOfferStore", "QueryByProvider", true, err)
	}
	defer rows.Close()

	return collectDealRows(rows)
}

// ScanAll returns every stored deal ordered by confidence
func (s *PostgresOfferStore) ScanAll(ctx context.Context) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals ORDER BY confidence_score DESC, discovered_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_SCAN_FAILED",
			"failed to scan deals", "PostgresOfferStore", "ScanAll", true, err)
	}
	defer rows.Close()

	return collectDealRows(rows)
}

// ScanExpiringWithin returns deals whose expiry date falls inside the window
// from now, soonest first
func (s *PostgresOfferStore) ScanExpiringWithin(ctx context.Context, window time.Duration) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals
		WHERE expiry_date IS NOT NULL AND expiry_date BETWEEN NOW() AND $1
		ORDER BY expiry_date ASC`

	rows, err := s.db.QueryContext(ctx, query, time.Now().Add(window))
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_EXPIRY_SCAN_FAILED",
			"failed to scan expiring deals", "PostgresOfferStore", "ScanExpiringWithin", true, err)
	}
	defer rows.Close()

	return collectDealRows(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDealRow(row rowScanner) (*models.Deal, error) {
	var deal models.Deal
	var provider string
	var expiryDate sql.NullTime

	err := row.Scan(&deal.OfferID, &provider, &deal.CertificationName, &deal.DiscountType,
		&deal.Eligibility, &deal.DealType, &deal.ConfidenceScore, &deal.SourceURL,
		&deal.SourceName, &deal.RawText, &expiryDate, &deal.DiscoveredAt)
	if err != nil {
		return nil, err
	}

	deal.Provider = models.Provider(provider)
	if expiryDate.Valid {
		deal.ExpiryDate = &expiryDate.Time
	}
	return &deal, nil
}

func collectDealRows(rows *sql.Rows) ([]models.Deal, error) {
	var deals []models.Deal
	for rows.Next() {
		deal, err := scanDealRow(rows)
		if err != nil {
			return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_ROW_SCAN_FAILED",
				"failed to scan deal row", "PostgresOfferStore", "collectDealRows", false, err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "OFFER_ROWS_FAILED",
			"deal row iteration failed", "PostgresOfferStore", "collectDealRows", true, err)
	}

	logrus.WithFields(logrus.Fields{
		"component":  "PostgresOfferStore",
		"deal_count": len(deals),
	}).Debug("Collected deal rows")

	return deals, nil
}

// InMemoryOfferStore is a map-backed store used by tests and local runs
// without a database
type InMemoryOfferStore struct {
	mutex sync.RWMutex
	deals map[string]models.Deal
}

// NewInMemoryOfferStore creates an empty in-memory offer store
func NewInMemoryOfferStore() *InMemoryOfferStore {
	return &InMemoryOfferStore{deals: make(map[string]models.Deal)}
}

// Put stores or replaces the deal
func (s *InMemoryOfferStore) Put(_ context.Context, deal models.Deal) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.deals[deal.OfferID] = deal
	return nil
}

// Get returns the deal with the given offer id, or a not_found error
func (s *InMemoryOfferStore) Get(_ context.Context, offerID string) (*models.Deal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	deal, exists := s.deals[offerID]
	if !exists {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "OFFER_NOT_FOUND",
			"no deal with offer id "+offerID, "InMemoryOfferStore", "Get", false, nil)
	}
	return &deal, nil
}

// QueryByProvider returns the provider's stored deals ordered by confidence
func (s *InMemoryOfferStore) QueryByProvider(_ context.Context, provider models.Provider) ([]models.Deal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var deals []models.Deal
	for _, deal := range s.deals {
		if deal.Provider == provider {
			deals = append(deals, deal)
		}
	}
	sortDealsByConfidence(deals)
	return deals, nil
}

// ScanAll returns every stored deal ordered by confidence
func (s *InMemoryOfferStore) ScanAll(_ context.Context) ([]models.Deal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	deals := make([]models.Deal, 0, len(s.deals))
	for _, deal := range s.deals {
		deals = append(deals, deal)
	}
	sortDealsByConfidence(deals)
	return deals, nil
}

// ScanExpiringWithin returns deals expiring inside the window, soonest first
func (s *InMemoryOfferStore) ScanExpiringWithin(_ context.Context, window time.Duration) ([]models.Deal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := time.Now()
	cutoff := now.Add(window)

	var deals []models.Deal
	for _, deal := range s.deals {
		if deal.ExpiryDate == nil {
			continue
		}
		if deal.ExpiryDate.After(now) && !deal.ExpiryDate.After(cutoff) {
			deals = append(deals, deal)
		}
	}
	sort.Slice(deals, func(i, j int) bool {
		return deals[i].ExpiryDate.Before(*deals[j].ExpiryDate)
	})
	return deals, nil
}

// Count returns the number of stored deals
func (s *InMemoryOfferStore) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.deals)
}

func sortDealsByConfidence(deals []models.Deal) {
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].ConfidenceScore != deals[j].ConfidenceScore {
			return deals[i].ConfidenceScore > deals[j].ConfidenceScore
		}
		return deals[i].OfferID < deals[j].OfferID
	})
}
