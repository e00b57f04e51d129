package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

// ProfileStore persists user matching profiles keyed by user id
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Put(ctx context.Context, profile models.UserProfile) error
}

// PostgresProfileStore stores profiles in the user_profiles table
type PostgresProfileStore struct {
	db *sql.DB
}

// NewPostgresProfileStore creates a Postgres-backed profile store
func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// Get returns the profile for the given user id, or a not_found error
func (s *PostgresProfileStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT user_id, location, student_status, current_certifications,
			target_certifications, preferred_providers, notification_preferences, updated_at
		FROM user_profiles
		WHERE user_id = $1`

	var profile models.UserProfile
	var notificationPrefs []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.UserID, &profile.Location, &profile.StudentStatus,
		pq.Array(&profile.CurrentCertifications), pq.Array(&profile.TargetCertifications),
		pq.Array(&profile.PreferredProviders), &notificationPrefs, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "PROFILE_NOT_FOUND",
			"no profile for user "+userID, "PostgresProfileStore", "Get", false, err)
	}
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryDatabase, "PROFILE_LOOKUP_FAILED",
			"failed to load user profile", "PostgresProfileStore", "Get", true, err)
	}

	if len(notificationPrefs) > 0 {
		if err := json.Unmarshal(notificationPrefs, &profile.NotificationPreferences); err != nil {
			return nil, shared.NewServiceError(shared.ErrorCategoryParse, "PROFILE_PREFS_INVALID",
				"stored notification preferences are not valid JSON", "PostgresProfileStore", "Get", false, err)
		}
	}

	return &profile, nil
}

// Put inserts the profile or replaces the stored one for the same user id
func (s *PostgresProfileStore) Put(ctx context.Context, profile models.UserProfile) error {
	notificationPrefs, err := json.Marshal(profile.NotificationPreferences)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryValidation, "PROFILE_PREFS_MARSHAL_FAILED",
			"failed to encode notification preferences", "PostgresProfileStore", "Put", false, err)
	}

	query := `
		INSERT INTO user_profiles (user_id, location, student_status, current_certifications,
			target_certifications, preferred_providers, notification_preferences, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			location = EXCLUDED.location,
			student_status = EXCLUDED.student_status,
			current_certifications = EXCLUDED.current_certifications,
			target_certifications = EXCLUDED.target_certifications,
			preferred_providers = EXCLUDED.preferred_providers,
			notification_preferences = EXCLUDED.notification_preferences,
			updated_at = NOW()`

	_, err = s.db.ExecContext(ctx, query,
		profile.UserID, profile.Location, profile.StudentStatus,
		pq.Array(profile.CurrentCertifications), pq.Array(profile.TargetCertifications),
		pq.Array(profile.PreferredProviders), notificationPrefs)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryDatabase, "PROFILE_UPSERT_FAILED",
			"failed to upsert user profile", "PostgresProfileStore", "Put", true, err)
	}
	return nil
}

// InMemoryProfileStore is a map-backed profile store used by tests
type InMemoryProfileStore struct {
	mutex    sync.RWMutex
	profiles map[string]models.UserProfile
}

// NewInMemoryProfileStore creates an empty in-memory profile store
func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[string]models.UserProfile)}
}

// Get returns the stored profile, or a not_found error
func (s *InMemoryProfileStore) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profile, exists := s.profiles[userID]
	if !exists {
		return nil, shared.NewServiceError(shared.ErrorCategoryNotFound, "PROFILE_NOT_FOUND",
			"no profile for user "+userID, "InMemoryProfileStore", "Get", false, nil)
	}
	return &profile, nil
}

// Put stores or replaces the profile
func (s *InMemoryProfileStore) Put(_ context.Context, profile models.UserProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	s.profiles[profile.UserID] = profile
	return nil
}
