package services

import (
	"context"
	"testing"
	"time"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/shared"
)

func TestInMemoryOfferStorePutIsUpsert(t *testing.T) {
	store := NewInMemoryOfferStore()
	ctx := context.Background()

	original := models.Deal{OfferID: "abc", Provider: models.ProviderAWS, ConfidenceScore: 0.4}
	updated := models.Deal{OfferID: "abc", Provider: models.ProviderAWS, ConfidenceScore: 0.8}

	if err := store.Put(ctx, original); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, updated); err != nil {
		t.Fatalf("second put: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("count = %d, want 1", store.Count())
	}

	deal, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if deal.ConfidenceScore != 0.8 {
		t.Errorf("confidence = %v, want the updated 0.8", deal.ConfidenceScore)
	}
}

func TestInMemoryOfferStoreGetMissing(t *testing.T) {
	store := NewInMemoryOfferStore()

	_, err := store.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing offer")
	}
	if !shared.IsCategory(err, shared.ErrorCategoryNotFound) {
		t.Errorf("expected not_found category, got %v", err)
	}
}

func TestInMemoryOfferStoreScanExpiringWithin(t *testing.T) {
	store := NewInMemoryOfferStore()
	ctx := context.Background()

	soon := time.Now().Add(3 * 24 * time.Hour)
	later := time.Now().Add(30 * 24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	seed := []models.Deal{
		{OfferID: "soon", Provider: models.ProviderAWS, ExpiryDate: &soon},
		{OfferID: "later", Provider: models.ProviderAWS, ExpiryDate: &later},
		{OfferID: "past", Provider: models.ProviderAWS, ExpiryDate: &past},
		{OfferID: "never", Provider: models.ProviderAWS},
	}
	for _, deal := range seed {
		if err := store.Put(ctx, deal); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	expiring, err := store.ScanExpiringWithin(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(expiring) != 1 || expiring[0].OfferID != "soon" {
		t.Errorf("expected only the deal expiring within the window, got %v", expiring)
	}
}

func TestInMemoryOfferStoreQueryByProviderIsolation(t *testing.T) {
	store := NewInMemoryOfferStore()
	ctx := context.Background()

	if err := store.Put(ctx, models.Deal{OfferID: "a", Provider: models.ProviderAWS}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Put(ctx, models.Deal{OfferID: "g", Provider: models.ProviderGCP}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	awsDeals, err := store.QueryByProvider(ctx, models.ProviderAWS)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(awsDeals) != 1 || awsDeals[0].OfferID != "a" {
		t.Errorf("provider query leaked other providers' deals: %v", awsDeals)
	}
}
