package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/services"
)

func setupDealTestApp(t *testing.T) (*fiber.App, *services.InMemoryOfferStore) {
	t.Helper()

	store := services.NewInMemoryOfferStore()
	handler := NewDealHandler(store)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/deals", handler.GetDeals)
	api.Get("/deals/expiring", handler.GetExpiringDeals)
	api.Get("/deals/provider/:provider", handler.GetDealsByProvider)
	api.Get("/deals/:offer_id", handler.GetDealByID)
	api.Get("/trends", handler.GetDealTrends)

	return app, store
}

func decodeEnvelope(t *testing.T, response *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestGetDealsReturnsStoredDeals(t *testing.T) {
	app, store := setupDealTestApp(t)

	seed := models.Deal{OfferID: "abc", Provider: models.ProviderAWS, CertificationName: "AWS Certification"}
	if err := store.Put(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	response, err := app.Test(httptest.NewRequest("GET", "/api/v1/deals", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}

	body := decodeEnvelope(t, response)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestGetDealByIDNotFound(t *testing.T) {
	app, _ := setupDealTestApp(t)

	response, err := app.Test(httptest.NewRequest("GET", "/api/v1/deals/missing", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", response.StatusCode)
	}

	body := decodeEnvelope(t, response)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestGetDealsByProviderRejectsUnknownProvider(t *testing.T) {
	app, _ := setupDealTestApp(t)

	response, err := app.Test(httptest.NewRequest("GET", "/api/v1/deals/provider/oracle", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", response.StatusCode)
	}
}

func TestGetExpiringDealsValidatesDays(t *testing.T) {
	app, _ := setupDealTestApp(t)

	response, err := app.Test(httptest.NewRequest("GET", "/api/v1/deals/expiring?days=abc", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", response.StatusCode)
	}
}

func TestGetDealTrendsAggregates(t *testing.T) {
	app, store := setupDealTestApp(t)
	ctx := context.Background()

	seed := []models.Deal{
		{OfferID: "a", Provider: models.ProviderAWS, DealType: models.DealTypeExamVoucher, DiscountType: models.DiscountVoucher, ConfidenceScore: 0.8},
		{OfferID: "b", Provider: models.ProviderAWS, DealType: models.DealTypeFreeOffer, DiscountType: models.DiscountFree, ConfidenceScore: 0.3},
		{OfferID: "c", Provider: models.ProviderGCP, DealType: models.DealTypeExamVoucher, DiscountType: models.DiscountVoucher, ConfidenceScore: 0.9},
	}
	for _, deal := range seed {
		if err := store.Put(ctx, deal); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	response, err := app.Test(httptest.NewRequest("GET", "/api/v1/trends", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", response.StatusCode)
	}

	body := decodeEnvelope(t, response)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data object: %v", body)
	}
	if data["total_deals"] != float64(3) {
		t.Errorf("total_deals = %v, want 3", data["total_deals"])
	}
	if data["high_confidence_deals"] != float64(2) {
		t.Errorf("high_confidence_deals = %v, want 2", data["high_confidence_deals"])
	}

	byProvider, ok := data["by_provider"].(map[string]interface{})
	if !ok || byProvider["AWS"] != float64(2) {
		t.Errorf("by_provider = %v, want AWS count 2", data["by_provider"])
	}

	if data["best_provider"] != "AWS" {
		t.Errorf("best_provider = %v, want AWS", data["best_provider"])
	}

	average, ok := data["average_confidence"].(float64)
	if !ok || math.Abs(average-(0.8+0.3+0.9)/3) > 1e-9 {
		t.Errorf("average_confidence = %v, want mean of seeded scores", data["average_confidence"])
	}
}
