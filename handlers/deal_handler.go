package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/services"
	"github.com/certhunt/deals-backend/shared"
)

// DealHandler serves stored deal queries
type DealHandler struct {
	Store services.OfferStore
}

func NewDealHandler(store services.OfferStore) *DealHandler {
	return &DealHandler{Store: store}
}

// GetDeals returns every stored deal ordered by confidence
func (h *DealHandler) GetDeals(c *fiber.Ctx) error {
	deals, err := h.Store.ScanAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    deals,
		"count":   len(deals),
	})
}

// GetDealsByProvider returns deals for one provider
func (h *DealHandler) GetDealsByProvider(c *fiber.Ctx) error {
	provider, ok := models.ParseProvider(c.Params("provider"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "unknown provider: " + c.Params("provider"),
		})
	}

	deals, err := h.Store.QueryByProvider(c.Context(), provider)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    deals,
		"count":   len(deals),
	})
}

// GetDealByID returns one deal by offer id
func (h *DealHandler) GetDealByID(c *fiber.Ctx) error {
	deal, err := h.Store.Get(c.Context(), c.Params("offer_id"))
	if err != nil {
		if shared.IsCategory(err, shared.ErrorCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "deal not found",
			})
		}
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    deal,
	})
}

// GetExpiringDeals returns deals expiring within the next N days (default 7)
func (h *DealHandler) GetExpiringDeals(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "days must be a positive integer",
		})
	}

	deals, err := h.Store.ScanExpiringWithin(c.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    deals,
		"count":   len(deals),
		"days":    days,
	})
}

// GetDealTrends summarizes the stored deal set by provider, deal type and
// discount type
func (h *DealHandler) GetDealTrends(c *fiber.Ctx) error {
	deals, err := h.Store.ScanAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	byProvider := make(map[string]int)
	byDealType := make(map[string]int)
	byDiscountType := make(map[string]int)
	highConfidence := 0
	confidenceSum := 0.0

	for _, deal := range deals {
		byProvider[string(deal.Provider)]++
		byDealType[deal.DealType]++
		byDiscountType[deal.DiscountType]++
		confidenceSum += deal.ConfidenceScore
		if deal.ConfidenceScore >= 0.7 {
			highConfidence++
		}
	}

	// Provider comparison walks the fixed provider order so ties resolve
	// the same way on every request
	bestProvider := ""
	bestCount := 0
	for _, provider := range models.KnownProviders() {
		if count := byProvider[string(provider)]; count > bestCount {
			bestProvider = string(provider)
			bestCount = count
		}
	}

	averageConfidence := 0.0
	if len(deals) > 0 {
		averageConfidence = confidenceSum / float64(len(deals))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_deals":           len(deals),
			"by_provider":           byProvider,
			"by_deal_type":          byDealType,
			"by_discount_type":      byDiscountType,
			"best_provider":         bestProvider,
			"average_confidence":    averageConfidence,
			"high_confidence_deals": highConfidence,
		},
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
