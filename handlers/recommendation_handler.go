package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/certhunt/deals-backend/services"
	"github.com/certhunt/deals-backend/shared"
)

// RecommendationHandler serves per-user deal recommendations
type RecommendationHandler struct {
	Matcher *services.CachedMatcherService
}

func NewRecommendationHandler(matcher *services.CachedMatcherService) *RecommendationHandler {
	return &RecommendationHandler{Matcher: matcher}
}

// GetRecommendations returns the deals matching the user's profile, ordered
// by match score
func (h *RecommendationHandler) GetRecommendations(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "user_id is required",
		})
	}

	matches, err := h.Matcher.MatchDealsForUser(c.Context(), userID)
	if err != nil {
		if shared.IsCategory(err, shared.ErrorCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "profile not found for user " + userID,
			})
		}
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    matches,
		"count":   len(matches),
	})
}
