package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/services"
	"github.com/certhunt/deals-backend/shared"
)

// ProfileHandler serves user matching profiles
type ProfileHandler struct {
	Store  services.ProfileStore
	Cached *services.CachedMatcherService
}

func NewProfileHandler(store services.ProfileStore, cached *services.CachedMatcherService) *ProfileHandler {
	return &ProfileHandler{Store: store, Cached: cached}
}

// GetProfile returns the profile for a user id
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "user_id is required",
		})
	}

	profile, err := h.Store.Get(c.Context(), userID)
	if err != nil {
		if shared.IsCategory(err, shared.ErrorCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "profile not found",
			})
		}
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}

// PutProfile creates or replaces the profile for a user id
func (h *ProfileHandler) PutProfile(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "user_id is required",
		})
	}

	var profile models.UserProfile
	if err := c.BodyParser(&profile); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body: " + err.Error(),
		})
	}

	profile.UserID = userID
	profile.UpdatedAt = time.Now().UTC()

	if err := h.Store.Put(c.Context(), profile); err != nil {
		return internalError(c, err)
	}

	// The profile drives matching, so its cached recommendations are stale now
	if h.Cached != nil {
		h.Cached.InvalidateUser(userID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    profile,
	})
}
