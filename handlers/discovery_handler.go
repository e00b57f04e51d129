package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/certhunt/deals-backend/models"
	"github.com/certhunt/deals-backend/services"
)

// DiscoveryHandler triggers discovery runs over HTTP
type DiscoveryHandler struct {
	Service *services.DiscoveryService
	Cached  *services.CachedMatcherService
}

func NewDiscoveryHandler(service *services.DiscoveryService, cached *services.CachedMatcherService) *DiscoveryHandler {
	return &DiscoveryHandler{Service: service, Cached: cached}
}

// DiscoveryRequest is the POST /discover body. Both fields are optional:
// no providers means all providers, no certification name means the generic
// query set.
type DiscoveryRequest struct {
	Providers         []string `json:"providers"`
	CertificationName string   `json:"certification_name"`
}

// TriggerDiscovery runs discovery synchronously and returns the run summary
func (h *DiscoveryHandler) TriggerDiscovery(c *fiber.Ctx) error {
	var request DiscoveryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "invalid request body: " + err.Error(),
			})
		}
	}

	var providers []models.Provider
	for _, name := range request.Providers {
		provider, ok := models.ParseProvider(name)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "unknown provider: " + name,
			})
		}
		providers = append(providers, provider)
	}

	summary, err := h.Service.RunDiscovery(c.Context(), providers, request.CertificationName)
	if err != nil {
		return internalError(c, err)
	}

	// New deals can change every user's recommendations
	if h.Cached != nil {
		h.Cached.InvalidateAll()
	}

	logrus.WithFields(logrus.Fields{
		"component":    "DiscoveryHandler",
		"run_id":       summary.RunID,
		"deals_stored": summary.DealsStored,
	}).Info("Discovery run triggered via API")

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}
