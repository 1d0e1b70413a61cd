package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/utils"
)

type StatsHandler struct{}

func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	stats, err := repo.GetStats(c.UserContext())
	if err != nil {
		return storeErrorResponse(c, err, "getStats")
	}
	return utils.SuccessResponse(c, stats, fiber.StatusOK)
}
