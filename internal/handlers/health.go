package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type HealthHandler struct {
	Cfg    *config.Config
	Local  *gorm.DB
	Remote *gorm.DB
	Log    zerolog.Logger
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Cfg, h.Local, h.Remote, h.Log)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
