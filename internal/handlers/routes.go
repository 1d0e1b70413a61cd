package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/localnerve/carscan-store/internal/utils"
)

// Routes groups the handlers mounted under /api
type Routes struct {
	Scans       *ScanHandler
	Collections *CollectionHandler
	Stats       *StatsHandler
}

// Register mounts the scan, collection and stats routes on api
func (r Routes) Register(api fiber.Router) {
	scans := api.Group("/scans")
	scans.Get("/", r.Scans.GetRecentScans)
	scans.Get("/saved", r.Scans.GetSavedScans)
	scans.Get("/search", r.Scans.SearchScans)
	scans.Post("/", r.Scans.RecordScan)
	scans.Get("/:id/image", r.Scans.GetImage)
	scans.Post("/:id/saved", r.Scans.ToggleSaved)
	scans.Delete("/", r.Scans.ClearScans)

	collections := api.Group("/collections")
	collections.Get("/", r.Collections.GetCollections)
	collections.Get("/watch", r.Collections.Watch)
	collections.Post("/", r.Collections.CreateCollection)
	collections.Delete("/:id", r.Collections.DeleteCollection)
	collections.Post("/:id/cars", r.Collections.AddCar)
	collections.Delete("/:id/cars/:carId", r.Collections.RemoveCar)

	api.Get("/stats", r.Stats.GetStats)
}

// NotFound answers any unmatched route
func NotFound(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, "notFound")
}

// ErrorHandler renders errors returned from handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	}

	return c.Status(code).JSON(utils.ErrorResponseStruct{
		Status:    code,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}
