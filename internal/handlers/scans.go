package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/middleware"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/utils"
)

type ScanHandler struct {
	Scans    *services.ScanService
	PageSize int
}

// RecordScanInput is the body of POST /api/scans
type RecordScanInput struct {
	Response string `json:"response" validate:"required"`
	Image    string `json:"image"`
}

func (h *ScanHandler) GetRecentScans(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	limit, offset := parsePage(c, h.PageSize)
	scans, err := repo.GetRecentScans(c.UserContext(), limit, offset)
	if err != nil {
		return storeErrorResponse(c, err, "getRecentScans")
	}
	return utils.SuccessResponse(c, scans, fiber.StatusOK)
}

func (h *ScanHandler) GetSavedScans(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	limit, offset := parsePage(c, h.PageSize)
	scans, err := repo.GetSavedCollection(c.UserContext(), limit, offset)
	if err != nil {
		return storeErrorResponse(c, err, "getSavedCollection")
	}
	return utils.SuccessResponse(c, scans, fiber.StatusOK)
}

func (h *ScanHandler) SearchScans(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	scans, err := repo.SearchScans(c.UserContext(), c.Query("q"))
	if err != nil {
		return storeErrorResponse(c, err, "searchScans")
	}
	return utils.SuccessResponse(c, scans, fiber.StatusOK)
}

// RecordScan parses the identification model's answer and stores the scan with its photo
func (h *ScanHandler) RecordScan(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	var input RecordScanInput
	if ok, err := bindAndValidate(c, &input, "recordScan"); !ok {
		return err
	}

	ident, err := services.ParseIdentification(input.Response)
	if err != nil {
		return storeErrorResponse(c, err, "recordScan")
	}

	imgs, err := h.Scans.Images(middleware.UserID(c))
	if err != nil {
		return storeErrorResponse(c, err, "recordScan")
	}

	scan, err := h.Scans.Record(c.UserContext(), repo, imgs, ident, input.Image)
	if err != nil {
		return storeErrorResponse(c, err, "recordScan")
	}
	return utils.SuccessResponse(c, scan, fiber.StatusCreated)
}

func (h *ScanHandler) ToggleSaved(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	changed, err := repo.ToggleSavedScan(c.UserContext(), id)
	if err != nil {
		return storeErrorResponse(c, err, "toggleSavedScan")
	}
	if !changed {
		return utils.NotFoundResponse(c, "Scan '"+id+"' not found")
	}
	return utils.MutationSuccessResponse(c, id)
}

// ClearScans deletes every scan, membership and image for the caller
func (h *ScanHandler) ClearScans(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	imgs, err := h.Scans.Images(middleware.UserID(c))
	if err != nil {
		return storeErrorResponse(c, err, "clearAllData")
	}

	if err := h.Scans.ClearAll(c.UserContext(), repo, imgs); err != nil {
		return storeErrorResponse(c, err, "clearAllData")
	}
	return utils.MutationSuccessResponse(c, "")
}

// GetImage serves the stored photo of a scan
func (h *ScanHandler) GetImage(c *fiber.Ctx) error {
	imgs, err := h.Scans.Images(middleware.UserID(c))
	if err != nil {
		return storeErrorResponse(c, err, "getImage")
	}

	id := c.Params("id")
	data, err := imgs.Load(id)
	if errors.Is(err, os.ErrNotExist) {
		return utils.NotFoundResponse(c, "Image for scan '"+id+"' not found")
	}
	if err != nil {
		return storeErrorResponse(c, err, "getImage")
	}

	c.Type("jpg")
	return c.Send(data)
}
