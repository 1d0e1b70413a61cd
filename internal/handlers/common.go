// common.go
//
// Persistence service for the car scanner app: scans, collections and stats
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carscan-store.
// carscan-store is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carscan-store is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carscan-store.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
	"github.com/localnerve/carscan-store/internal/images"
	"github.com/localnerve/carscan-store/internal/middleware"
	"github.com/localnerve/carscan-store/internal/services"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/localnerve/carscan-store/internal/types"
	"github.com/localnerve/carscan-store/internal/utils"
)

// repository returns the request's repository, set by the session middleware
func repository(c *fiber.Ctx) (store.Repository, error) {
	repo, ok := middleware.Repository(c)
	if !ok {
		return nil, &types.CustomError{
			Code:    fiber.StatusInternalServerError,
			Message: "no repository resolved for request",
			Type:    "repository",
		}
	}
	return repo, nil
}

// parsePage reads limit and offset query parameters
func parsePage(c *fiber.Ctx, defaultLimit int) (int, int) {
	return c.QueryInt("limit", defaultLimit), c.QueryInt("offset", 0)
}

// bindAndValidate parses the JSON body into input and applies its validate tags.
// When it reports false the error response has already been written.
func bindAndValidate(c *fiber.Ctx, input interface{}, errorType string) (bool, error) {
	if err := c.BodyParser(input); err != nil {
		return false, utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, errorType)
	}

	v := validate.Struct(input)
	if !v.Validate() {
		return false, utils.ErrorResponse(c, v.Errors.One(), fiber.StatusBadRequest, errorType)
	}
	return true, nil
}

// storeErrorResponse maps a domain error to its HTTP status
func storeErrorResponse(c *fiber.Ctx, err error, errorType string) error {
	switch {
	case errors.Is(err, store.ErrProtectedCollection):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, errorType)
	case errors.Is(err, store.ErrCollectionNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, store.ErrMissingCarID), errors.Is(err, images.ErrInvalidID):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, services.ErrNotACar):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnprocessableEntity, errorType)
	case errors.Is(err, services.ErrNoIdentification):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnprocessableEntity, errorType)
	}

	var se *types.StorageError
	if errors.As(err, &se) {
		return utils.ErrorResponse(c, fmt.Sprintf("storage %s failed: %s", se.Kind, se.Op), fiber.StatusInternalServerError, errorType)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
