// collections.go
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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/middleware"
	"github.com/localnerve/carscan-store/internal/models"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/localnerve/carscan-store/internal/utils"
	"github.com/rs/zerolog"
)

// DefaultHeartbeat is how often an idle collections stream is probed with a comment line
const DefaultHeartbeat = 30 * time.Second

// CollectionHandler serves collection routes. Provider is only needed for live updates.
type CollectionHandler struct {
	Provider  *store.Provider
	Log       zerolog.Logger
	Heartbeat time.Duration
}

func (h *CollectionHandler) heartbeat() time.Duration {
	if h.Heartbeat <= 0 {
		return DefaultHeartbeat
	}
	return h.Heartbeat
}

// CreateCollectionInput is the body of POST /api/collections
type CreateCollectionInput struct {
	Name string `json:"name" validate:"required|maxLen:100"`
	Icon string `json:"icon" validate:"maxLen:16"`
}

func (h *CollectionHandler) GetCollections(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	collections, err := repo.GetCollections(c.UserContext())
	if err != nil {
		return storeErrorResponse(c, err, "getCollections")
	}
	return utils.SuccessResponse(c, collections, fiber.StatusOK)
}

func (h *CollectionHandler) CreateCollection(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	var input CreateCollectionInput
	if ok, err := bindAndValidate(c, &input, "createCollection"); !ok {
		return err
	}

	id, err := repo.CreateCollection(c.UserContext(), input.Name, input.Icon)
	if err != nil {
		return storeErrorResponse(c, err, "createCollection")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *CollectionHandler) DeleteCollection(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if err := repo.DeleteCollection(c.UserContext(), id); err != nil {
		return storeErrorResponse(c, err, "deleteCollection")
	}
	return utils.MutationSuccessResponse(c, id)
}

// AddCar takes the full scan as the body, the remote store keeps a snapshot of it
func (h *CollectionHandler) AddCar(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	var car models.Scan
	if err := c.BodyParser(&car); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "addToCollection")
	}

	id := c.Params("id")
	if err := repo.AddToCollection(c.UserContext(), id, car); err != nil {
		return storeErrorResponse(c, err, "addToCollection")
	}
	return utils.MutationSuccessResponse(c, car.ID)
}

func (h *CollectionHandler) RemoveCar(c *fiber.Ctx) error {
	repo, err := repository(c)
	if err != nil {
		return err
	}

	carID := c.Params("carId")
	if err := repo.RemoveFromCollection(c.UserContext(), c.Params("id"), carID); err != nil {
		return storeErrorResponse(c, err, "removeFromCollection")
	}
	return utils.MutationSuccessResponse(c, carID)
}

// Watch streams the signed-in user's collections as server-sent events,
// one "collections" event per snapshot. Idle streams get a comment line every
// heartbeat so a client that went away is noticed and its watcher released.
func (h *CollectionHandler) Watch(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" || h.Provider == nil || h.Provider.Remote() == nil {
		return utils.ErrorResponse(c, "Live collections require a signed-in user", fiber.StatusBadRequest, "watchCollections")
	}

	// the stream outlives the request handler, so it gets its own context
	ctx, cancel := context.WithCancel(context.Background())
	updates, err := h.Provider.Remote().Watch(ctx, userID)
	if err != nil {
		cancel()
		return storeErrorResponse(c, err, "watchCollections")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	log := h.Log.With().Str("user", userID).Logger()
	interval := h.heartbeat()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				data, err := json.Marshal(snapshot)
				if err != nil {
					log.Error().Err(err).Msg("failed to encode collections snapshot")
					return
				}
				fmt.Fprintf(w, "event: collections\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug().Err(err).Msg("collections watcher disconnected")
				return
			}
		}
	})
	return nil
}
