package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// StorageInitializer is the gateway operation that provisions remote storage.
type StorageInitializer interface {
	InitializeStorage(ctx context.Context) error
}

// OrphanStore is the operator view of the orphan records.
type OrphanStore interface {
	ports.OrphanReader
	ports.OrphanResolver
}

// AdminHandler serves operator endpoints. Routes are mounted behind RBAC.
type AdminHandler struct {
	storage StorageInitializer
	orphans OrphanStore
	log     zerolog.Logger
}

func NewAdminHandler(storage StorageInitializer, orphans OrphanStore, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{storage: storage, orphans: orphans, log: log}
}

// InitializeStorage asks the profile service to create its storage.
//
// @Summary      Initialize remote storage
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /admin/storage/initialize [post]
func (h *AdminHandler) InitializeStorage(c echo.Context) error {
	if err := h.storage.InitializeStorage(c.Request().Context()); err != nil {
		return err
	}
	username, _ := c.Get("username").(string)
	h.log.Info().Str("username", username).Msg("remote storage initialized")
	return c.JSON(http.StatusOK, map[string]string{"message": "storage initialized"})
}

// ListOrphans returns credentials awaiting reconciliation.
//
// @Summary      List orphaned credentials
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum records (default 100)"
// @Success      200    {array}   domain.OrphanedCredential
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /admin/orphans [get]
func (h *AdminHandler) ListOrphans(c echo.Context) error {
	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	orphans, err := h.orphans.ListOrphans(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orphans)
}

// ResolveOrphan closes the open records for a username once an operator has
// repaired the pair by hand.
//
// @Summary      Resolve orphaned credential
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  map[string]string
// @Failure      403       {object}  errorResponse
// @Router       /admin/orphans/{username}/resolve [post]
func (h *AdminHandler) ResolveOrphan(c echo.Context) error {
	target := c.Param("username")
	if target == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "username is required"})
	}
	if err := h.orphans.ResolveOrphan(c.Request().Context(), target); err != nil {
		return err
	}
	operator, _ := c.Get("username").(string)
	h.log.Info().Str("username", target).Str("operator", operator).Msg("orphaned credential resolved")
	return c.JSON(http.StatusOK, map[string]string{"message": "orphan resolved"})
}
