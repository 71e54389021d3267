package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/room-booking-api/internal/service"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
	"github.com/campushub/room-booking-api/pkg/response"
)

// CatalogHandler exposes building and venue type endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListLocations godoc
// @Summary List buildings
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /locations [get]
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	locations, err := h.catalog.ListLocations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, locations, nil)
}

// CreateLocation godoc
// @Summary Create a building
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpsertLocationRequest true "Building payload"
// @Success 201 {object} response.Envelope
// @Router /locations [post]
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	var req service.UpsertLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	location, err := h.catalog.CreateLocation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, location)
}

// UpdateLocation godoc
// @Summary Update a building
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Building ID"
// @Param payload body service.UpsertLocationRequest true "Building payload"
// @Success 200 {object} response.Envelope
// @Router /locations/{id} [put]
func (h *CatalogHandler) UpdateLocation(c *gin.Context) {
	var req service.UpsertLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	location, err := h.catalog.UpdateLocation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, location, nil)
}

// DeleteLocation godoc
// @Summary Delete a building
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Building ID"
// @Success 204
// @Router /locations/{id} [delete]
func (h *CatalogHandler) DeleteLocation(c *gin.Context) {
	if err := h.catalog.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListVenueTypes godoc
// @Summary List venue types
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /venue-types [get]
func (h *CatalogHandler) ListVenueTypes(c *gin.Context) {
	venueTypes, err := h.catalog.ListVenueTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venueTypes, nil)
}

// CreateVenueType godoc
// @Summary Create a venue type
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpsertVenueTypeRequest true "Venue type payload"
// @Success 201 {object} response.Envelope
// @Router /venue-types [post]
func (h *CatalogHandler) CreateVenueType(c *gin.Context) {
	var req service.UpsertVenueTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	venueType, err := h.catalog.CreateVenueType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, venueType)
}

// UpdateVenueType godoc
// @Summary Update a venue type
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venue type ID"
// @Param payload body service.UpsertVenueTypeRequest true "Venue type payload"
// @Success 200 {object} response.Envelope
// @Router /venue-types/{id} [put]
func (h *CatalogHandler) UpdateVenueType(c *gin.Context) {
	var req service.UpsertVenueTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	venueType, err := h.catalog.UpdateVenueType(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, venueType, nil)
}

// DeleteVenueType godoc
// @Summary Delete a venue type
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venue type ID"
// @Success 204
// @Router /venue-types/{id} [delete]
func (h *CatalogHandler) DeleteVenueType(c *gin.Context) {
	if err := h.catalog.DeleteVenueType(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
