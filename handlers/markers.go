package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shweta-Mathanker/womanSafetyDTI/coordinator"
	"github.com/Shweta-Mathanker/womanSafetyDTI/models"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
	"github.com/Shweta-Mathanker/womanSafetyDTI/repository"
	"github.com/Shweta-Mathanker/womanSafetyDTI/types"
)

// MarkerStore is the durable record store behind the markers API.
// *repository.MarkersRepository implements it; tests substitute fakes.
type MarkerStore interface {
	Create(at geo.Point, description string) (models.Marker, error)
	ListAll() ([]models.Marker, error)
	DeleteByApproxCoordinates(at geo.Point, tol float64) (models.Marker, error)
}

type MarkersHandler struct {
	store MarkerStore
	coord *coordinator.Coordinator
}

func NewMarkersHandler(store MarkerStore, coord *coordinator.Coordinator) *MarkersHandler {
	return &MarkersHandler{store: store, coord: coord}
}

// coordinateRequest uses pointer fields so that 0 is a valid, present
// coordinate and a missing field is still a binding error.
type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r coordinateRequest) point() geo.Point {
	return geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func (h *MarkersHandler) CreateMarker(c *gin.Context) {
	var req struct {
		coordinateRequest
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "latitude and longitude are required"))
		return
	}
	at := req.point()
	if err := at.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	marker, err := h.store.Create(at, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	// Publish strictly after the store confirmed the write.
	h.coord.MarkerCreated(marker)
	c.JSON(http.StatusCreated, types.NewSuccessResponse(marker))
}

func (h *MarkersHandler) GetMarkers(c *gin.Context) {
	markers, err := h.store.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if markers == nil {
		markers = []models.Marker{}
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(markers))
}

func (h *MarkersHandler) DeleteMarker(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "latitude and longitude are required"))
		return
	}
	at := req.point()
	if err := at.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	removed, err := h.store.DeleteByApproxCoordinates(at, geo.DefaultTolerance)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "no marker near the given coordinates"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	// The event carries the coordinates the delete matched on, not the row id.
	h.coord.MarkerDeleted(at)
	c.JSON(http.StatusOK, types.NewSuccessResponse(removed))
}
