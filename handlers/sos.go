package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shweta-Mathanker/womanSafetyDTI/coordinator"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/notify"
	"github.com/Shweta-Mathanker/womanSafetyDTI/types"
)

type SosHandler struct {
	coord *coordinator.Coordinator
}

func NewSosHandler(coord *coordinator.Coordinator) *SosHandler {
	return &SosHandler{coord: coord}
}

// TriggerSos fans an emergency alert out to the trusted-contact roster and
// reports the aggregate outcome. Partial delivery is a success response with
// counts; zero deliveries is a gateway error; a missing channel configuration
// fails before any send.
func (h *SosHandler) TriggerSos(c *gin.Context) {
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

	res, err := h.coord.TriggerSOS(c.Request.Context(), at)
	if errors.Is(err, notify.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, types.NewErrorResponse(types.ErrorCodeAlertsNotReady, "alert channel is not configured"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if res.Failed() {
		c.JSON(http.StatusBadGateway, types.NewErrorResponseWithDetails(
			types.ErrorCodeAlertsFailed,
			"could not reach any trusted contact",
			map[string]interface{}{"delivered": res.Delivered, "total": res.Total},
		))
		return
	}

	status := "delivered"
	if res.Partial() {
		status = "partial"
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"status":    status,
		"delivered": res.Delivered,
		"total":     res.Total,
	}))
}
