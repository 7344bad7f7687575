package handlers

import (
	"unipool/internal/services"
	"unipool/internal/utils"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats returns a driver's dashboard numbers
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetDriverStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved successfully", stats)
}
