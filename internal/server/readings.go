package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
)

type recordReadingRequest struct {
	UnitID       string    `json:"unit_id"`
	UtilityType  string    `json:"utility_type"`
	ReadingValue float64   `json:"reading_value"`
	ReadingDate  time.Time `json:"reading_date"`
}

func (s *Server) RecordReading(c *gin.Context) {
	var req recordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.meteringSvc.RecordReading(c.Request.Context(), meteringdomain.RecordReadingRequest{
		UnitID:      strings.TrimSpace(req.UnitID),
		UtilityType: strings.TrimSpace(req.UtilityType),
		Value:       req.ReadingValue,
		ReadingDate: req.ReadingDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUnitReadings(c *gin.Context) {
	unitID, err := unitdomain.ParseID(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, unitdomain.ErrInvalidID)
		return
	}

	utility := ratedomain.UtilityType(strings.TrimSpace(c.Query("utility_type")))
	if !utility.Valid() {
		AbortWithError(c, ratedomain.ErrInvalidUtilityType)
		return
	}

	resp, err := s.meteringSvc.ListReadings(c.Request.Context(), unitID, utility)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
