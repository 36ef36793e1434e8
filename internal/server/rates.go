package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
)

type createUtilityRateRequest struct {
	UtilityType       string    `json:"utility_type"`
	RatePerCubicMeter float64   `json:"rate_per_cubic_meter"`
	EffectiveDate     time.Time `json:"effective_date"`
}

type createFixedRateRequest struct {
	RateType      string    `json:"rate_type"`
	BillingMethod string    `json:"billing_method"`
	ExpenseType   string    `json:"expense_type"`
	Amount        float64   `json:"amount"`
	EffectiveDate time.Time `json:"effective_date"`
}

func (s *Server) CreateUtilityRate(c *gin.Context) {
	var req createUtilityRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.CreateUtilityRate(c.Request.Context(), ratedomain.CreateUtilityRateRequest{
		UtilityType:   strings.TrimSpace(req.UtilityType),
		Rate:          req.RatePerCubicMeter,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUtilityRates(c *gin.Context) {
	utility := ratedomain.UtilityType(strings.TrimSpace(c.Query("utility_type")))
	if !utility.Valid() {
		AbortWithError(c, ratedomain.ErrInvalidUtilityType)
		return
	}

	resp, err := s.rateSvc.ListUtilityRates(c.Request.Context(), utility)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCurrentUtilityRate(c *gin.Context) {
	utility := ratedomain.UtilityType(strings.TrimSpace(c.Query("utility_type")))
	if !utility.Valid() {
		AbortWithError(c, ratedomain.ErrInvalidUtilityType)
		return
	}

	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_as_of", "invalid as_of date"))
		return
	}

	resp, err := s.rateSvc.CurrentRate(c.Request.Context(), utility, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateFixedRate(c *gin.Context) {
	var req createFixedRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.CreateFixedRate(c.Request.Context(), ratedomain.CreateFixedRateRequest{
		RateType:      strings.TrimSpace(req.RateType),
		BillingMethod: strings.TrimSpace(req.BillingMethod),
		ExpenseType:   strings.TrimSpace(req.ExpenseType),
		Amount:        req.Amount,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFixedRates(c *gin.Context) {
	rateType := ratedomain.RateType(strings.TrimSpace(c.Query("rate_type")))
	if !rateType.Valid() {
		AbortWithError(c, ratedomain.ErrInvalidRateType)
		return
	}

	resp, err := s.rateSvc.ListFixedRates(c.Request.Context(), rateType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCurrentFixedRate(c *gin.Context) {
	rateType := ratedomain.RateType(strings.TrimSpace(c.Query("rate_type")))
	if !rateType.Valid() {
		AbortWithError(c, ratedomain.ErrInvalidRateType)
		return
	}

	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_as_of", "invalid as_of date"))
		return
	}

	resp, err := s.rateSvc.CurrentFixedRate(c.Request.Context(), rateType, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseAsOf(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
