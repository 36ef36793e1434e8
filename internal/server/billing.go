package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
)

type createBillingRequest struct {
	Unit        string    `json:"unit"`
	UnitID      string    `json:"unit_id"`
	Resident    string    `json:"resident"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	DueDate     time.Time `json:"due_date"`
}

type updateBillingRequest struct {
	Description *string `json:"description,omitempty"`
	Resident    *string `json:"resident,omitempty"`
	IsPrinted   *bool   `json:"is_printed,omitempty"`
	IsSent      *bool   `json:"is_sent,omitempty"`
}

type updateBillingStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) CreateBilling(c *gin.Context) {
	var req createBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var unitID *snowflake.ID
	if raw := strings.TrimSpace(req.UnitID); raw != "" {
		parsed, err := billingdomain.ParseID(raw)
		if err != nil {
			AbortWithError(c, billingdomain.ErrInvalidID)
			return
		}
		unitID = &parsed
	}

	resp, err := s.billingSvc.Create(c.Request.Context(), billingdomain.CreateRequest{
		Unit:        strings.TrimSpace(req.Unit),
		UnitID:      unitID,
		Resident:    strings.TrimSpace(req.Resident),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		DueDate:     req.DueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBillings(c *gin.Context) {
	var query billingdomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.billingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBilling(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.Update(c.Request.Context(), billingdomain.UpdateRequest{
		ID:          id,
		Description: req.Description,
		Resident:    req.Resident,
		IsPrinted:   req.IsPrinted,
		IsSent:      req.IsSent,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBillingStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateBillingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := billingdomain.BillingStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		AbortWithError(c, billingdomain.ErrInvalidStatus)
		return
	}

	resp, err := s.billingSvc.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
