package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
)

type composeInvoiceRequest struct {
	UnitID        string                  `json:"unit_id"`
	ReferenceDate time.Time               `json:"reference_date"`
	DueDate       time.Time               `json:"due_date"`
	FixedCharges  []fixedChargeRequest    `json:"fixed_charges"`
	Utilities     []utilityChargeRequest  `json:"utilities"`
	AdHocItems    []adHocItemRequest      `json:"ad_hoc_items"`
	Discount      *invoicedomain.Discount `json:"discount,omitempty"`
}

type fixedChargeRequest struct {
	RateType string `json:"rate_type"`
}

type utilityChargeRequest struct {
	UtilityType    string    `json:"utility_type"`
	CurrentReading float64   `json:"current_reading"`
	ReadingDate    time.Time `json:"reading_date"`
}

type adHocItemRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Value       float64 `json:"value"`
	UnitScope   string  `json:"unit_scope"`
}

func (r composeInvoiceRequest) toDomain() invoicedomain.ComposeRequest {
	req := invoicedomain.ComposeRequest{
		UnitID:        strings.TrimSpace(r.UnitID),
		ReferenceDate: r.ReferenceDate,
		DueDate:       r.DueDate,
		Discount:      r.Discount,
	}
	for _, fixed := range r.FixedCharges {
		req.FixedCharges = append(req.FixedCharges, invoicedomain.FixedChargeInput{
			RateType: strings.TrimSpace(fixed.RateType),
		})
	}
	for _, utility := range r.Utilities {
		req.Utilities = append(req.Utilities, invoicedomain.UtilityChargeInput{
			UtilityType:    strings.TrimSpace(utility.UtilityType),
			CurrentReading: utility.CurrentReading,
			ReadingDate:    utility.ReadingDate,
		})
	}
	for _, item := range r.AdHocItems {
		req.AdHocItems = append(req.AdHocItems, invoicedomain.AdHocItemInput{
			Description: strings.TrimSpace(item.Description),
			Category:    strings.TrimSpace(item.Category),
			Value:       item.Value,
			UnitScope:   strings.TrimSpace(item.UnitScope),
		})
	}
	return req
}

func (s *Server) ComposeInvoice(c *gin.Context) {
	var req composeInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Compose(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ComposeInvoicePDF(c *gin.Context) {
	var req composeInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.Compose(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.renderer.RenderInvoice(c.Request.Context(), invoice)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s-%s.pdf", invoice.Unit, invoice.ReferenceDate.Format("2006-01"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/pdf")
	if _, err := io.Copy(c.Writer, doc); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) IssueInvoice(c *gin.Context) {
	var req composeInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Issue(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
