package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
)

type createUnitRequest struct {
	Block    string `json:"block"`
	Number   string `json:"number"`
	Resident string `json:"resident"`
	Active   *bool  `json:"active"`
}

type updateUnitRequest struct {
	Resident *string `json:"resident,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (s *Server) CreateUnit(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Create(c.Request.Context(), unitdomain.CreateRequest{
		Block:    strings.TrimSpace(req.Block),
		Number:   strings.TrimSpace(req.Number),
		Resident: strings.TrimSpace(req.Resident),
		Active:   req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUnits(c *gin.Context) {
	resp, err := s.unitSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUnitByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.unitSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateUnit(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.unitSvc.Update(c.Request.Context(), unitdomain.UpdateRequest{
		ID:       id,
		Resident: req.Resident,
		Active:   req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
