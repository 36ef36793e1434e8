package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
)

type createAccountRequest struct {
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initial_balance"`
}

type createTransactionRequest struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	AccountID   string    `json:"account_id"`
	ToAccountID string    `json:"to_account_id"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.CreateAccount(c.Request.Context(), accountdomain.CreateAccountRequest{
		Name:           strings.TrimSpace(req.Name),
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAccounts(c *gin.Context) {
	resp, err := s.accountSvc.ListAccounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAccountByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountSvc.GetAccount(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.CreateTransaction(c.Request.Context(), accountdomain.CreateTransactionRequest{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Type:        strings.TrimSpace(req.Type),
		Category:    strings.TrimSpace(req.Category),
		AccountID:   strings.TrimSpace(req.AccountID),
		ToAccountID: strings.TrimSpace(req.ToAccountID),
		Date:        req.Date,
		Status:      strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTransactions(c *gin.Context) {
	var req accountdomain.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.ListTransactions(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountSvc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteTransaction(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountSvc.CompleteTransaction(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelTransaction(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.accountSvc.CancelTransaction(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
