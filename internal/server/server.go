// Package server exposes the HTTP API over the billing services.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/predialis/predialis/internal/account"
	accountdomain "github.com/predialis/predialis/internal/account/domain"
	"github.com/predialis/predialis/internal/billing"
	billingdomain "github.com/predialis/predialis/internal/billing/domain"
	"github.com/predialis/predialis/internal/config"
	"github.com/predialis/predialis/internal/invoice"
	invoicedomain "github.com/predialis/predialis/internal/invoice/domain"
	"github.com/predialis/predialis/internal/metering"
	meteringdomain "github.com/predialis/predialis/internal/metering/domain"
	obsmetrics "github.com/predialis/predialis/internal/observability/metrics"
	"github.com/predialis/predialis/internal/providers/pdf"
	"github.com/predialis/predialis/internal/rate"
	ratedomain "github.com/predialis/predialis/internal/rate/domain"
	"github.com/predialis/predialis/internal/unit"
	unitdomain "github.com/predialis/predialis/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	obsmetrics.Module,
	pdf.Module,
	rate.Module,
	metering.Module,
	unit.Module,
	account.Module,
	billing.Module,
	invoice.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	rateSvc     ratedomain.Service
	meteringSvc meteringdomain.Service
	unitSvc     unitdomain.Service
	accountSvc  accountdomain.Service
	billingSvc  billingdomain.Service
	invoiceSvc  invoicedomain.Service
	renderer    pdf.Renderer
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	RateSvc     ratedomain.Service
	MeteringSvc meteringdomain.Service
	UnitSvc     unitdomain.Service
	AccountSvc  accountdomain.Service
	BillingSvc  billingdomain.Service
	InvoiceSvc  invoicedomain.Service
	Renderer    pdf.Renderer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		rateSvc:     p.RateSvc,
		meteringSvc: p.MeteringSvc,
		unitSvc:     p.UnitSvc,
		accountSvc:  p.AccountSvc,
		billingSvc:  p.BillingSvc,
		invoiceSvc:  p.InvoiceSvc,
		renderer:    p.Renderer,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	rates := v1.Group("/rates")
	rates.POST("/utility", s.CreateUtilityRate)
	rates.GET("/utility", s.ListUtilityRates)
	rates.GET("/utility/current", s.GetCurrentUtilityRate)
	rates.POST("/fixed", s.CreateFixedRate)
	rates.GET("/fixed", s.ListFixedRates)
	rates.GET("/fixed/current", s.GetCurrentFixedRate)

	units := v1.Group("/units")
	units.POST("", s.CreateUnit)
	units.GET("", s.ListUnits)
	units.GET("/:id", s.GetUnitByID)
	units.PATCH("/:id", s.UpdateUnit)
	units.GET("/:id/readings", s.ListUnitReadings)

	v1.POST("/readings", s.RecordReading)

	invoices := v1.Group("/invoices")
	invoices.POST("/compose", s.ComposeInvoice)
	invoices.POST("/compose/pdf", s.ComposeInvoicePDF)
	invoices.POST("/issue", s.IssueInvoice)

	billings := v1.Group("/billings")
	billings.POST("", s.CreateBilling)
	billings.GET("", s.ListBillings)
	billings.GET("/:id", s.GetBillingByID)
	billings.PATCH("/:id", s.UpdateBilling)
	billings.POST("/:id/status", s.UpdateBillingStatus)

	accounts := v1.Group("/accounts")
	accounts.POST("", s.CreateAccount)
	accounts.GET("", s.ListAccounts)
	accounts.GET("/:id", s.GetAccountByID)

	transactions := v1.Group("/transactions")
	transactions.POST("", s.CreateTransaction)
	transactions.GET("", s.ListTransactions)
	transactions.GET("/:id", s.GetTransactionByID)
	transactions.POST("/:id/complete", s.CompleteTransaction)
	transactions.POST("/:id/cancel", s.CancelTransaction)
}
