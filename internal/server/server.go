// Package server exposes the billing HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invopond/invopond/internal/config"
	auditdomain "github.com/invopond/invopond/internal/audit/domain"
	catalogdomain "github.com/invopond/invopond/internal/catalog/domain"
	customerdomain "github.com/invopond/invopond/internal/customer/domain"
	invoicedomain "github.com/invopond/invopond/internal/invoice/domain"
	paymentdomain "github.com/invopond/invopond/internal/payment/domain"
	reportdomain "github.com/invopond/invopond/internal/report/domain"
	"github.com/invopond/invopond/internal/observability/logger"
	"github.com/invopond/invopond/internal/observability/metrics"
	"github.com/invopond/invopond/internal/observability/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	CustomerSvc customerdomain.Service
	CatalogSvc  catalogdomain.Service
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
	ReportSvc   reportdomain.Service
	AuditSvc    auditdomain.Service     `optional:"true"`
	HTTPMetrics *metrics.HTTPMetrics    `optional:"true"`
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	db          *gorm.DB
	customerSvc customerdomain.Service
	catalogSvc  catalogdomain.Service
	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
	reportSvc   reportdomain.Service
	auditSvc    auditdomain.Service
	httpMetrics *metrics.HTTPMetrics
	limiter     *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		db:          p.DB,
		customerSvc: p.CustomerSvc,
		catalogSvc:  p.CatalogSvc,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
		reportSvc:   p.ReportSvc,
		auditSvc:    p.AuditSvc,
		httpMetrics: p.HTTPMetrics,
		limiter:     newRateLimiter(p.Cfg.RateLimitPerMinute, time.Minute),
	}
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, srv *Server) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware())
	if srv.httpMetrics != nil {
		engine.Use(metrics.GinMiddleware(srv.httpMetrics))
	}
	engine.Use(srv.rateLimit())

	srv.RegisterRoutes(engine)
	return engine
}

// RegisterRoutes binds all API routes onto the engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		customers := api.Group("/customers")
		customers.POST("", s.CreateCustomer)
		customers.GET("", s.ListCustomers)
		customers.GET("/:id", s.GetCustomer)
		customers.PATCH("/:id", s.UpdateCustomer)
		customers.DELETE("/:id", s.DeleteCustomer)

		products := api.Group("/products")
		products.POST("", s.CreateProduct)
		products.GET("", s.ListProducts)
		products.GET("/:id", s.GetProduct)
		products.PATCH("/:id", s.UpdateProduct)
		products.DELETE("/:id", s.ArchiveProduct)

		invoices := api.Group("/invoices")
		invoices.POST("", s.GenerateInvoice)
		invoices.GET("", s.ListInvoices)
		invoices.GET("/:id", s.GetInvoice)
		invoices.GET("/:id/payments", s.ListInvoicePayments)
		invoices.POST("/:id/payments", s.RecordPayment)

		reports := api.Group("/reports")
		reports.GET("/invoices", s.InvoiceReport)
		reports.GET("/outstanding", s.OutstandingReport)

		api.GET("/audit-logs", s.ListAuditLogs)
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
