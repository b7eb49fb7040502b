package observability

import (
	"github.com/invopond/invopond/internal/config"
	"github.com/invopond/invopond/internal/observability/logger"
	"github.com/invopond/invopond/internal/observability/metrics"
	"github.com/invopond/invopond/internal/observability/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Invoke(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) *metrics.HTTPMetrics {
		return metrics.NewHTTPMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)
	}),
	fx.Provide(func(cfg config.Config) *metrics.BillingMetrics {
		return metrics.Billing(cfg.ServiceName)
	}),
)
