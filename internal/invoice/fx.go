package invoice

import (
	"github.com/invopond/invopond/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewBuilder),
	fx.Provide(service.NewService),
)
