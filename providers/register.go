// Package providers collects the built-in adapter implementations and
// their registry wiring.
package providers

import (
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
	"github.com/kbukum/analyticskit/providers/console"
	"github.com/kbukum/analyticskit/providers/otelmetric"
	"github.com/kbukum/analyticskit/providers/sentry"
)

// RegisterAll registers every built-in adapter. Registration only makes
// adapters available for activation; nothing is constructed or
// initialized until the manager activates them.
func RegisterAll(reg *provider.Registry, log *logger.Logger) {
	reg.Register(console.Metadata(), console.Factory(log))
	reg.Register(otelmetric.Metadata(), otelmetric.Factory(log))
	reg.Register(sentry.Metadata(), sentry.Factory(log))
}
