// Package analyticskit is a provider orchestration layer for product
// analytics and error tracking. Applications talk to one Client; the client
// fans every call out to the configured vendor adapters, isolates their
// failures from each other and from the caller, buffers calls for adapters
// that are still starting up, and keeps dispatch eligibility in sync with
// user consent.
package analyticskit

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/analyticskit/config"
	"github.com/kbukum/analyticskit/consent"
	"github.com/kbukum/analyticskit/dispatch"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/observability"
	"github.com/kbukum/analyticskit/provider"
	"github.com/kbukum/analyticskit/providers"
	"github.com/kbukum/analyticskit/queue"
)

// Client is the application-facing entry point. It owns the registry, the
// consent store, the pre-registration buffer, and the dispatch manager.
type Client struct {
	Log      *logger.Logger
	Registry *provider.Registry
	Manager  *dispatch.Manager

	cfg            *config.Config
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

type clientOptions struct {
	log      *logger.Logger
	registry *provider.Registry
}

// Option configures the Client during creation.
type Option func(*clientOptions)

// WithLogger sets a custom logger. If not set, the logger is initialized
// from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithRegistry substitutes the provider registry. The built-in adapters
// are not registered on a substituted registry.
func WithRegistry(r *provider.Registry) Option {
	return func(o *clientOptions) { o.registry = r }
}

// New wires a Client from validated configuration and activates every
// configured provider. Unavailable providers are skipped with a log entry;
// New fails only on broken wiring, never on a single bad vendor.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("analyticskit: nil config")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analyticskit: %w", err)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		log = logger.New(&cfg.Logging, cfg.Name)
		logger.SetGlobalLogger(log)
	}

	reg := o.registry
	if reg == nil {
		reg = provider.NewRegistry(log)
		providers.RegisterAll(reg, log)
	}

	c := &Client{
		Log:      log,
		Registry: reg,
		cfg:      cfg,
	}

	var metrics *observability.Metrics
	if cfg.Observability.Enabled {
		var err error
		if metrics, err = c.initObservability(ctx); err != nil {
			return nil, fmt.Errorf("analyticskit: %w", err)
		}
	}

	events := queue.New(cfg.Queue.MaxPerTarget, log)
	store := consent.NewStore(cfg.Consent)

	managerOpts := []dispatch.Option{}
	if metrics != nil {
		managerOpts = append(managerOpts, dispatch.WithMetrics(metrics))
	}
	c.Manager = dispatch.NewManager(reg, events, store, log, managerOpts...)

	if cfg.Debug {
		c.Manager.SetDebugMode(true)
	}
	c.Manager.ActivateFromConfig(ctx, cfg.Providers)

	return c, nil
}

func (c *Client) initObservability(ctx context.Context) (*observability.Metrics, error) {
	obs := c.cfg.Observability

	meterCfg := observability.DefaultMeterConfig(c.cfg.Name)
	meterCfg.Environment = c.cfg.Environment
	if obs.MetricsEndpoint != "" {
		meterCfg.Endpoint = obs.MetricsEndpoint
	}
	mp, err := observability.InitMeter(ctx, meterCfg)
	if err != nil {
		return nil, err
	}
	c.meterProvider = mp

	tracerCfg := observability.DefaultTracerConfig(c.cfg.Name)
	tracerCfg.Environment = c.cfg.Environment
	if obs.TracesEndpoint != "" {
		tracerCfg.Endpoint = obs.TracesEndpoint
	}
	tp, err := observability.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, err
	}
	c.tracerProvider = tp

	return observability.NewMetrics(observability.Meter("analyticskit"))
}

// Close shuts down every provider instance, then the telemetry pipelines.
// Per-provider failures are aggregated; every instance is attempted.
func (c *Client) Close(ctx context.Context) error {
	err := c.Manager.Shutdown(ctx)
	if c.meterProvider != nil {
		if merr := c.meterProvider.Shutdown(ctx); merr != nil && err == nil {
			err = merr
		}
	}
	if c.tracerProvider != nil {
		if terr := c.tracerProvider.Shutdown(ctx); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}

// TrackEvent records an analytics event on every active analytics
// provider.
func (c *Client) TrackEvent(ctx context.Context, name string, props map[string]any) {
	c.Manager.TrackEvent(ctx, name, props)
}

// IdentifyUser associates the session with a user.
func (c *Client) IdentifyUser(ctx context.Context, userID string, traits map[string]any) {
	c.Manager.IdentifyUser(ctx, userID, traits)
}

// SetUserProperties updates user properties on active analytics providers.
func (c *Client) SetUserProperties(ctx context.Context, props map[string]any) {
	c.Manager.SetUserProperties(ctx, props)
}

// LogRevenue records a revenue event.
func (c *Client) LogRevenue(ctx context.Context, rev provider.Revenue) {
	c.Manager.LogRevenue(ctx, rev)
}

// LogScreenView records a screen view.
func (c *Client) LogScreenView(ctx context.Context, name string, props map[string]any) {
	c.Manager.LogScreenView(ctx, name, props)
}

// LogError reports an error to every active error-tracking provider.
func (c *Client) LogError(ctx context.Context, err error, errCtx map[string]any) {
	c.Manager.LogError(ctx, err, errCtx)
}

// SetUserContext attaches user context for error reports.
func (c *Client) SetUserContext(ctx context.Context, user provider.User) {
	c.Manager.SetUserContext(ctx, user)
}

// LeaveBreadcrumb records a breadcrumb on capable error-tracking
// providers.
func (c *Client) LeaveBreadcrumb(ctx context.Context, crumb provider.Breadcrumb) {
	c.Manager.LeaveBreadcrumb(ctx, crumb)
}

// UpdateConsent merges the delta into the effective consent settings and
// propagates the result to every provider instance.
func (c *Client) UpdateConsent(ctx context.Context, delta consent.Settings) {
	c.Manager.UpdateConsent(ctx, delta)
}

// Reset clears accumulated session state on every provider, for example
// when the user logs out.
func (c *Client) Reset(ctx context.Context) {
	c.Manager.Reset(ctx)
}
