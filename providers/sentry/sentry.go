package sentry

import (
	"context"
	"fmt"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
)

// ID is the registry identifier of this adapter.
const ID = "sentry"

const flushTimeout = 2 * time.Second

// Metadata describes the adapter for registry listings.
func Metadata() provider.Metadata {
	return provider.Metadata{
		ID:       ID,
		Name:     "Sentry",
		Category: provider.CategoryErrorTracking,
		Version:  "1.0.0",
		Platforms: []provider.Platform{
			provider.PlatformWeb,
			provider.PlatformServer,
		},
	}
}

// Provider reports errors to Sentry. Each instance owns its own hub, so
// two instances never share scope state.
type Provider struct {
	*provider.Base
	hub *sentrygo.Hub
}

// New creates an uninitialized Sentry adapter.
func New(log *logger.Logger) *Provider {
	p := &Provider{}
	p.Base = provider.NewBase(Metadata(), log).
		WithSetup(p.setup).
		WithTeardown(p.teardown).
		WithResetHook(p.clearScope)
	return p
}

// Factory returns a registry factory producing fresh instances.
func Factory(log *logger.Logger) provider.Factory {
	return func() provider.Provider { return New(log) }
}

// setup builds the Sentry client from the activation config. Recognized
// keys: dsn (required), environment, release, sample_rate.
func (p *Provider) setup(ctx context.Context, cfg map[string]any) error {
	dsn, _ := cfg["dsn"].(string)
	if dsn == "" {
		return fmt.Errorf("sentry: dsn is required")
	}
	environment, _ := cfg["environment"].(string)
	release, _ := cfg["release"].(string)
	sampleRate := 1.0
	if v, ok := cfg["sample_rate"].(float64); ok {
		sampleRate = v
	}

	client, err := sentrygo.NewClient(sentrygo.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
		SampleRate:  sampleRate,
		Debug:       p.DebugMode(),
	})
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	p.hub = sentrygo.NewHub(client, sentrygo.NewScope())
	return nil
}

// teardown flushes buffered events before the client goes away.
func (p *Provider) teardown(ctx context.Context) error {
	if p.hub == nil {
		return nil
	}
	if ok := p.hub.Flush(flushTimeout); !ok {
		return fmt.Errorf("sentry: flush timed out after %s", flushTimeout)
	}
	p.hub = nil
	return nil
}

func (p *Provider) clearScope() {
	if p.hub != nil {
		p.hub.Scope().Clear()
	}
}

// LogError captures the error with the call's context and the session's
// accumulated tags attached.
func (p *Provider) LogError(ctx context.Context, err error, errCtx map[string]any) error {
	if gerr := p.EnsureReady(); gerr != nil {
		return gerr
	}
	if err == nil {
		return nil
	}

	var eventID *sentrygo.EventID
	p.hub.WithScope(func(scope *sentrygo.Scope) {
		if len(errCtx) != 0 {
			scope.SetContext("app", sentrygo.Context(errCtx))
		}
		for k, v := range p.Tags() {
			scope.SetTag(k, v)
		}
		eventID = p.hub.CaptureException(err)
	})
	if eventID == nil {
		return fmt.Errorf("sentry: event dropped by client")
	}
	return nil
}

// SetUserContext attaches the user to the hub scope for subsequent
// captures.
func (p *Provider) SetUserContext(ctx context.Context, user provider.User) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.hub.Scope().SetUser(sentrygo.User{ID: user.ID, Email: user.Email})
	return nil
}

// AddBreadcrumb records the crumb both locally and on the hub.
func (p *Provider) AddBreadcrumb(ctx context.Context, crumb provider.Breadcrumb) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.RecordBreadcrumb(crumb)
	p.hub.AddBreadcrumb(&sentrygo.Breadcrumb{
		Category:  crumb.Category,
		Message:   crumb.Message,
		Level:     sentrygo.Level(crumb.Level),
		Timestamp: crumb.Timestamp,
		Data:      crumb.Data,
	}, nil)
	return nil
}
