// Package console is an analytics adapter that writes every event to the
// structured log. It is the development-time stand-in for a real vendor
// and doubles as a wiring smoke test.
package console

import (
	"context"

	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/provider"
)

// ID is the registry identifier of this adapter.
const ID = "console"

// Metadata describes the adapter for registry listings.
func Metadata() provider.Metadata {
	return provider.Metadata{
		ID:       ID,
		Name:     "Console",
		Category: provider.CategoryAnalytics,
		Version:  "1.0.0",
		Platforms: []provider.Platform{
			provider.PlatformWeb,
			provider.PlatformIOS,
			provider.PlatformAndroid,
			provider.PlatformServer,
		},
	}
}

// Provider logs analytics calls instead of shipping them anywhere.
type Provider struct {
	*provider.Base
}

// New creates an uninitialized console adapter.
func New(log *logger.Logger) *Provider {
	p := &Provider{}
	p.Base = provider.NewBase(Metadata(), log)
	return p
}

// Factory returns a registry factory producing fresh instances.
func Factory(log *logger.Logger) provider.Factory {
	return func() provider.Provider { return New(log) }
}

func (p *Provider) Track(ctx context.Context, name string, props map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.Logger().Info("track", logger.Fields(
		logger.FieldEvent, name,
		"props", props,
		"super_props", p.SuperProperties(),
	))
	return nil
}

func (p *Provider) IdentifyUser(ctx context.Context, userID string, traits map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.Logger().Info("identify", logger.Fields(
		logger.FieldUserID, userID,
		"traits", traits,
	))
	return nil
}

func (p *Provider) SetUserProperties(ctx context.Context, props map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.Logger().Info("user properties", logger.Fields("props", props))
	return nil
}

func (p *Provider) LogRevenue(ctx context.Context, rev provider.Revenue) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.Logger().Info("revenue", logger.Fields(
		"amount", rev.Amount,
		"currency", rev.Currency,
		"product", rev.Product,
	))
	return nil
}

func (p *Provider) LogScreenView(ctx context.Context, name string, props map[string]any) error {
	if err := p.EnsureReady(); err != nil {
		return err
	}
	p.Logger().Info("screen view", logger.Fields(
		"screen", name,
		"props", props,
	))
	return nil
}
