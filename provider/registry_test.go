package provider

import (
	"testing"

	"github.com/kbukum/analyticskit/errors"
	"github.com/kbukum/analyticskit/logger"
)

func testMeta(id string, cat Category, platforms ...Platform) Metadata {
	return Metadata{ID: id, Name: id, Category: cat, Version: "1.0.0", Platforms: platforms}
}

func stubFactory(meta Metadata) Factory {
	return func() Provider {
		return NewBase(meta, logger.NewDefault("test"))
	}
}

func TestRegisterAndCreate(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	meta := testMeta("mixpanel", CategoryAnalytics, PlatformWeb)
	reg.Register(meta, stubFactory(meta))

	p, err := reg.Create("mixpanel")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Metadata().ID != "mixpanel" {
		t.Errorf("expected id mixpanel, got %q", p.Metadata().ID)
	}
}

func TestReRegisterOverwrites(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	first := testMeta("dup", CategoryAnalytics)
	second := testMeta("dup", CategoryErrorTracking)

	reg.Register(first, stubFactory(first))
	reg.Register(second, stubFactory(second))

	got, ok := reg.Get("dup")
	if !ok {
		t.Fatal("expected registration present")
	}
	if got.Metadata.Category != CategoryErrorTracking {
		t.Errorf("expected second registration to win, got category %s", got.Metadata.Category)
	}

	p, err := reg.Create("dup")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Metadata().Category != CategoryErrorTracking {
		t.Error("Create must use the second factory")
	}
}

func TestCreateUnknownID(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	_, err := reg.Create("missing")
	if err == nil {
		t.Fatal("expected error for unknown identifier")
	}
	code, ok := errors.CodeOf(err)
	if !ok || code != errors.ErrCodeUnavailable {
		t.Errorf("expected PROVIDER_UNAVAILABLE, got %v", err)
	}
}

func TestCreateRecoversFactoryPanic(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	reg.Register(testMeta("broken", CategoryAnalytics), func() Provider {
		panic("constructor exploded")
	})

	p, err := reg.Create("broken")
	if err == nil {
		t.Fatal("expected error from panicking factory")
	}
	if p != nil {
		t.Error("expected nil provider from panicking factory")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ErrCodeFactoryFailure {
		t.Errorf("expected FACTORY_FAILURE, got %s", code)
	}
}

func TestCreateNilFactoryResult(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	reg.Register(testMeta("nil", CategoryAnalytics), func() Provider { return nil })

	_, err := reg.Create("nil")
	if err == nil {
		t.Error("expected error for nil factory result")
	}
}

func TestUnregisterAndHas(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	meta := testMeta("x", CategoryAnalytics)
	reg.Register(meta, stubFactory(meta))

	if !reg.Has("x") {
		t.Fatal("expected Has true after register")
	}
	reg.Unregister("x")
	if reg.Has("x") {
		t.Error("expected Has false after unregister")
	}
}

func TestByCategory(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	a := testMeta("amplitude", CategoryAnalytics)
	s := testMeta("sentry", CategoryErrorTracking)
	reg.Register(a, stubFactory(a))
	reg.Register(s, stubFactory(s))

	analytics := reg.ByCategory(CategoryAnalytics)
	if len(analytics) != 1 || analytics[0].ID != "amplitude" {
		t.Errorf("expected [amplitude], got %v", analytics)
	}
}

func TestByPlatform(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	web := testMeta("web-only", CategoryAnalytics, PlatformWeb)
	mobile := testMeta("mobile", CategoryAnalytics, PlatformIOS, PlatformAndroid)
	reg.Register(web, stubFactory(web))
	reg.Register(mobile, stubFactory(mobile))

	ios := reg.ByPlatform(PlatformIOS)
	if len(ios) != 1 || ios[0].ID != "mobile" {
		t.Errorf("expected [mobile], got %v", ios)
	}
}

func TestAllSortedAndCopied(t *testing.T) {
	reg := NewRegistry(logger.NewDefault("test"))
	b := testMeta("b", CategoryAnalytics, PlatformWeb)
	a := testMeta("a", CategoryAnalytics, PlatformWeb)
	reg.Register(b, stubFactory(b))
	reg.Register(a, stubFactory(a))

	all := reg.All()
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("expected sorted [a b], got %v", all)
	}

	// Mutating the snapshot must not leak into the registry.
	all[0].Platforms[0] = PlatformServer
	fresh := reg.All()
	if fresh[0].Platforms[0] != PlatformWeb {
		t.Error("snapshot mutation leaked into the registry")
	}
}
