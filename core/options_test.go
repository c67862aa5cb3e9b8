package core

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-accounts/dispatch"
	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type fixedStoreFactory struct {
	store  Store
	client any
	err    error
}

func (f *fixedStoreFactory) BuildStores(persistenceClient any) (Store, error) {
	f.client = persistenceClient
	return f.store, f.err
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc := newTestService(t, newMemoryStore())
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorMapper == nil {
		t.Fatalf("expected default error mapper")
	}
	if deps.ConfigProvider == nil {
		t.Fatalf("expected default config provider")
	}
	if deps.OptionsResolver == nil {
		t.Fatalf("expected default options resolver")
	}
	if deps.EventPublisher == nil {
		t.Fatalf("expected default event publisher")
	}
	if deps.Registry != nil {
		t.Fatalf("expected no registry before Register")
	}
	cfg := svc.Config()
	if cfg.ServiceName != "accounts" {
		t.Fatalf("expected default config service_name=accounts, got %q", cfg.ServiceName)
	}
	if cfg.LoadLimit != DefaultLoadLimit {
		t.Fatalf("expected default load limit %d, got %d", DefaultLoadLimit, cfg.LoadLimit)
	}
	if cfg.AccountSuffix != DefaultAccountSuffix {
		t.Fatalf("expected default suffix %q, got %q", DefaultAccountSuffix, cfg.AccountSuffix)
	}
	if cfg.Web {
		t.Fatalf("expected web mode off by default")
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := newCaptureLogger()
	customProvider := stubLoggerProvider{logger: customLogger}
	sentinel := errors.New("sentinel")
	customMapper := func(error) *goerrors.Error {
		return goerrors.Wrap(sentinel, goerrors.CategoryOperation, "mapped")
	}
	persistenceClient := &struct{ Name string }{Name: "persistence"}
	configProvider := &fixedConfigProvider{cfg: Config{ServiceName: "from-provider", LoadLimit: 1}}
	optionsResolver := &fixedOptionsResolver{cfg: Config{ServiceName: "resolved", LoadLimit: 7, AccountSuffix: " Org"}}
	publisher := &recordingPublisher{}
	registry := dispatch.NewRegistry()
	store := newMemoryStore()

	svc, err := NewService(Config{ServiceName: "runtime"},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorMapper(customMapper),
		WithPersistenceClient(persistenceClient),
		WithConfigProvider(configProvider),
		WithOptionsResolver(optionsResolver),
		WithEventPublisher(publisher),
		WithRegistry(registry),
		WithStore(store),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.Logger != customLogger {
		t.Fatalf("expected custom logger override")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected custom logger provider override")
	}
	if resolved := deps.LoggerProvider.GetLogger("accounts.override"); resolved != customLogger {
		t.Fatalf("expected logger provider to resolve custom logger")
	}
	if deps.PersistenceClient != persistenceClient {
		t.Fatalf("expected custom persistence client override")
	}
	if deps.ConfigProvider != configProvider {
		t.Fatalf("expected custom config provider override")
	}
	if deps.OptionsResolver != optionsResolver {
		t.Fatalf("expected custom options resolver override")
	}
	if deps.EventPublisher != publisher {
		t.Fatalf("expected custom event publisher override")
	}
	if deps.Registry != registry {
		t.Fatalf("expected custom registry override")
	}
	if deps.Store != store {
		t.Fatalf("expected custom store override")
	}
	if got := svc.Config(); got.ServiceName != "resolved" || got.LoadLimit != 7 || got.AccountSuffix != " Org" {
		t.Fatalf("expected options resolver output config, got %+v", got)
	}
	if mapped := deps.ErrorMapper(errors.New("boom")); !errors.Is(mapped, sentinel) {
		t.Fatalf("expected custom error mapper override")
	}
}

func TestNewService_ConfigLayeringPrecedence(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name":   "from-config",
		"load_limit":     5,
		"account_suffix": " Team",
		"web":            true,
	}})

	svc, err := NewService(Config{ServiceName: "from-runtime", LoadLimit: 2},
		WithConfigProvider(provider),
		WithStore(newMemoryStore()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := svc.Config()
	if cfg.ServiceName != "from-runtime" {
		t.Fatalf("expected runtime value to override config/default, got %q", cfg.ServiceName)
	}
	if cfg.LoadLimit != 2 {
		t.Fatalf("expected runtime load limit, got %d", cfg.LoadLimit)
	}
	if cfg.AccountSuffix != " Team" {
		t.Fatalf("expected config layer suffix, got %q", cfg.AccountSuffix)
	}
	if !cfg.Web {
		t.Fatalf("expected config layer to enable web mode")
	}
}

func TestNewService_AccountSuffixOptionWinsOverLayers(t *testing.T) {
	provider := NewCfgxConfigProvider(StaticConfigLoader(map[string]any{"account_suffix": " Team"}))
	svc := newTestService(t, newMemoryStore(), WithConfigProvider(provider), WithAccountSuffix(""))
	if got := svc.Config().AccountSuffix; got != "" {
		t.Fatalf("expected explicit empty suffix, got %q", got)
	}
}

func TestNewService_RejectsInvalidLoadLimit(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{"load_limit": -1}})
	if _, err := NewService(Config{}, WithConfigProvider(provider), WithStore(newMemoryStore())); err == nil {
		t.Fatalf("expected invalid load_limit to fail")
	}
}

func TestNewService_RequiresStore(t *testing.T) {
	_, err := NewService(Config{})
	if err == nil {
		t.Fatalf("expected missing store error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors type, got %T", err)
	}
	if rich.TextCode != ServiceErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", rich.TextCode)
	}
}

func TestNewService_BuildsStoreFromRepositoryFactory(t *testing.T) {
	store := newMemoryStore()
	client := &struct{ Name string }{Name: "bun"}
	factory := &fixedStoreFactory{store: store}

	svc, err := NewService(Config{}, WithPersistenceClient(client), WithRepositoryFactory(factory))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Dependencies().Store != store {
		t.Fatalf("expected store built by repository factory")
	}
	if factory.client != client {
		t.Fatalf("expected persistence client passed to factory")
	}

	factory = &fixedStoreFactory{err: errors.New("dsn unreachable")}
	if _, err := NewService(Config{}, WithRepositoryFactory(factory)); err == nil {
		t.Fatalf("expected factory failure to surface")
	}
}

func TestNewService_RepositoryFactoryMayBeStore(t *testing.T) {
	store := newMemoryStore()
	svc, err := NewService(Config{}, WithRepositoryFactory(store))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Dependencies().Store != store {
		t.Fatalf("expected store passed as factory to be used directly")
	}
}
