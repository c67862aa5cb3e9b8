package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/dispatch"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	store             Store
	eventPublisher    EventPublisher
	registry          *dispatch.Registry
	jobEnqueuer       JobEnqueuer
	clock             func() time.Time
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	Store             Store
	EventPublisher    EventPublisher
	Registry          *dispatch.Registry
	JobEnqueuer       JobEnqueuer
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("accounts", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.loggerProvider != nil {
		if named := builder.loggerProvider.GetLogger("accounts"); named != nil {
			logger = glog.Ensure(named)
		}
	} else if builder.logger != nil {
		logger = builder.logger
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.eventPublisher == nil {
		builder.eventPublisher = NopEventPublisher{}
	}
	if builder.clock == nil {
		builder.clock = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	if builder.accountSuffix != nil {
		finalConfig.AccountSuffix = *builder.accountSuffix
	}

	if builder.store == nil && builder.repositoryFactory != nil {
		switch factory := builder.repositoryFactory.(type) {
		case RepositoryStoreFactory:
			store, buildErr := factory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			builder.store = store
		case Store:
			builder.store = factory
		}
	}
	if builder.store == nil {
		return nil, mapBuildError(builder.errorMapper, fmt.Errorf("core: store is required"))
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		store:             builder.store,
		eventPublisher:    builder.eventPublisher,
		registry:          builder.registry,
		jobEnqueuer:       builder.jobEnqueuer,
		clock:             builder.clock,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		Store:             s.store,
		EventPublisher:    s.eventPublisher,
		Registry:          s.registry,
		JobEnqueuer:       s.jobEnqueuer,
	}
}

func (s *Service) Registry() *dispatch.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) now() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Service) loadLimit() int {
	if s == nil || s.config.LoadLimit < 1 {
		return DefaultLoadLimit
	}
	return s.config.LoadLimit
}

func (s *Service) CreateAccount(ctx context.Context, req CreateAccountRequest) (account Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"name":   req.Name,
		"origin": req.Origin,
	}
	defer func() {
		fields["account_id"] = account.ID
		s.observeOperation(ctx, startedAt, "create", err, fields)
	}()

	// Only auto-created accounts may be unnamed.
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Origin) != OriginAuto {
		err = s.mapError(validationError("name", "account name is required"))
		return Account{}, err
	}

	account = NewAccount(req.Name, req.Fields)
	if req.Active != nil {
		account.Active = *req.Active
	}
	account.Origin = strings.TrimSpace(req.Origin)
	account.OriginUserID = strings.TrimSpace(req.OriginUserID)

	account, err = s.store.SaveAccount(ctx, account)
	if err != nil {
		err = s.mapError(storeError(err, "core: save account failed", map[string]any{"name": req.Name}))
		return Account{}, err
	}
	s.publish(ctx, EventAccountCreated, account.ID, account.OriginUserID, map[string]any{
		"name":   account.Name,
		"origin": account.Origin,
	})
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, id string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, s.mapError(validationError("account", "account id is required"))
	}
	account, err := s.store.LoadAccount(ctx, id)
	if err != nil {
		return Account{}, s.mapError(storeError(err, "core: load account failed", map[string]any{"account_id": id}))
	}
	return account, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, s.mapError(validationError("user", "user id is required"))
	}
	user, err := s.store.LoadUser(ctx, id)
	if err != nil {
		return User{}, s.mapError(storeError(err, "core: load user failed", map[string]any{"user_id": id}))
	}
	return user, nil
}

func (s *Service) SuspendAccount(ctx context.Context, accountID string) (account Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "suspend", err, fields)
	}()

	account, err = s.GetAccount(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	account.Active = false
	account, err = s.store.SaveAccount(ctx, account)
	if err != nil {
		err = s.mapError(storeError(err, "core: save account failed", fields))
		return Account{}, err
	}
	s.publish(ctx, EventAccountSuspended, account.ID, "", nil)
	return account, nil
}

func (s *Service) UpdateAccount(ctx context.Context, accountID string, values map[string]any) (account Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "update", err, fields)
	}()

	account, err = s.GetAccount(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	applied := account.MergeFields(values)
	fields["applied"] = applied
	account, err = s.store.SaveAccount(ctx, account)
	if err != nil {
		err = s.mapError(storeError(err, "core: save account failed", map[string]any{"account_id": accountID}))
		return Account{}, err
	}
	s.publish(ctx, EventAccountUpdated, account.ID, "", map[string]any{"fields": applied})
	return account, nil
}

func (s *Service) CleanAccount(account Account) PublicAccount {
	return account.Clean()
}

func (s *Service) AddUser(ctx context.Context, userID string, accountID string) (membership Membership, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "add_user", err, fields)
	}()

	user, account, err := s.loadPair(ctx, userID, accountID)
	if err != nil {
		return Membership{}, err
	}
	Link(&user, &account)
	membership, err = s.SaveMembership(ctx, user, account)
	if err != nil {
		return Membership{}, err
	}
	s.publish(ctx, EventMembershipLinked, account.ID, user.ID, nil)
	return membership, nil
}

// RemoveUser drops the membership in both directions.
func (s *Service) RemoveUser(ctx context.Context, userID string, accountID string) (membership Membership, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "remove_user", err, fields)
	}()

	user, account, err := s.loadPair(ctx, userID, accountID)
	if err != nil {
		return Membership{}, err
	}
	Unlink(&user, &account)
	membership, err = s.SaveMembership(ctx, user, account)
	if err != nil {
		return Membership{}, err
	}
	s.publish(ctx, EventMembershipUnlinked, account.ID, user.ID, nil)
	return membership, nil
}

// SetPrimary links both directions and moves the account to index 0 of the
// user's membership list.
func (s *Service) SetPrimary(ctx context.Context, userID string, accountID string) (membership Membership, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "primary", err, fields)
	}()

	user, account, err := s.loadPair(ctx, userID, accountID)
	if err != nil {
		return Membership{}, err
	}
	Link(&user, &account)
	user.SetPrimary(&account)
	membership, err = s.SaveMembership(ctx, user, account)
	if err != nil {
		return Membership{}, err
	}
	s.publish(ctx, EventMembershipPrimary, account.ID, user.ID, nil)
	return membership, nil
}

func (s *Service) loadPair(ctx context.Context, userID string, accountID string) (User, Account, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return User{}, Account{}, err
	}
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return User{}, Account{}, err
	}
	return user, account, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
