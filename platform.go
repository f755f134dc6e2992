package flowgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/zero-day-ai/flowgraph/definition"
	"github.com/zero-day-ai/flowgraph/graph"
	"github.com/zero-day-ai/flowgraph/graph/redisstore"
	"github.com/zero-day-ai/flowgraph/health"
	"github.com/zero-day-ai/flowgraph/manager"
	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/registry/etcdregistry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// Platform wires a graph store, type registries and the instance managers.
//
// Thread-safety: all methods are safe for concurrent use.
type Platform struct {
	logger     *slog.Logger
	store      graph.Store
	registries registry.Registries
	etcd       *clientv3.Client
	paths      []string

	Entities  *manager.EntityManager
	Relations *manager.RelationManager
	Flows     *manager.FlowManager
}

// Open creates a platform from cfg, connecting to the configured backends and
// loading the configured definitions.
//
// Example:
//
//	cfg, err := flowgraph.LoadConfig("flowgraph.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	platform, err := flowgraph.Open(ctx, cfg, flowgraph.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer platform.Close()
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Platform, error) {
	const op = "Platform.Open"

	pc := &platformConfig{}
	for _, opt := range opts {
		opt(pc)
	}
	if pc.logger == nil {
		pc.logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError(op, err)
	}

	p := &Platform{logger: pc.logger, store: pc.store, paths: cfg.Definitions}

	if p.store == nil {
		store, err := openStore(cfg.Store)
		if err != nil {
			return nil, NewNetworkError(op, err).WithContext(map[string]any{"backend": cfg.Store.GetBackend()})
		}
		p.store = store
	}

	if pc.registries != nil {
		p.registries = *pc.registries
	} else if err := p.openRegistries(cfg.Registry); err != nil {
		CloseWithLog(p.store, p.logger, "graph store")
		return nil, NewNetworkError(op, err).WithContext(map[string]any{"backend": cfg.Registry.GetBackend()})
	}

	managerOpts := []manager.Option{manager.WithLogger(pc.logger)}
	if pc.tracer != nil {
		managerOpts = append(managerOpts, manager.WithTracer(pc.tracer))
	}
	if pc.meter != nil {
		managerOpts = append(managerOpts, manager.WithMeter(pc.meter))
	}
	if cfg.Registry.TypeCheck {
		managerOpts = append(managerOpts, manager.WithRegistries(p.registries))
	}

	var err error
	if p.Entities, err = manager.NewEntityManager(p.store, managerOpts...); err == nil {
		if p.Relations, err = manager.NewRelationManager(p.store, managerOpts...); err == nil {
			p.Flows, err = manager.NewFlowManager(p.store, managerOpts...)
		}
	}
	if err != nil {
		CloseWithLog(p, p.logger, "platform")
		return nil, &Error{Op: op, Kind: KindConfiguration, Err: err}
	}

	if len(cfg.Definitions) > 0 {
		if _, err := p.LoadDefinitions(ctx, cfg.Definitions...); err != nil {
			CloseWithLog(p, p.logger, "platform")
			return nil, err
		}
	}

	p.logger.InfoContext(ctx, "platform opened",
		"store", cfg.Store.GetBackend(),
		"registry", cfg.Registry.GetBackend(),
		"type_check", cfg.Registry.TypeCheck,
	)
	return p, nil
}

func openStore(cfg StoreConfig) (graph.Store, error) {
	switch cfg.GetBackend() {
	case BackendMemory:
		return graph.NewMemoryStore(), nil
	case BackendRedis:
		return redisstore.New(cfg.Redis.Options(), redisstore.WithPrefix(cfg.Redis.GetPrefix()))
	default:
		return nil, fmt.Errorf("%w: store %q", ErrUnknownBackend, cfg.Backend)
	}
}

func (p *Platform) openRegistries(cfg RegistryConfig) error {
	switch cfg.GetBackend() {
	case BackendMemory:
		p.registries = registry.NewMemoryRegistries()
		return nil
	case BackendEtcd:
		etcdCfg := cfg.Etcd
		etcdCfg.Namespace = cfg.GetNamespace()
		etcdCfg.DialTimeout = cfg.GetDialTimeout()
		client, err := etcdregistry.Dial(etcdCfg)
		if err != nil {
			return err
		}
		p.etcd = client
		p.registries = cachedRegistries(etcdregistry.NewRegistries(client, etcdCfg.Namespace), cfg, p.logger)
		return nil
	default:
		return fmt.Errorf("%w: registry %q", ErrUnknownBackend, cfg.Backend)
	}
}

func cachedRegistries(backend registry.Registries, cfg RegistryConfig, logger *slog.Logger) registry.Registries {
	opts := []registry.CachedOption{
		registry.WithExpiration(cfg.GetCacheExpiration()),
		registry.WithCacheLogger(logger),
	}
	return registry.Registries{
		Components:    registry.NewCached[model.Component](backend.Components, opts...),
		EntityTypes:   registry.NewCached[model.EntityType](backend.EntityTypes, opts...),
		RelationTypes: registry.NewCached[model.RelationType](backend.RelationTypes, opts...),
	}
}

// Store returns the graph store.
func (p *Platform) Store() graph.Store {
	return p.store
}

// Registries returns the type registries.
func (p *Platform) Registries() registry.Registries {
	return p.registries
}

// LoadDefinitions loads definition files or directories, validates them against
// each other and the already registered types, and registers them. It returns the
// number of registered definitions.
func (p *Platform) LoadDefinitions(ctx context.Context, paths ...string) (int, error) {
	const op = "Platform.LoadDefinitions"

	bundle := &definition.Bundle{}
	for _, path := range paths {
		loaded, err := definition.Load(path)
		if errors.Is(err, os.ErrNotExist) {
			return 0, NewNotFoundError(op, err).WithContext(map[string]any{"path": path})
		}
		if err != nil {
			return 0, NewValidationError(op, err).WithContext(map[string]any{"path": path})
		}
		bundle.Merge(loaded)
	}

	known, err := p.registeredTypes(ctx, bundle)
	if err != nil {
		return 0, &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	if err := bundle.Validate(known...); err != nil {
		return 0, NewValidationError(op, err)
	}
	if err := bundle.Register(ctx, p.registries); err != nil {
		return 0, &Error{Op: op, Kind: KindNetwork, Err: err}
	}

	p.logger.InfoContext(ctx, "definitions loaded",
		"components", len(bundle.Components),
		"entity_types", len(bundle.EntityTypes),
		"relation_types", len(bundle.RelationTypes),
	)
	return bundle.Len(), nil
}

// registeredTypes lists the registered components and entity types that
// definitions may reference. Types the bundle redefines are left out so that
// re-importing a bundle replaces its definitions.
func (p *Platform) registeredTypes(ctx context.Context, bundle *definition.Bundle) ([]typeid.TypeID, error) {
	redefined := make(map[typeid.TypeID]bool, bundle.Len())
	for _, dao := range bundle.Components {
		redefined[typeid.NewComponentTypeID(dao.Namespace, dao.TypeName)] = true
	}
	for _, dao := range bundle.EntityTypes {
		redefined[typeid.NewEntityTypeID(dao.Namespace, dao.TypeName)] = true
	}

	components, err := p.registries.Components.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	entityTypes, err := p.registries.EntityTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity types: %w", err)
	}

	known := make([]typeid.TypeID, 0, len(components)+len(entityTypes))
	for _, c := range components {
		if ty := c.TypeID(); !redefined[ty] {
			known = append(known, ty)
		}
	}
	for _, et := range entityTypes {
		if ty := et.TypeID(); !redefined[ty] {
			known = append(known, ty)
		}
	}
	return known, nil
}

// Health checks the graph store, the type registries and the configured
// definition paths.
func (p *Platform) Health(ctx context.Context) health.Status {
	checks := []health.Status{
		health.StoreCheck(ctx, p.store, 0),
		health.RegistryCheck(ctx, p.registries, 0),
	}
	for _, path := range p.paths {
		checks = append(checks, health.FileCheck(path))
	}
	return health.Combine(checks...)
}

// Close closes the graph store and the registry connection.
func (p *Platform) Close() error {
	var errs []error
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close graph store: %w", err))
		}
	}
	if p.etcd != nil {
		if err := p.etcd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close registry client: %w", err))
		}
	}
	return errors.Join(errs...)
}
