// Package etcdregistry implements registry.Registry on etcd.
//
// Each definition is stored as its JSON DAO under
//
//	/<namespace>/types/<kind>/<fully qualified identifier>
//
// so that a category can be listed with a single prefix query.
package etcdregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/registry"
	"github.com/zero-day-ai/flowgraph/typeid"
)

// DefaultNamespace is the key prefix used when Config.Namespace is empty.
const DefaultNamespace = "flowgraph"

// Config holds etcd connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints
	// Format: ["host1:2379", "host2:2379", "host3:2379"]
	Endpoints []string `json:"endpoints" yaml:"endpoints"`

	// Namespace is the key prefix for all definitions
	// Default: "flowgraph"
	Namespace string `json:"namespace" yaml:"namespace"`

	// DialTimeout bounds connection establishment
	// Default: 5s
	DialTimeout time.Duration `json:"dial_timeout" yaml:"dial_timeout"`

	// TLS holds TLS configuration. If nil, TLS is disabled.
	TLS *TLSConfig `json:"tls" yaml:"tls"`
}

// Dial connects to etcd and verifies connectivity with a quick read.
//
// The client must be closed by the caller.
func Dial(cfg Config) (*clientv3.Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("registry endpoints cannot be empty")
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	}

	tlsConfig, err := clientTLSConfig(cfg.TLS)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	clientCfg.TLS = tlsConfig

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return cli, nil
}

// Registry stores definitions of one category in etcd.
//
// Thread-safety: All methods are safe for concurrent use.
type Registry[T registry.Definition] struct {
	kv        clientv3.KV
	namespace string
	kind      typeid.Kind
}

// New creates a registry for definitions of the given kind on top of kv, which is
// usually a *clientv3.Client. An empty namespace selects DefaultNamespace.
func New[T registry.Definition](kv clientv3.KV, namespace string, kind typeid.Kind) *Registry[T] {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Registry[T]{
		kv:        kv,
		namespace: namespace,
		kind:      kind,
	}
}

// NewRegistries creates etcd registries for every definition category.
func NewRegistries(kv clientv3.KV, namespace string) registry.Registries {
	return registry.Registries{
		Components:    New[model.Component](kv, namespace, typeid.Component),
		EntityTypes:   New[model.EntityType](kv, namespace, typeid.EntityType),
		RelationTypes: New[model.RelationType](kv, namespace, typeid.RelationType),
	}
}

func (r *Registry[T]) Register(ctx context.Context, def T) error {
	ty := def.TypeID()
	if ty.Kind != r.kind {
		return fmt.Errorf("cannot register %s in the %s registry", ty, r.kind)
	}

	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", ty, err)
	}

	if _, err := r.kv.Put(ctx, r.buildKey(ty), string(data)); err != nil {
		return fmt.Errorf("failed to register %s: %w", ty, err)
	}
	return nil
}

func (r *Registry[T]) Get(ctx context.Context, ty typeid.TypeID) (T, error) {
	var def T
	if ty.Kind != r.kind {
		return def, registry.ErrNotFound
	}

	resp, err := r.kv.Get(ctx, r.buildKey(ty))
	if err != nil {
		return def, fmt.Errorf("failed to get %s: %w", ty, err)
	}
	if len(resp.Kvs) == 0 {
		return def, registry.ErrNotFound
	}

	if err := json.Unmarshal(resp.Kvs[0].Value, &def); err != nil {
		return def, fmt.Errorf("failed to unmarshal %s: %w", ty, err)
	}
	return def, nil
}

func (r *Registry[T]) Has(ctx context.Context, ty typeid.TypeID) (bool, error) {
	if ty.Kind != r.kind {
		return false, nil
	}

	resp, err := r.kv.Get(ctx, r.buildKey(ty), clientv3.WithCountOnly())
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", ty, err)
	}
	return resp.Count > 0, nil
}

// List returns every definition of the registry's kind. Entries that fail to
// decode are skipped.
func (r *Registry[T]) List(ctx context.Context) ([]T, error) {
	resp, err := r.kv.Get(ctx, r.prefix(), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s definitions: %w", r.kind, err)
	}

	defs := make([]T, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var def T
		if err := json.Unmarshal(kv.Value, &def); err != nil {
			// Skip invalid entries
			continue
		}
		defs = append(defs, def)
	}

	registry.SortDefinitions(defs)
	return defs, nil
}

func (r *Registry[T]) Delete(ctx context.Context, ty typeid.TypeID) error {
	if ty.Kind != r.kind {
		return nil
	}
	if _, err := r.kv.Delete(ctx, r.buildKey(ty)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", ty, err)
	}
	return nil
}

// prefix is /namespace/types/kind/
func (r *Registry[T]) prefix() string {
	return fmt.Sprintf("/%s/types/%s/", r.namespace, r.kind)
}

// buildKey is /namespace/types/kind/fqi
func (r *Registry[T]) buildKey(ty typeid.TypeID) string {
	return r.prefix() + ty.FullyQualifiedIdentifier().String()
}

var _ registry.Registry[model.Component] = (*Registry[model.Component])(nil)
