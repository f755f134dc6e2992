// Package redisstore implements graph.Store on Redis.
//
// Records are stored as JSON strings with kind-tagged property values; adjacency
// and type indexes are Redis sets:
//
//	<prefix>vertex:<id>          vertex record
//	<prefix>edge:<out>:<t>:<in>  edge record
//	<prefix>out:<id>             set of outbound edge keys
//	<prefix>in:<id>              set of inbound edge keys
//	<prefix>type:<t>             set of vertex ids with type t
package redisstore

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zero-day-ai/flowgraph/graph"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "flowgraph:"

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379/0")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// Store implements graph.Store using go-redis.
type Store struct {
	client *redis.Client
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to Redis and verifies the connection with PING.
func New(opts Options, storeOpts ...Option) (*Store, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 3 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 3 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewFromClient(client, storeOpts...), nil
}

// NewFromClient creates a store from an existing client. The store owns the client
// and closes it on Close.
func NewFromClient(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) vertexKey(id uuid.UUID) string {
	return s.prefix + "vertex:" + id.String()
}

func (s *Store) edgeKey(key graph.EdgeKey) string {
	return s.prefix + "edge:" + encodeEdgeKey(key)
}

func (s *Store) outKey(id uuid.UUID) string {
	return s.prefix + "out:" + id.String()
}

func (s *Store) inKey(id uuid.UUID) string {
	return s.prefix + "in:" + id.String()
}

func (s *Store) typeKey(t uuid.UUID) string {
	return s.prefix + "type:" + t.String()
}

func encodeEdgeKey(key graph.EdgeKey) string {
	return key.OutboundID.String() + ":" + key.T.String() + ":" + key.InboundID.String()
}

func decodeEdgeKey(s string) (graph.EdgeKey, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return graph.EdgeKey{}, fmt.Errorf("malformed edge key %q", s)
	}
	var ids [3]uuid.UUID
	for i, part := range parts {
		id, err := uuid.Parse(part)
		if err != nil {
			return graph.EdgeKey{}, fmt.Errorf("malformed edge key %q: %w", s, err)
		}
		ids[i] = id
	}
	return graph.NewEdgeKey(ids[0], ids[1], ids[2]), nil
}

func (s *Store) PutVertex(ctx context.Context, vp graph.VertexProperties) error {
	data, err := json.Marshal(newVertexRecord(vp))
	if err != nil {
		return fmt.Errorf("failed to marshal vertex: %w", err)
	}

	previous, err := s.GetVertex(ctx, vp.Vertex.ID)
	if err != nil && !errors.Is(err, graph.ErrNotFound) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.Vertex.T != vp.Vertex.T {
			pipe.SRem(ctx, s.typeKey(previous.Vertex.T), vp.Vertex.ID.String())
		}
		pipe.Set(ctx, s.vertexKey(vp.Vertex.ID), data, 0)
		pipe.SAdd(ctx, s.typeKey(vp.Vertex.T), vp.Vertex.ID.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save vertex %s: %w", vp.Vertex.ID, err)
	}
	return nil
}

func (s *Store) GetVertex(ctx context.Context, id uuid.UUID) (*graph.VertexProperties, error) {
	val, err := s.client.Get(ctx, s.vertexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, graph.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vertex %s: %w", id, err)
	}

	var rec vertexRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vertex %s: %w", id, err)
	}
	vp := rec.properties()
	return &vp, nil
}

func (s *Store) DeleteVertex(ctx context.Context, id uuid.UUID) error {
	vp, err := s.GetVertex(ctx, id)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil
		}
		return err
	}

	out, err := s.OutboundEdges(ctx, id)
	if err != nil {
		return err
	}
	in, err := s.InboundEdges(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range append(out, in...) {
			s.queueEdgeRemoval(ctx, pipe, key)
		}
		pipe.Del(ctx, s.vertexKey(id), s.outKey(id), s.inKey(id))
		pipe.SRem(ctx, s.typeKey(vp.Vertex.T), id.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete vertex %s: %w", id, err)
	}
	return nil
}

func (s *Store) VerticesByType(ctx context.Context, t uuid.UUID) ([]graph.VertexProperties, error) {
	members, err := s.client.SMembers(ctx, s.typeKey(t)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list vertices of type %s: %w", t, err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			return nil, fmt.Errorf("malformed vertex id %q in type index: %w", member, err)
		}
		keys = append(keys, s.vertexKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load vertices of type %s: %w", t, err)
	}

	out := make([]graph.VertexProperties, 0, len(values))
	for _, raw := range values {
		str, ok := raw.(string)
		if !ok {
			// index entry without a record
			continue
		}
		var rec vertexRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vertex: %w", err)
		}
		out = append(out, rec.properties())
	}
	sortVertices(out)
	return out, nil
}

func (s *Store) PutEdge(ctx context.Context, ep graph.EdgeProperties) error {
	key := ep.Edge.Key

	want := int64(2)
	if key.OutboundID == key.InboundID {
		want = 1
	}
	n, err := s.client.Exists(ctx, s.vertexKey(key.OutboundID), s.vertexKey(key.InboundID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check endpoints of %s: %w", key, err)
	}
	if n != want {
		return graph.ErrVertexNotFound
	}

	data, err := json.Marshal(newEdgeRecord(ep))
	if err != nil {
		return fmt.Errorf("failed to marshal edge: %w", err)
	}

	encoded := encodeEdgeKey(key)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.edgeKey(key), data, 0)
		pipe.SAdd(ctx, s.outKey(key.OutboundID), encoded)
		pipe.SAdd(ctx, s.inKey(key.InboundID), encoded)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save edge %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetEdge(ctx context.Context, key graph.EdgeKey) (*graph.EdgeProperties, error) {
	val, err := s.client.Get(ctx, s.edgeKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, graph.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get edge %s: %w", key, err)
	}

	var rec edgeRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge %s: %w", key, err)
	}
	ep := rec.properties()
	return &ep, nil
}

func (s *Store) DeleteEdge(ctx context.Context, key graph.EdgeKey) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueEdgeRemoval(ctx, pipe, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete edge %s: %w", key, err)
	}
	return nil
}

func (s *Store) OutboundEdges(ctx context.Context, id uuid.UUID) ([]graph.EdgeKey, error) {
	return s.adjacent(ctx, s.outKey(id))
}

func (s *Store) InboundEdges(ctx context.Context, id uuid.UUID) ([]graph.EdgeKey, error) {
	return s.adjacent(ctx, s.inKey(id))
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) adjacent(ctx context.Context, setKey string) ([]graph.EdgeKey, error) {
	members, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", setKey, err)
	}

	keys := make([]graph.EdgeKey, 0, len(members))
	for _, member := range members {
		key, err := decodeEdgeKey(member)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	graph.SortEdgeKeys(keys)
	return keys, nil
}

func (s *Store) queueEdgeRemoval(ctx context.Context, pipe redis.Pipeliner, key graph.EdgeKey) {
	encoded := encodeEdgeKey(key)
	pipe.Del(ctx, s.edgeKey(key))
	pipe.SRem(ctx, s.outKey(key.OutboundID), encoded)
	pipe.SRem(ctx, s.inKey(key.InboundID), encoded)
}

func sortVertices(vs []graph.VertexProperties) {
	slices.SortFunc(vs, func(a, b graph.VertexProperties) int {
		return strings.Compare(a.Vertex.ID.String(), b.Vertex.ID.String())
	})
}

var _ graph.Store = (*Store)(nil)
