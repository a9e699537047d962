// Package settings resolves runtime-editable configuration values with a
// fixed precedence: KV store first, environment-style fallback second,
// empty string last. The KV store is an optional dependency — some
// deployment runtimes expose it, some do not — and its availability is
// recomputed on every read.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/YoungLee-coder/coshub/kv"
)

// ErrStoreUnavailable is returned by Write when no KV store is bound or
// the bound store cannot be reached. There is no fallback write path:
// environment variables are never mutated at runtime.
var ErrStoreUnavailable = errors.New("settings: kv store unavailable")

// Source labels which precedence tier satisfied a read.
type Source string

const (
	SourceKV   Source = "kv"
	SourceEnv  Source = "env"
	SourceNone Source = "none"
)

// Key identifies a configuration item by its store key and its
// environment fallback.
type Key struct {
	KVKey  string
	EnvKey string
}

// The two settings this console manages. Store key names match the
// original deployment's KV namespace layout.
var (
	AccessPassword = Key{KVKey: "access_password", EnvKey: "COSHUB_ACCESS_PASSWORD"}
	CDNDomain      = Key{KVKey: "cdn_domain", EnvKey: "COSHUB_CDN_DOMAIN"}
)

// EnvFunc reads an environment-style fallback value. Injected so tests
// can substitute fixed values instead of mutating the process environment.
type EnvFunc func(key string) string

// Resolution is the result of a single Resolve call.
type Resolution struct {
	Value  string
	Source Source
	// KVAvailable reports whether a store is bound and reachable. It is
	// computed fresh for this call; availability can change between
	// deploys and must not be cached.
	KVAvailable bool
}

// Resolver produces effective configuration values.
type Resolver struct {
	store  kv.Store
	env    EnvFunc
	logger *slog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger for store-failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. store may be nil when the deployment
// runtime has no KV binding; env may be nil, in which case os.Getenv is
// used.
func NewResolver(store kv.Store, env EnvFunc, opts ...Option) *Resolver {
	r := &Resolver{store: store, env: env}
	for _, opt := range opts {
		opt(r)
	}
	if r.env == nil {
		r.env = os.Getenv
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return r
}

// Resolve returns the effective value for key. A non-empty stored value
// wins over the environment fallback; store errors are logged and
// treated as "store returned nothing" — they never propagate.
func (r *Resolver) Resolve(ctx context.Context, key Key) Resolution {
	res := Resolution{Source: SourceNone, KVAvailable: r.store != nil}

	if r.store != nil {
		value, err := r.store.Get(ctx, key.KVKey)
		switch {
		case err == nil && value != "":
			res.Value = value
			res.Source = SourceKV
			return res
		case err != nil && !errors.Is(err, kv.ErrNotFound):
			r.logger.Warn("kv read failed, falling back to environment",
				"key", key.KVKey, "error", err)
			res.KVAvailable = false
		}
	}

	if value := r.env(key.EnvKey); value != "" {
		res.Value = value
		res.Source = SourceEnv
		return res
	}
	return res
}

// Write persists value for key in the KV store. An empty value deletes
// the stored key, restoring the environment fallback on subsequent reads.
func (r *Resolver) Write(ctx context.Context, key Key, value string) error {
	if r.store == nil {
		return ErrStoreUnavailable
	}
	var err error
	if value == "" {
		err = r.store.Delete(ctx, key.KVKey)
	} else {
		err = r.store.Put(ctx, key.KVKey, value)
	}
	if err != nil {
		r.logger.Warn("kv write failed", "key", key.KVKey, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// StoreBound reports whether a KV store handle is configured at all.
func (r *Resolver) StoreBound() bool {
	return r.store != nil
}
