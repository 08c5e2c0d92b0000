// Package provider builds a ready-to-use types.Provider from a Config: it
// compiles the contracts, opens the configured backend, and wires change
// notification through an in-process hub and, optionally, Redis.
//
// Example:
//
//	p, err := provider.Open(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	created, err := p.Create(ctx, types.NewLocator(cfg.Authority, "notes"), types.Values{"title": "hi"})
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/provider/internal/logger"
	"github.com/mesh-intelligence/provider/internal/notify"
	"github.com/mesh-intelligence/provider/internal/postgres"
	"github.com/mesh-intelligence/provider/internal/router"
	"github.com/mesh-intelligence/provider/internal/sqldb"
	"github.com/mesh-intelligence/provider/internal/sqlite"
	"github.com/mesh-intelligence/provider/pkg/contract"
	"github.com/mesh-intelligence/provider/pkg/types"
)

// Provider is an open provider. It implements types.Provider and
// types.Watcher and must be closed.
type Provider struct {
	*router.Router

	backend *sqldb.Backend
	hub     *notify.Hub
	client  *redis.Client
	stop    context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	err     error
}

var (
	_ types.Provider = (*Provider)(nil)
	_ types.Watcher  = (*Provider)(nil)
)

// Open validates cfg and returns a provider for it. With
// cfg.Notify.RedisAddr set, changes are also published to Redis and
// changes published by other processes reach this provider's watchers.
func Open(ctx context.Context, cfg types.Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	contracts, err := contract.NewAll(cfg.Contracts)
	if err != nil {
		return nil, err
	}

	var backend *sqldb.Backend
	switch cfg.Backend {
	case types.BackendSQLite:
		backend, err = sqlite.Open(ctx, cfg, contracts)
	case types.BackendPostgres:
		backend, err = postgres.Open(ctx, cfg, contracts)
	default:
		err = fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	p := &Provider{backend: backend, hub: notify.NewHub()}
	var notifier types.Notifier = p.hub
	if cfg.Notify.RedisAddr != "" {
		rn, err := p.connectRedis(ctx, cfg.Notify)
		if err != nil {
			backend.Close()
			return nil, err
		}
		notifier = notify.Fanout{p.hub, rn}
	}

	p.Router = router.New(router.NewRegistry(contracts...), backend, notifier, cfg.Authority)
	logger.FromContext(ctx).WithField("authority", cfg.Authority).
		Debugf("provider open with %d contracts on %s", len(contracts), cfg.Backend)
	return p, nil
}

func (p *Provider) connectRedis(ctx context.Context, cfg types.NotifyConfig) (*notify.Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	rn, err := notify.NewRedis(client, cfg.Channel)
	if err != nil {
		client.Close()
		return nil, err
	}

	listenCtx, stop := context.WithCancel(logger.ContextWithEntry(context.Background(), logger.FromContext(ctx)))
	p.client = client
	p.stop = stop
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := rn.Listen(listenCtx, p.hub); err != nil {
			logger.FromContext(listenCtx).WithError(err).Warn("redis listener stopped")
		}
	}()
	return rn, nil
}

// Watch reports changes at, below or above l, including changes made by other
// processes sharing the Redis channel.
func (p *Provider) Watch(l types.Locator) (<-chan types.Locator, func()) {
	return p.hub.Watch(l)
}

// Close stops the Redis listener and closes the backend. It is idempotent.
func (p *Provider) Close() error {
	p.once.Do(func() {
		if p.stop != nil {
			p.stop()
			p.wg.Wait()
			p.client.Close()
		}
		p.err = p.backend.Close()
	})
	return p.err
}
