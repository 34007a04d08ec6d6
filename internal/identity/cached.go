package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "handover/pkg/domain"
)

var roleCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "handover_role_cache_lookups_total",
	Help: "Role cache lookups by result (hit, miss, error)",
}, []string{"result"})

const roleKeyPrefix = "role:"

// CachedProvider is a read-through Redis cache in front of another Provider.
// Cache failures fall through to the upstream provider.
type CachedProvider struct {
	upstream Provider
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

type CachedOption func(*CachedProvider)

func WithTTL(ttl time.Duration) CachedOption {
	return func(p *CachedProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) CachedOption {
	return func(p *CachedProvider) {
		p.logger = logger
	}
}

func NewCachedProvider(upstream Provider, client *redis.Client, opts ...CachedOption) *CachedProvider {
	p := &CachedProvider{upstream: upstream, client: client, ttl: 5 * time.Minute}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *CachedProvider) RoleOf(ctx context.Context, actorID id.UserID) (Role, error) {
	key := roleKeyPrefix + actorID.String()
	cached, err := p.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		roleCacheLookups.WithLabelValues("hit").Inc()
		return ParseRole(cached), nil
	case errors.Is(err, redis.Nil):
		roleCacheLookups.WithLabelValues("miss").Inc()
	default:
		roleCacheLookups.WithLabelValues("error").Inc()
		p.warn(ctx, "role cache read failed", actorID, err)
	}

	role, err := p.upstream.RoleOf(ctx, actorID)
	if err != nil {
		return RoleNone, err
	}
	if err := p.client.Set(ctx, key, string(role), p.ttl).Err(); err != nil {
		p.warn(ctx, "role cache write failed", actorID, err)
	}
	return role, nil
}

// Invalidate drops the cached role for actorID.
func (p *CachedProvider) Invalidate(ctx context.Context, actorID id.UserID) error {
	return p.client.Del(ctx, roleKeyPrefix+actorID.String()).Err()
}

func (p *CachedProvider) warn(ctx context.Context, msg string, actorID id.UserID, err error) {
	if p.logger == nil {
		return
	}
	p.logger.WarnContext(ctx, msg, "actor_id", actorID.String(), "error", err)
}
