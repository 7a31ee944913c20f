package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"taskhub/internal/membership/domain"
)

const roleKeyPrefix = "taskhub:role:"

// DefaultRoleTTL bounds how long a cached role is served.
const DefaultRoleTTL = 5 * time.Minute

// RedisRoleCache is a RoleCache shared by every server instance.
type RedisRoleCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisRoleCache returns a cache storing roles in client for ttl (DefaultRoleTTL when ttl <= 0).
func NewRedisRoleCache(client redis.Cmdable, ttl time.Duration) *RedisRoleCache {
	if ttl <= 0 {
		ttl = DefaultRoleTTL
	}
	return &RedisRoleCache{client: client, ttl: ttl}
}

func roleKey(workspaceID, userID string) string {
	return roleKeyPrefix + workspaceID + ":" + userID
}

// Get returns the cached role. A miss, or a value that is not a membership role, reports false.
func (c *RedisRoleCache) Get(ctx context.Context, workspaceID, userID string) (domain.Role, bool, error) {
	v, err := c.client.Get(ctx, roleKey(workspaceID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.RoleNone, false, nil
	}
	if err != nil {
		return domain.RoleNone, false, err
	}
	role, ok := domain.ParseRole(v)
	if !ok {
		return domain.RoleNone, false, nil
	}
	return role, true, nil
}

// Set caches role. RoleNone is ignored.
func (c *RedisRoleCache) Set(ctx context.Context, workspaceID, userID string, role domain.Role) error {
	if !role.IsMember() {
		return nil
	}
	return c.client.Set(ctx, roleKey(workspaceID, userID), string(role), c.ttl).Err()
}
