package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/config"
)

// CachedMemberChecker remembers positive membership lookups in Redis for ttl.
// Negative answers are never cached so a user who just joined can respond at once.
type CachedMemberChecker struct {
	next MemberChecker
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

func NewCachedMemberChecker(next MemberChecker, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedMemberChecker {
	return &CachedMemberChecker{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "member_cache").Logger(),
	}
}

func (c *CachedMemberChecker) IsGuildMember(ctx context.Context, guildID, userID string) (bool, error) {
	if c.ttl <= 0 {
		return c.next.IsGuildMember(ctx, guildID, userID)
	}

	key := config.CacheKey.GuildMemberKey(guildID, userID)
	err := c.rdb.Get(ctx, key).Err()
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, redis.Nil):
		// Cache trouble must not block responses; fall through to the platform.
		c.log.Warn().Err(err).Msg("member cache read failed")
	}

	member, err := c.next.IsGuildMember(ctx, guildID, userID)
	if err != nil || !member {
		return member, err
	}

	if err := c.rdb.Set(ctx, key, "1", c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("member cache write failed")
	}
	return true, nil
}
