package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// GuildMemberKey returns the cache key for a user's membership in a guild
func (r *CacheKeyStruct) GuildMemberKey(guildID, userID string) string {
	return fmt.Sprintf("guild:%s:member:%s", guildID, userID)
}

// SweepLeaseKey returns the lock key held by the process running the closing sweep
func (r *CacheKeyStruct) SweepLeaseKey() string {
	return "questions:sweep_lease"
}

// EventsChannel returns the pub/sub channel carrying question lifecycle events
func (r *CacheKeyStruct) EventsChannel() string {
	return "questions:events"
}

// RevokedTokenKey marks a revoked ops token by its jti
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("ops:revoked:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
