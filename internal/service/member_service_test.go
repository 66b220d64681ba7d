package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestCachedMemberChecker_ZeroTTLBypassesCache(t *testing.T) {
	next := &fakeMembers{members: map[string]bool{"g1/u1": true}}
	c := NewCachedMemberChecker(next, nil, 0, zerolog.Nop())

	ok, err := c.IsGuildMember(context.Background(), "g1", "u1")
	if err != nil || !ok {
		t.Fatalf("expected member, got %v, %v", ok, err)
	}
	if next.calls != 1 {
		t.Errorf("expected direct lookup, got %d calls", next.calls)
	}
}

func TestCachedMemberChecker_UnreachableRedisFallsThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	next := &fakeMembers{members: map[string]bool{"g1/u1": true}}
	c := NewCachedMemberChecker(next, rdb, time.Minute, zerolog.Nop())

	ok, err := c.IsGuildMember(context.Background(), "g1", "u1")
	if err != nil || !ok {
		t.Fatalf("expected member despite cache outage, got %v, %v", ok, err)
	}

	ok, err = c.IsGuildMember(context.Background(), "g1", "u9")
	if err != nil || ok {
		t.Fatalf("expected non-member, got %v, %v", ok, err)
	}

	next.err = errors.New("discord unavailable")
	if _, err := c.IsGuildMember(context.Background(), "g1", "u1"); err == nil {
		t.Error("expected platform error to propagate")
	}
}
