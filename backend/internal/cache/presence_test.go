package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func TestRedisPresence_RoundTrip(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	// 若 Redis 未启动则跳过
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skip: redis not available: %v", err)
	}
	defer rdb.FlushAll(context.Background()).Err()

	ctx := context.Background()
	p := NewRedisPresence(rdb)

	if err := p.AddMember(ctx, "room1", "u1", "#e74c3c", 10*time.Second); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	members, err := p.GetAliveMembers(ctx, "room1")
	if err != nil {
		t.Fatalf("GetAliveMembers error: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "u1" || members[0].Color != "#e74c3c" {
		t.Fatalf("members = %+v", members)
	}

	cursor := []byte(`{"type":"cursor","userId":"u1","x":0.5,"y":0.5}`)
	if err := p.SetCursor(ctx, "room1", "u1", cursor, 10*time.Second); err != nil {
		t.Fatalf("SetCursor error: %v", err)
	}
	got, err := p.GetCursor(ctx, "room1", "u1")
	if err != nil {
		t.Fatalf("GetCursor error: %v", err)
	}
	if !bytes.Equal(got, cursor) {
		t.Fatalf("cursor = %s, want %s", got, cursor)
	}

	// 注销后成员和光标一起消失
	if err := p.RemoveMember(ctx, "room1", "u1"); err != nil {
		t.Fatalf("RemoveMember error: %v", err)
	}
	members, err = p.GetAliveMembers(ctx, "room1")
	if err != nil {
		t.Fatalf("GetAliveMembers error: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("members after remove = %+v", members)
	}
	if _, err := p.GetCursor(ctx, "room1", "u1"); err == nil {
		t.Fatalf("cursor should be gone after RemoveMember")
	}
}
