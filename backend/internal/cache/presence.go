package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// PresenceCache 在线状态镜像。内存注册表才是权威数据源，
// 这里只是把在线成员和光标落到外部存储，方便监控或跨实例查询
type PresenceCache interface {
	AddMember(ctx context.Context, roomID string, userID string, color string, ttl time.Duration) error
	RemoveMember(ctx context.Context, roomID string, userID string) error
	GetAliveMembers(ctx context.Context, roomID string) ([]PresenceMember, error)
	SetCursor(ctx context.Context, roomID string, userID string, jsonData []byte, ttl time.Duration) error
	GetCursor(ctx context.Context, roomID string, userID string) ([]byte, error)
}

type PresenceMember struct {
	UserID string
	Color  string
}

// 具体实现：基于 redis 的 PresenceCache
type redisPresence struct {
	rdb *redis.Client
}

func NewRedisPresence(rdb *redis.Client) PresenceCache {
	return &redisPresence{rdb: rdb}
}

func (p *redisPresence) AddMember(ctx context.Context, roomID string, userID string, color string, ttl time.Duration) error {
	pipe := p.rdb.Pipeline()
	// 房间成员集合
	pipe.SAdd(ctx, roomKey(roomID), userID)
	// 成员心跳键
	pipe.Set(ctx, memberKey(roomID, userID), "1", ttl)
	// 房间配色表(哈希)
	pipe.HSet(ctx, colorsKey(roomID), userID, color)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *redisPresence) RemoveMember(ctx context.Context, roomID string, userID string) error {
	pipe := p.rdb.Pipeline()
	pipe.SRem(ctx, roomKey(roomID), userID)
	pipe.Del(ctx, memberKey(roomID, userID))
	pipe.HDel(ctx, colorsKey(roomID), userID)
	pipe.Del(ctx, cursorKey(roomID, userID))
	_, err := pipe.Exec(ctx)
	return err
}

func (p *redisPresence) GetAliveMembers(ctx context.Context, roomID string) ([]PresenceMember, error) {
	// step1: 取集合成员
	userIDs, err := p.rdb.SMembers(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	// step2: 检查心跳键，存在即存活
	existscmds := make([]*redis.IntCmd, 0, len(userIDs))
	pipe := p.rdb.Pipeline()
	for _, userID := range userIDs {
		existscmds = append(existscmds, pipe.Exists(ctx, memberKey(roomID, userID)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	aliveIDs := make([]string, 0, len(userIDs))
	for i, cmd := range existscmds {
		if cmd.Val() == 1 {
			aliveIDs = append(aliveIDs, userIDs[i])
		}
	}
	if len(aliveIDs) == 0 {
		return nil, nil
	}

	// step3: 批量取配色
	colors, err := p.rdb.HMGet(ctx, colorsKey(roomID), aliveIDs...).Result()
	if err != nil {
		return nil, err
	}
	members := make([]PresenceMember, 0, len(aliveIDs))
	for i, v := range colors {
		color := ""
		if v != nil {
			color, _ = v.(string)
		}
		members = append(members, PresenceMember{UserID: aliveIDs[i], Color: color})
	}
	return members, nil
}

func (p *redisPresence) SetCursor(ctx context.Context, roomID string, userID string, jsonData []byte, ttl time.Duration) error {
	return p.rdb.Set(ctx, cursorKey(roomID, userID), jsonData, ttl).Err()
}

func (p *redisPresence) GetCursor(ctx context.Context, roomID string, userID string) ([]byte, error) {
	return p.rdb.Get(ctx, cursorKey(roomID, userID)).Bytes()
}

// Noop 未配置 Redis 时的空实现，单机部署不需要在线镜像
type Noop struct{}

func (Noop) AddMember(ctx context.Context, roomID string, userID string, color string, ttl time.Duration) error {
	return nil
}

func (Noop) RemoveMember(ctx context.Context, roomID string, userID string) error { return nil }

func (Noop) GetAliveMembers(ctx context.Context, roomID string) ([]PresenceMember, error) {
	return nil, nil
}

func (Noop) SetCursor(ctx context.Context, roomID string, userID string, jsonData []byte, ttl time.Duration) error {
	return nil
}

func (Noop) GetCursor(ctx context.Context, roomID string, userID string) ([]byte, error) {
	return nil, nil
}
