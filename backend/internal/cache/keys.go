package cache

import "fmt"

// 键语义：
// - roomKey(roomID):          房间成员集合（Set<userId>）
// - memberKey(roomID,userID): 成员心跳键（String，占位"1"，带 TTL）
// - colorsKey(roomID):        房间内 userId→color 映射（Hash）
// - cursorKey(roomID,userID): 成员光标 JSON（String，带 TTL）

const (
	keyRoomFmt   = "canvas:room:%s"        // Set<userId>
	keyMemberFmt = "canvas:member:%s:%s"   // String "1" with TTL
	keyColorsFmt = "canvas:room:colors:%s" // Hash<userId -> color>
	keyCursorFmt = "canvas:cursor:%s:%s"   // String JSON with TTL
)

func roomKey(roomID string) string                  { return fmt.Sprintf(keyRoomFmt, roomID) }
func memberKey(roomID string, userID string) string { return fmt.Sprintf(keyMemberFmt, roomID, userID) }
func colorsKey(roomID string) string                { return fmt.Sprintf(keyColorsFmt, roomID) }
func cursorKey(roomID string, userID string) string { return fmt.Sprintf(keyCursorFmt, roomID, userID) }
