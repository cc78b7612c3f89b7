package draw

import (
	"crypto/rand"
	"fmt"
)

// UserColors 固定调色板，按顺序分配给进房间的用户
var UserColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#34495e", "#e91e63", "#00bcd4",
}

// NextColor 返回调色板里第一个未被占用的颜色。
// 调色板用尽时退回随机颜色，随机色与在用色撞车是允许的，
// 所以颜色唯一只在 在线人数 ≤ 调色板大小 时成立
func NextColor(used map[string]bool) string {
	for _, c := range UserColors {
		if !used[c] {
			return c
		}
	}
	return randomColor()
}

func randomColor() string {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return UserColors[0]
	}
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}
