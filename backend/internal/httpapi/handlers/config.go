package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SocketConfig 返回实时服务的 WebSocket 地址。
// 静态资源和实时服务分开部署时，客户端先打这里拿地址再建连；
// 同机部署时返回空串，客户端直接连当前 host
func SocketConfig(socketURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{"socketUrl": socketURL})
	}
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
