package main

import (
	"context"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"canvasServer/backend/config"
	"canvasServer/backend/internal/cache"
	"canvasServer/backend/internal/draw"
	"canvasServer/backend/internal/httpapi/handlers"
	"canvasServer/backend/internal/ws"
)

func initConfig() (*config.Config, error) {
	cfg := &config.Config{}
	v := viper.New()
	v.SetConfigName("canvasConfig")
	v.SetConfigType("yaml")
	// 兼容从项目根目录或 backend 目录启动
	v.AddConfigPath("./backend/config")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	// 部署环境用 PORT 覆盖监听端口
	_ = v.BindEnv("running.port", "PORT")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cfg, err := initConfig()
	if err != nil {
		log.Fatalf("init config failed: %v", err)
	}

	// Redis 在线镜像：未配置地址时用空实现，单机也能跑
	var presence cache.PresenceCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		presence = cache.NewRedisPresence(rdb)
	}

	// Kafka 笔画事件旁路：同样可选
	var events *draw.Dispatcher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaCfg := sarama.NewConfig()
		// SyncProducer 必须开启 Return.Successes
		kafkaCfg.Producer.Return.Successes = true
		kafkaCfg.Producer.RequiredAcks = sarama.WaitForLocal
		producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, kafkaCfg)
		if err != nil {
			log.Fatalf("Failed to connect kafka: %v", err)
		}
		defer producer.Close()

		events = draw.NewDispatcher(producer, cfg.Kafka.Topic, draw.NewSemaphore(), draw.DispatcherOptions{
			QueueSize:   10_000,
			Workers:     4,
			MaxRetry:    3,
			BaseBackoff: 50 * time.Millisecond,
			MaxBackoff:  1 * time.Second,
		})
	}

	roomID := cfg.Room.Default
	if roomID == "" {
		roomID = "default"
	}

	hub := ws.NewHub(presence)
	store := draw.NewStore()
	manager := ws.NewManager(hub, store, roomID, events)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		// 允许任意来源（包含 file:// 场景的 Origin: null）
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/ws", manager.WebSocketConnect)
	r.GET("/api/config", handlers.SocketConfig(cfg.Client.SocketURL))
	r.GET("/healthz", handlers.Healthz)

	// 静态客户端资源
	if cfg.Client.Dir != "" {
		r.Static("/static", cfg.Client.Dir)
		r.StaticFile("/", filepath.Join(cfg.Client.Dir, "index.html"))
	}

	port := cfg.Running.Port
	if port == 0 {
		port = 3000
	}
	log.Printf("canvas server listening on :%d (room=%s)", port, roomID)
	_ = r.Run(":" + strconv.Itoa(port))
}
