package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	chatapp "social_network_service/internal/chat/app"
	chatrepo "social_network_service/internal/chat/repository"
	chatrouter "social_network_service/internal/chat/router"
	memberrepo "social_network_service/internal/member/repository"
	notifapp "social_network_service/internal/notification/app"
	notifrepo "social_network_service/internal/notification/repository"
	notifrouter "social_network_service/internal/notification/router"
	"social_network_service/pkg/config"
	"social_network_service/pkg/database"
	"social_network_service/pkg/logger"
	testtool "social_network_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// @title Social Network Chat Service API
// @version 1.0
// @description Realtime chat, presence and notification API
// @BasePath /
func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	// Mongo holds the rooms and messages
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// Postgres holds identity, device tokens and the notification feed
	pgConnStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)
	pgPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgConnStr,
		RetryCount:    cfg.Postgres.RetryCount,
		RetryInterval: time.Duration(cfg.Postgres.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries", zap.Error(err))
	}
	defer pgPool.Close()

	// Redis caches active device tokens
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	tokenCache := database.NewRedisRepository[[]string](redisClient)

	// repositories
	roomRepo := chatrepo.NewMongoRoomRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	userRepo := memberrepo.NewUserRepository(pgPool)
	tokenRepo := notifrepo.NewDeviceTokenRepository(pgPool, tokenCache,
		time.Duration(cfg.Redis.TokenTTL)*time.Second)
	notifRepo := notifrepo.NewNotificationRepository(pgPool)
	fcm := notifrepo.NewFCMClient(cfg.FCM)

	// use cases
	notifUC := notifapp.NewNotificationUseCase(tokenRepo, notifRepo, fcm)
	presence := chatapp.NewPresenceRegistry()
	chatUC := chatapp.NewChatUseCase(roomRepo, msgRepo, userRepo, presence, notifUC)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", connectCheck)
	r.Post("/debug", debugLogFlag)

	chatrouter.RegisterRoutes(r, chatapp.NewChatHandler(chatUC), chatapp.NewChatWebsocketHandler(chatUC))
	notifrouter.RegisterRoutes(r, notifapp.NewNotificationHandler(notifUC))

	testtool.StartPprof()

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}

// connectCheck check api connect start
// @Summary Check service status
// @Tags Shared
// @Success 200 {string} string "chat service start!"
// @Router / [get]
func connectCheck(c *fiber.Ctx) error {
	return c.SendString("chat service start!")
}

// debugLogFlag toggle debug log flag
// @Summary Toggle Debug Log Flag
// @Tags Shared
// @Param status query bool true "Debug status"
// @Success 200 {string} string "debug mode updated"
// @Failure 400 {string} string "Invalid status value"
// @Router /debug [post]
func debugLogFlag(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Context().QueryArgs().QueryString()))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	statusStr := query.Get("status")
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
