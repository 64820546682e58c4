package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-platform/internal/auth"
	"chat-platform/internal/config"
	"chat-platform/internal/db"
	"chat-platform/internal/handlers"
	"chat-platform/internal/matrix"
	"chat-platform/internal/middleware"
	"chat-platform/internal/observability"
	"chat-platform/internal/repositories"
	"chat-platform/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing := observability.InitTracing(ctx, "chatd", cfg.OTLPEndpoint)
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := observability.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	observability.SetPublisher(publisher)
	defer publisher.Close()

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	tokenRepo := repositories.NewTokenRepo(database)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	matrixClient := matrix.NewClient(cfg.MatrixBaseURL, cfg.MatrixAdminToken)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, tokens, tokenRepo)
	roomHandler := handlers.NewRoomHandler(roomRepo, matrixClient)
	messageHandler := handlers.NewMessageHandler(messageRepo)

	chatWS := ws.NewChatWebSocketHandler(hub, roomRepo, messageRepo, tokens, userRepo)
	notificationWS := ws.NewNotificationWebSocketHandler(hub, tokens, userRepo)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("chatd"))
	router.Use(observability.HTTPMetricsMiddleware("chatd"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/token", authHandler.ObtainTokenPair)
	api.POST("/token/refresh", authHandler.RefreshToken)
	api.POST("/token/blacklist", authHandler.BlacklistToken)

	authed := api.Group("", middleware.RequireAuth(tokens))
	authed.GET("/profile", authHandler.GetProfile)
	authed.PUT("/profile", authHandler.UpdateProfile)
	authed.GET("/friends", authHandler.ListFriends)
	authed.POST("/friends", authHandler.AddFriend)

	authed.GET("/rooms", roomHandler.ListRooms)
	authed.POST("/rooms", roomHandler.CreateRoom)
	authed.DELETE("/rooms/:id", roomHandler.DeleteRoom)
	authed.GET("/rooms/public", roomHandler.ListPublicRooms)
	authed.POST("/rooms/:id/invite", roomHandler.InviteToRoom)

	authed.GET("/messages", messageHandler.ListMessages)
	authed.POST("/messages/:id/react", messageHandler.React)

	router.GET("/ws/chat/:room_name", chatWS.Handle)
	router.GET("/ws/notifications", notificationWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
