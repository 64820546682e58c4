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
	"chat-platform/internal/middleware"
	"chat-platform/internal/observability"
	"chat-platform/internal/repositories"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	shutdownTracing := observability.InitTracing(ctx, "articled", cfg.OTLPEndpoint)
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

	userRepo := repositories.NewUserRepo(database)
	articleRepo := repositories.NewArticleRepo(database)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	articleHandler := handlers.NewArticleHandler(articleRepo, userRepo, tokens)
	userHandler := handlers.NewUserHandler(userRepo)

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware("articled"))
	router.Use(observability.HTTPMetricsMiddleware("articled"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", articleHandler.Login)

	authed := router.Group("", middleware.ArticleAuth(tokens, userRepo))
	authed.GET("/articles", articleHandler.ListArticles)
	authed.GET("/articles/:id", articleHandler.GetArticle)
	authed.POST("/articles", articleHandler.CreateArticle)
	authed.PUT("/articles/:id", articleHandler.UpdateArticle)
	authed.DELETE("/articles/:id", articleHandler.DeleteArticle)

	authed.GET("/users", userHandler.ListUsers)
	authed.GET("/users/:id", userHandler.GetUser)
	authed.POST("/users", userHandler.CreateUser)
	authed.PUT("/users/:id", userHandler.UpdateUser)
	authed.DELETE("/users/:id", userHandler.DeleteUser)

	if err := router.Run(":" + cfg.ArticledPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
