package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"safe-return-server/config"
	_ "safe-return-server/docs"
	"safe-return-server/internal/handler"
	"safe-return-server/internal/model"
	"safe-return-server/internal/repository"
	"safe-return-server/internal/security"
	"safe-return-server/internal/service"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Safe-return-server
// @version 1.0
// @description Аутентификация с ротацией refresh токенов

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Ошибка миграций: %v", err)
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка настройки JWT: %v", err)
	}

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 service: %v", err)
	}

	refreshTokenRepository := repository.NewRefreshTokenRepository(db)
	memberRepository := repository.NewMemberRepository(db)
	adminRepository := repository.NewAdminRepository(db)
	cacheRepository := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.ProfileCache)*time.Second)

	presignTTL := time.Duration(cfg.TTL.PresignedURL) * time.Second
	passwords := security.BcryptVerifier{}
	memberVerifier := service.NewCredentialVerifier(memberRepository, passwords)
	adminVerifier := service.NewCredentialVerifier(adminRepository, passwords)

	authService := service.NewAuthenticationService(refreshTokenRepository, jwtService)
	memberService := service.NewMemberService(memberRepository, cacheRepository, s3Service, presignTTL)

	compactor, err := service.NewTokenCompactor(refreshTokenRepository, jwtService, &cfg.Compaction)
	if err != nil {
		log.Fatalf("Ошибка настройки очистки токенов: %v", err)
	}
	go compactor.Run(ctx)

	authenticationHandler := handler.NewAuthenticationHandler(authService)
	memberHandler := handler.NewMemberHandler(memberService, presignTTL)

	srv, router := config.SetupServer(cfg.ServerAddr)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authenticationHandler.Login(memberVerifier))
		r.Post("/admin/login", authenticationHandler.Login(adminVerifier))
		r.Post("/reissue", authenticationHandler.Reissue)
		r.Post("/logout", authenticationHandler.Logout)
	})

	router.Group(func(r chi.Router) {
		r.Use(security.AccessGuard(jwtService))

		r.Post("/members", memberHandler.SignUp)

		r.Route("/members/me", func(r chi.Router) {
			r.Use(security.RequireRole(model.RoleUser))
			r.Get("/", memberHandler.GetMe)
			r.Get("/profile-image", memberHandler.ProfileImageURL)
			r.Post("/profile-image", memberHandler.ProfileImageUploadURL)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(security.RequireRole(model.RoleAdmin))
			r.Get("/members", memberHandler.ListMembers)
		})
	})

	runServer(ctx, srv)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Printf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
