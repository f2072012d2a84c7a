package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"s3drive/internal/auth"
	"s3drive/internal/config"
	"s3drive/internal/handler"
	"s3drive/internal/metrics"
	"s3drive/internal/objectstore"
	"s3drive/internal/repository"
	"s3drive/internal/service"
	"s3drive/internal/service/upload"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// healthCheckInterval - как часто gRPC health сверяется с доступностью хранилища
const healthCheckInterval = 30 * time.Second

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаемся к базе данных
	db, err := repository.Connect(appConfig.Database.GetDSN(), 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(appConfig.Database.GetURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Инициализация объектного хранилища
	storageConfig, err := objectstore.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load storage config: %v", err)
	}
	store, err := objectstore.New(ctx, storageConfig)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}
	log.Printf("Using %s storage, bucket %q", storageConfig.Driver, storageConfig.Bucket)

	// Проверка токенов
	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}
	verifier, err := auth.NewVerifier(ctx, authConfig)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}

	broker, err := upload.NewBroker(store, upload.Policy{
		MaxSize:            appConfig.Upload.MaxSize,
		LargeFileThreshold: appConfig.Upload.LargeFileThreshold,
	})
	if err != nil {
		log.Fatalf("Invalid upload policy: %v", err)
	}

	// Инициализация репозиториев
	fileRepo := repository.NewFileRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	quotaRepo := repository.NewStorageQuotaRepository(db)

	// Инициализация сервисов
	permissionService := service.NewPermissionService(fileRepo, permissionRepo)
	folderService := service.NewFolderService(folderRepo, fileRepo)
	quotaService := service.NewStorageQuotaService(quotaRepo)
	fileService := service.NewFileService(
		broker,
		service.NewRecorder(fileRepo),
		fileRepo,
		folderService,
		permissionService,
		quotaService,
		store,
		service.NewDownloadURLCache(appConfig.Cache.DownloadURLSize, appConfig.Cache.DownloadURLTTL),
		appConfig.Upload.KeyPrefix,
	)
	orphanService := service.NewOrphanService(store, fileRepo)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Printf("[Health] storage check failed: %v", err)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// memory-хранилище само обслуживает свои подписанные ссылки
	if mem, ok := store.(*objectstore.MemoryStore); ok {
		r.Mount("/objects", http.StripPrefix("/objects", mem))
	}

	// HTTP маршруты
	handler.Routes{
		Files:      handler.NewFileHandler(fileService, permissionService, appConfig.Upload.MaxSize),
		Folders:    handler.NewFolderHandler(folderService),
		Quota:      handler.NewStorageQuotaHandler(quotaService),
		Admin:      handler.NewAdminHandler(orphanService, appConfig.Upload.KeyPrefix+"/"),
		Verifier:   verifier,
		AdminUsers: appConfig.Server.AdminUsers,
	}.Mount(r)

	// gRPC сервер отдает состояние сервиса для балансировщика
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", appConfig.Server.GRPCPort))
		if err != nil {
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		log.Printf("Starting gRPC server on port %s", appConfig.Server.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Периодически проверяем хранилище и обновляем статус gRPC health
	go watchStorage(ctx, store, healthServer)

	// Ожидаем сигнал завершения
	<-ctx.Done()
	log.Println("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthServer.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}
	grpcServer.GracefulStop()

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}

func watchStorage(ctx context.Context, store objectstore.Store, hs *health.Server) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := store.Ping(pingCtx); err != nil {
			log.Printf("[Health] storage unavailable: %v", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
	}

	check()
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
