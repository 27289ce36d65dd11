// Package main запускает HTTP-сервер банковского бэк-офиса.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bankoffice-system/internal/config"
	"github.com/mmeshcher/bankoffice-system/internal/handler"
	"github.com/mmeshcher/bankoffice-system/internal/middleware"
	"github.com/mmeshcher/bankoffice-system/internal/model"
	"github.com/mmeshcher/bankoffice-system/internal/service"
	"github.com/mmeshcher/bankoffice-system/internal/session"
	"github.com/mmeshcher/bankoffice-system/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store, err := storage.NewFileStore(cfg.DataDir, logger)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}

	registry := session.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)

	svc := service.NewService(store, registry)
	defer svc.Close()

	if err := bootstrapAdministrator(context.Background(), store, sugar); err != nil {
		sugar.Fatalw("bootstrap error", "error", err.Error())
	}

	authMiddleware := middleware.NewAuthMiddleware(svc)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting bankoffice server", "addr", cfg.RunAddress, "dataDir", cfg.DataDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

// bootstrapAdministrator заводит администратора по умолчанию, если набор
// пользователей пуст: иначе в свежей установке некому входить в систему.
// Сгенерированный пароль выводится в лог один раз.
func bootstrapAdministrator(ctx context.Context, store *storage.FileStore, sugar *zap.SugaredLogger) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	password := uuid.NewString()
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		FullName:     "Default Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdministrator,
		Status:       model.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := store.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("create default administrator: %w", err)
	}

	sugar.Infow("default administrator created", "username", admin.Username, "password", password)
	return nil
}
