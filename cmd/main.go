package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	httpctx "github.com/dtroode/campuschat-server/internal/api/http/context"
	"github.com/dtroode/campuschat-server/internal/api/http/handler"
	"github.com/dtroode/campuschat-server/internal/api/http/router"
	httpServer "github.com/dtroode/campuschat-server/internal/api/http/server"
	"github.com/dtroode/campuschat-server/internal/config"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/server"
	"github.com/dtroode/campuschat-server/internal/service"
	"github.com/dtroode/campuschat-server/internal/textfilter"
	"github.com/dtroode/campuschat-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	tokenFor := flag.String("token", "", "print an access token for the given user id and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	if *tokenFor != "" {
		printToken(tokenManager, *tokenFor)
		return
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Backend, "error", err)
	}
	defer b.close(logger)

	auditor := service.NewAuditor(b.audit, logger)
	notificationService := service.NewNotifications(b.notifications, b.feed, auditor, logger)
	messagingService := service.NewMessaging(b.messages, b.users, notificationService, b.storage, b.feed, auditor, logger,
		service.MessagingConfig{
			InlineBodyLimit: cfg.Chat.InlineBodyLimit,
			PreviewLength:   cfg.Chat.PreviewLength,
		})
	directoryService := service.NewDirectory(b.users, notificationService, b.feed, auditor, logger)
	erasureService := service.NewErasure(b.users, b.erasure, b.storage, b.feed, auditor, logger)

	seedUsers(ctx, directoryService, cfg.SeedUsers, logger)

	r := router.New(
		router.Services{
			Messaging:     messagingService,
			Notifications: notificationService,
			Directory:     directoryService,
			Erasure:       erasureService,
		},
		tokenManager,
		textfilter.New(cfg.Chat.BadWords),
		handler.LiveConfig{
			Feed:          b.feed,
			Directory:     directoryService,
			Conversations: messagingService,
			Inbox:         notificationService,
			ToastTTL:      cfg.Alert.ToastTTL,
			BannerTTL:     cfg.Alert.BannerTTL,
		},
		b.checks,
		httpctx.NewManager(),
		logger,
	)

	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS, "backend", cfg.Backend)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	r.Shutdown()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func printToken(tokens *token.JWT, rawID string) {
	userID, err := uuid.Parse(rawID)
	if err != nil {
		log.Fatalf("invalid user id %q: %v", rawID, err)
	}
	signed, err := tokens.GenerateAccessToken(userID)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(signed)
}

// seedUsers creates the configured directory entries. Ids derive from the
// display name so restarts find the same entries.
func seedUsers(ctx context.Context, directory *service.Directory, entries []string, logger *logger.Logger) {
	for _, entry := range entries {
		name, role, _ := strings.Cut(strings.TrimSpace(entry), ":")
		if name == "" {
			continue
		}
		r := model.RoleUser
		if role == string(model.RoleAdmin) {
			r = model.RoleAdmin
		}

		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("campuschat:user:"+name))
		user, err := directory.Ensure(ctx, model.NewUser(id, name, r))
		if err != nil {
			logger.Error("failed to seed user", "name", name, "error", err)
			continue
		}
		logger.Info("Seeded user", "name", user.DisplayName, "id", user.ID, "role", user.Role)
	}
}
