package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/campuschat-server/internal/api/http/handler"
	"github.com/dtroode/campuschat-server/internal/api/http/middleware"
	"github.com/dtroode/campuschat-server/internal/logger"
	"github.com/dtroode/campuschat-server/internal/model"
	"github.com/dtroode/campuschat-server/internal/service"
	"github.com/dtroode/campuschat-server/internal/textfilter"
)

// Services groups the business services served over HTTP.
type Services struct {
	Messaging     *service.Messaging
	Notifications *service.Notifications
	Directory     *service.Directory
	Erasure       *service.Erasure
}

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	services       Services
	tokens         middleware.TokenParser
	filter         *textfilter.Filter
	live           *handler.Live
	health         *handler.Health
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	services Services,
	tokens middleware.TokenParser,
	filter *textfilter.Filter,
	live handler.LiveConfig,
	checks map[string]handler.Pinger,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		tokens:         tokens,
		filter:         filter,
		live:           handler.NewLive(live, filter, contextManager, logger),
		health:         handler.NewHealth(checks),
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the route tree. Everything under /api requires a bearer token.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.services.Directory, r.contextManager, r.logger)

	chat := handler.NewChat(r.services.Messaging, r.services.Directory, r.filter, r.contextManager, r.logger)
	notifications := handler.NewNotifications(r.services.Notifications, r.contextManager, r.logger)
	directory := handler.NewDirectory(r.services.Directory, r.services.Erasure, r.contextManager, r.logger)

	mux := chi.NewRouter()
	mux.Use(chimiddleware.RequestID, chimiddleware.RealIP, logging.Handle, chimiddleware.Recoverer)

	mux.Get("/healthz", r.health.Check)

	mux.Route("/api", func(api chi.Router) {
		api.Use(authenticate.Handle)

		api.Route("/users", func(users chi.Router) {
			users.Get("/", directory.ListPeers)
			users.Get("/me", directory.Me)
			users.Put("/me/allow-chat", directory.SetAllowChat)
			users.Get("/{userID}", directory.Get)
			users.Delete("/{userID}", directory.Erase)
			users.Put("/{userID}/block", directory.Block)
			users.Delete("/{userID}/block", directory.Unblock)
			users.Put("/{userID}/follow", directory.Follow)
			users.Delete("/{userID}/follow", directory.Unfollow)
			users.Put("/{userID}/whitelist", directory.AddToWhitelist)
			users.Delete("/{userID}/whitelist", directory.RemoveFromWhitelist)
		})

		api.Route("/conversations/{peerID}", func(conv chi.Router) {
			conv.Get("/messages", chat.History)
			conv.Post("/messages", chat.Send)
			conv.Get("/verdict", chat.Verdict)
		})

		api.Route("/notifications", func(n chi.Router) {
			n.Get("/", notifications.List)
			n.Post("/read-all", notifications.MarkAllRead)
			n.Post("/{notificationID}/read", notifications.MarkRead)
			n.Delete("/{notificationID}", notifications.Delete)
		})

		api.Route("/live", func(live chi.Router) {
			live.Get("/", r.live.Stream)
			live.Put("/{sessionID}/conversation", r.live.OpenConversation)
			live.Delete("/{sessionID}/conversation", r.live.CloseConversation)
		})
	})

	return mux
}

// Shutdown ends open live streams.
func (r *Router) Shutdown() {
	r.live.Shutdown()
}

// LiveSessions returns the number of open live sessions.
func (r *Router) LiveSessions() int {
	return r.live.Sessions()
}
