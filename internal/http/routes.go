package http

import (
	"time"

	"bussen_backend/internal/config"
	"bussen_backend/internal/http/handlers"
	"bussen_backend/internal/http/middleware"
	"bussen_backend/internal/repository"
	"bussen_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the whole HTTP surface: health trio, auth, room
// management and the websocket upgrade. It returns the hub so callers can
// reach rooms from outside HTTP.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) *ws.Hub {
	stateRepo := repository.NewGameStateRepository(db)
	recordRepo := repository.NewGameRecordRepository(db)

	hub := ws.NewHub(stateRepo, recordRepo)
	hub.StartCleanup()

	h := handlers.NewHandler(db, hub)
	healthHandler := handlers.NewHealthHandler(db, hub, version)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	authRateWindow := time.Duration(cfg.AuthRateWindow) * time.Second
	roomRateWindow := time.Duration(cfg.RoomRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))

	api.POST("/auth", middleware.RedisRateLimit(cfg.AuthRateLimit, authRateWindow), h.Auth)

	roomRL := middleware.PlayerRateLimit(cfg.RoomRateLimit, roomRateWindow)

	api.GET("/rooms", middleware.JWT(), h.ListRooms)
	api.POST("/rooms", middleware.JWT(), roomRL, h.CreateRoom)
	api.POST("/rooms/join", middleware.JWT(), roomRL, h.JoinRoom)
	api.POST("/rooms/leave", middleware.JWT(), roomRL, h.LeaveRoom)
	api.GET("/rooms/my", middleware.JWT(), h.MyRoom)

	api.GET("/me/games", middleware.JWT(), h.MyGames)

	// WebSocket for game play; per-IP in-memory limiter keeps upgrade
	// floods out without needing redis on this path
	r.GET("/ws", middleware.SimpleRateLimit(30, time.Minute), ws.HandleWS(hub))

	return hub
}
