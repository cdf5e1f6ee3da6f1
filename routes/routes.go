package routes

import (
	"net/http"
	"slices"

	"imposter/handlers"
	"imposter/middleware"
	"imposter/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// NewUpgrader accepts same-origin requests and the configured browser origins.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
}

func SetupRoutes(
	router *gin.Engine,
	hub *services.Hub,
	upgrader websocket.Upgrader,
	roomHandler *handlers.RoomHandler,
	adminHandler *handlers.AdminHandler,
	adminService *services.AdminService,
) {
	api := router.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("/:code", roomHandler.GetRoom)
			rooms.GET("/:code/qr", roomHandler.GetRoomQR)
		}

		api.GET("/words/categories", roomHandler.GetCategories)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("/")
			protected.Use(middleware.AuthMiddleware(adminService))
			{
				protected.GET("/rooms", adminHandler.ListRooms)
				protected.GET("/rooms/:code/mirror", adminHandler.GetMirror)
				protected.GET("/games", adminHandler.ListGames)
			}
		}
	}

	// One socket per player; every game intent travels over it.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("WebSocket upgrade failed")
			return
		}
		hub.RegisterClient(conn)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
