package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/adapters/stream"
	"github.com/dkeye/Pointing/internal/config"
)

// ClientTokenMiddleware tags every browser with a stable token used for
// request-scoped logging.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *Controller, ws *stream.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PointingSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.POST("/rooms", ctl.CreateRoom)
	api.GET("/rooms", ctl.ListRooms)
	api.GET("/rooms/:room_id", ctl.GetRoom)
	api.DELETE("/rooms/:room_id", ctl.DeleteRoom)
	api.POST("/rooms/:room_id/join", ctl.Join)
	api.POST("/rooms/:room_id/leave/:participant_id", ctl.Leave)
	api.POST("/rooms/:room_id/vote", ctl.Vote)
	api.POST("/rooms/:room_id/reveal", ctl.Reveal)
	api.POST("/rooms/:room_id/reset", ctl.Reset)

	api.GET("/ws/rooms/:room_id/participants/:participant_id", func(c *gin.Context) {
		ws.HandleSubscribe(ctx, c)
	})

	return r
}
