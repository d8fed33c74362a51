package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/interlingo/backend/internal/api/handlers"
	"github.com/interlingo/backend/internal/api/middleware"
)

type Deps struct {
	Room       *handlers.RoomHandler
	Call       *handlers.CallHandler
	Transcript *handlers.TranscriptHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public: anyone with a room code can inspect and join it; call
	// summaries are posted by clients at teardown, guests included.
	r.GET("/rooms/:code", d.Room.Get)
	r.POST("/rooms/:code/join", middleware.OptionalJWTAuth(), d.Room.Join)
	r.POST("/calls", d.Call.Save)
	r.GET("/sessions/:name/transcript", d.Transcript.ListBySession)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/rooms", d.Room.Create)
	auth.GET("/rooms", d.Room.List)
	auth.GET("/calls", d.Call.List)
}
