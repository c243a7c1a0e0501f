package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"

	"kaiginote/cmd/middleware"
	"kaiginote/internal/service"
)

type Routers struct {
	Service service.Service
	Auth    func(c *ginext.Context)
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", r.Service.Register)
	authGroup.POST("/login", r.Service.Login)
	authGroup.POST("/logout", r.Service.Logout)

	users := apiGroup.Group("/users")
	users.Use(r.Auth)
	users.GET("", r.Service.GetUsers)
	users.GET("/me", r.Service.GetMe)
	users.GET("/:id", r.Service.GetUser)
	users.PUT("/:id", r.Service.UpdateUser)

	events := apiGroup.Group("/events")
	events.Use(r.Auth)
	events.GET("", r.Service.ListEvents)
	events.POST("", r.Service.CreateEvent)
	events.GET("/:id", r.Service.GetEvent)
	events.PUT("/:id", r.Service.UpdateEvent)
	events.DELETE("/:id", r.Service.DeleteEvent)
	events.GET("/:id/participants", r.Service.ListParticipants)
	events.POST("/:id/participants", r.Service.AddParticipant)
	events.PUT("/:id/participants/:pid", r.Service.UpdateParticipant)
	events.DELETE("/:id/participants/:pid", r.Service.DeleteParticipant)

	app.GET("/", func(c *ginext.Context) {
		c.JSON(200, gin.H{"message": "Welcome to KaigiNote API"})
	})

	return app
}
