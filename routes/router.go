package routes

import (
	"fmt"
	"net/http"

	"rephrasecoach/config"
	"rephrasecoach/internal/flow"
	"rephrasecoach/internal/logger"
	"rephrasecoach/middlewares"
	"rephrasecoach/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Config *config.Config
	Coach  Coach
	Store  *flow.Store
	Log    *logger.Logger
}

// NewRouter wires the JSON API, the page and their middleware.
func NewRouter(d Deps) (*gin.Engine, error) {
	shape, err := models.ParseResponseShape(d.Config.Feedback.Shape)
	if err != nil {
		return nil, err
	}
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	h := NewHandlers(d.Coach, shape, d.Log)

	router := gin.New()
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.Use(middlewares.Recovery(d.Log))
	if d.Config.Tracing.Enabled {
		router.Use(otelgin.Middleware(d.Config.Tracing.ServiceName))
	}
	router.Use(middlewares.RequestID(), middlewares.RequestLogger(d.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.GET("/healthz", Health)

	api := router.Group("/api")
	{
		api.GET("/generate", h.GenerateTopic)
		api.POST("/rephrase", h.Rephrase)
		api.POST("/direct", h.Direct)
	}

	ui := router.Group("/")
	ui.Use(middlewares.Sessions(d.Store, d.Config.Session.CookieName, d.Config.Session.TTL))
	{
		ui.GET("/", h.Index)
		ui.POST("/mode", h.SwitchMode)
		ui.POST("/practice/topic", h.NewTopic)
		ui.POST("/practice/submit", h.SubmitPractice)
		ui.POST("/direct/submit", h.SubmitDirect)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router, nil
}
