package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/metrics"
)

// Options tune the router.
type Options struct {
	// SecureCookie marks the auth cookie Secure.
	SecureCookie bool
	// CookieTTL is the auth cookie lifetime, 30 days when zero.
	CookieTTL time.Duration
	// GraphQL is mounted at /graphql when set.
	GraphQL http.Handler
	// Metrics mounts /metrics and the request metrics middleware.
	Metrics bool
	// AllowOrigins enables CORS with credentials for these origins.
	AllowOrigins []string
}

// NewRouter wires every REST route, the quiz WebSocket and the optional GraphQL endpoint.
func NewRouter(svc app.Services, log *zap.Logger, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.Metrics {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}
	r.Use(authenticate(svc.Auth))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	h := &handlers{svc: svc, log: log, secureCookie: opts.SecureCookie, cookieTTL: opts.CookieTTL}
	if h.cookieTTL <= 0 {
		h.cookieTTL = 30 * 24 * time.Hour
	}
	api := r.Group("/api")
	{
		q := api.Group("/questions")
		q.GET("", h.listQuestions)
		q.POST("", h.createQuestion)
		q.POST("/search", h.searchQuestions)
		q.GET("/:id", h.getQuestion)
		q.PATCH("/:id", h.patchQuestion)
		q.DELETE("/:id", h.deleteQuestion)
		q.PUT("/:id/vote", h.vote)
		q.POST("/:id/answer", h.answer)
		q.POST("/:id/bookmark", h.createBookmark)
		q.DELETE("/:id/bookmark", h.deleteBookmark)
		q.POST("/:id/suggest_tag", h.suggestTag)
		q.POST("/:id/comment", h.createComment)
		q.PATCH("/:id/comment/:commentId", h.editComment)
		q.DELETE("/:id/comment/:commentId", h.deleteComment)
		q.PUT("/:id/comment/:commentId/like", h.likeComment)

		es := api.Group("/exam_sets")
		es.GET("", h.listExamSets)
		es.POST("", h.createExamSet)
		es.GET("/:id", h.getExamSet)
		es.GET("/:id/questions", h.examSetQuestions)
		es.PATCH("/:id", h.patchExamSet)
		es.DELETE("/:id", h.deleteExamSet)

		api.GET("/semesters", h.listSemesters)
		api.GET("/tags", h.listMetadata("tag"))
		api.GET("/specialties", h.listMetadata("specialty"))
		api.GET("/votes/:kind/:id", h.getVote)

		auth := api.Group("/auth")
		auth.GET("", h.currentUser)
		auth.POST("", h.login)
		auth.POST("/signup", h.signup)
		auth.DELETE("", h.logout)

		api.GET("/users/profile", h.profile)
		api.GET("/users/bookmarks", h.listBookmarks)
	}

	if svc.Quiz != nil {
		ws := NewWSHandler(svc.Quiz, log)
		r.GET("/ws/quiz", gin.WrapF(ws.ServeWS))
	}
	if opts.GraphQL != nil {
		r.POST("/graphql", gin.WrapH(opts.GraphQL))
		r.GET("/graphql", gin.WrapH(opts.GraphQL))
	}
	return r
}

type handlers struct {
	svc          app.Services
	log          *zap.Logger
	secureCookie bool
	cookieTTL    time.Duration
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
