package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
	gql "github.com/gfdmit/web-forum/board-service/internal/handlers/http/v1/graphql"
	"github.com/gfdmit/web-forum/board-service/internal/events"
	"github.com/gfdmit/web-forum/board-service/internal/logger"
	"github.com/gfdmit/web-forum/board-service/internal/service"
)

type handler struct {
	svc    *service.Service
	events *events.Listener
	log    logrus.FieldLogger
}

func New(svc *service.Service, listener *events.Listener, conf config.Auth, log logrus.FieldLogger) (*gin.Engine, error) {
	var (
		router = gin.New()
		h      = &handler{svc: svc, events: listener, log: log.WithField("source", "http")}
	)

	router.Use(gin.RecoveryWithWriter(logger.GinWriter(log)))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link", resultCodeHeader},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))

	gqlHandler, err := gql.New(svc, log)
	if err != nil {
		return nil, err
	}

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.Use(gin.LoggerWithWriter(logger.GinWriter(log)))

		apiGroup.Any("/graphql", gin.WrapH(gqlHandler))

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		boardGroup := apiGroup.Group("/board")
		{
			boardGroup.GET("/board-page", h.getBoardPage)
			boardGroup.GET("/board/:boardUid", h.getBoardDetail)
			boardGroup.PATCH("/board/:boardUid/view-count-1up", h.incrementViewCount)
			boardGroup.GET("/board/:boardUid/comment-page", h.getCommentPage)
			boardGroup.POST("/events/member-deleted", InternalAuth(conf.HookSecret), h.memberDeleted)

			authGroup := boardGroup.Group("")
			authGroup.Use(JWTAuth(conf.JWTSecret))
			{
				authGroup.POST("/board", h.createBoard)
				authGroup.PUT("/board/:boardUid", h.updateBoard)
				authGroup.DELETE("/board/:boardUid", h.deleteBoard)
				authGroup.POST("/comment", h.createComment)
				authGroup.PUT("/comment/:commentUid", h.updateComment)
				authGroup.DELETE("/comment/:commentUid", h.deleteComment)
			}
		}
	}

	return router, nil
}
