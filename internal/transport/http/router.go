package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/authmail/internal/transport/http/handler"
	"github.com/ErlanBelekov/authmail/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

const greeting = "Hello world!"

type tokenVerifier interface {
	Verify(raw string) (string, error)
}

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, mailHandler *handler.MailHandler, verifier tokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, greeting)
	})

	r.POST("/login", authHandler.Login)
	r.POST("/signup", authHandler.Signup)
	r.POST("/forgetPassword", authHandler.ForgetPassword)

	r.POST("/sendMail", middleware.Auth(verifier, logger), mailHandler.SendMail)

	return r
}
