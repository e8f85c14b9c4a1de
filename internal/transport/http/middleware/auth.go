package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/authmail/internal/metrics"
	"github.com/ErlanBelekov/authmail/internal/reqctx"
	"github.com/ErlanBelekov/authmail/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const errUnauthorized = "unauthorized"

type tokenVerifier interface {
	Verify(raw string) (string, error)
}

type authKeyBody struct {
	AuthKey string `json:"authKey"`
}

// Auth reads the claim from the JSON body field "authKey", verifies it and
// sets "userID" in the gin context and the request context. Every failure
// gets the same 401 body. The body is cached so handlers can bind it again
// with ShouldBindBodyWith.
func Auth(verifier tokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "auth_middleware")

	return func(c *gin.Context) {
		var body authKeyBody
		// A malformed body simply has no usable authKey.
		_ = c.ShouldBindBodyWith(&body, binding.JSON)

		if body.AuthKey == "" {
			metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": errUnauthorized})
			return
		}

		userID, err := verifier.Verify(body.AuthKey)
		if err != nil {
			metrics.TokenVerificationsTotal.WithLabelValues("rejected").Inc()
			logger.DebugContext(c.Request.Context(), "claim rejected", "reason", token.Reason(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": errUnauthorized})
			return
		}

		metrics.TokenVerificationsTotal.WithLabelValues("accepted").Inc()
		c.Set("userID", userID)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
