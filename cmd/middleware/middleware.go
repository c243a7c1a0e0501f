package middleware

import (
	"strings"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"kaiginote/internal/dto"
	"kaiginote/internal/repo"
	"kaiginote/internal/security"
)

func LoggingMiddleware() func(c *ginext.Context) {
	return func(c *ginext.Context) {
		start := time.Now()
		c.Next()
		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

// RequireAuth resolves the bearer token into the authenticated user and
// stores it under dto.CurrentUserKey. Anything short of a valid token whose
// subject is an existing user is a 401 with a challenge header.
func RequireAuth(tokens *security.TokenManager, repository repo.Repository) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			dto.UnauthorizedError(c, "Not authenticated")
			c.Abort()
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			dto.UnauthorizedError(c, "Could not validate credentials")
			c.Abort()
			return
		}

		user, err := repository.GetUserByID(c, int64(userID))
		if err != nil {
			dto.UnauthorizedError(c, "Could not validate credentials")
			c.Abort()
			return
		}

		c.Set(dto.CurrentUserKey, user)
		c.Next()
	}
}
