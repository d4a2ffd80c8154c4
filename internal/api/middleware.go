package api

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const hostTokenKey = "hostToken"

// HostTokenMiddleware returns a Gin middleware that picks up a host edit
// token sent outside the JSON body. Accepted, in order: the X-Host-Token
// header, an "Authorization: Bearer" header and the token query parameter.
// It never rejects a request; the service decides whether a token is needed.
func HostTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("X-Host-Token"))

		if token == "" {
			// Check if the Authorization header starts with "Bearer "
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = strings.TrimSpace(parts[1])
			}
		}

		if token == "" {
			token = c.Query("token")
		}

		if token != "" {
			c.Set(hostTokenKey, token)
		}
		c.Next()
	}
}

// hostToken prefers a token from the request body over one found by the middleware
func hostToken(c *gin.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	return c.GetString(hostTokenKey)
}

// AccessLogger is gin's request logger with the token query parameter
// blanked, so host edit tokens never reach the log.
func AccessLogger(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: out,
		Formatter: func(param gin.LogFormatterParams) string {
			if param.Latency > time.Minute {
				param.Latency = param.Latency.Truncate(time.Second)
			}
			return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
				param.TimeStamp.Format("2006/01/02 - 15:04:05"),
				param.StatusCode,
				param.Latency,
				param.ClientIP,
				param.Method,
				redactedPath(param.Request.URL),
				param.ErrorMessage,
			)
		},
	})
}

func redactedPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	q := u.Query()
	if _, ok := q["token"]; ok {
		q.Set("token", "REDACTED")
	}
	return u.Path + "?" + q.Encode()
}
