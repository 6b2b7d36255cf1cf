package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/banachtech/zebra-digital/keystore"
	"github.com/banachtech/zebra-digital/logs"
	"github.com/banachtech/zebra-digital/metrics"
	"github.com/banachtech/zebra-digital/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
	requestIDHeaderKey      = "X-Request-ID"
	keyPrefixContextKey     = "key_prefix"
	requestIDContextKey     = "request_id"
)

func (server *Server) authentication(c *gin.Context) {
	authorizationHeader := c.GetHeader(authorizationHeaderKey)

	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(fmt.Errorf("unsupported authorization type: %s", authorizationType)))
		return
	}

	apiKey := fields[1]
	prefix, err := util.KeyPrefix(apiKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
		return
	}

	key, err := server.store.GetKey(c, prefix)
	if err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse(err))
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	if key.Expired(time.Now()) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("api key is expired")))
		return
	}

	if !util.CheckAPIKey(key.Hash, apiKey) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
		return
	}

	c.Set(keyPrefixContextKey, prefix)
	c.Next()
}

// rateLimit throttles each API key separately. It runs after authentication.
func (server *Server) rateLimit(c *gin.Context) {
	if !server.limiter(c.GetString(keyPrefixContextKey)).Allow() {
		metrics.RateLimited.Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(errors.New("rate limit exceeded")))
		return
	}
	c.Next()
}

// requestID reuses a well formed incoming request id or assigns a new one.
func requestID(c *gin.Context) {
	id := c.GetHeader(requestIDHeaderKey)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Set(requestIDContextKey, id)
	c.Header(requestIDHeaderKey, id)
	c.Next()
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	logs.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDContextKey),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
	}).Info("request served")
}
