package transport

import (
	"github.com/alex-pricope/election-ledger/api/models"
	"github.com/alex-pricope/election-ledger/guard"
	"github.com/alex-pricope/election-ledger/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"net/http"
	"os"
)

const (
	HeaderPrincipal    = "x-principal"
	HeaderGatewayToken = "x-gateway-token"
	HeaderRequestID    = "x-request-id"

	principalKey = "principal"
)

func NewRouter(ginMode string) *gin.Engine {
	gin.SetMode(ginMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestIDMiddleware(), CORSMiddleware())

	//Bypass swagger for non-local
	if os.Getenv("APP_ENV") == "local" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	engine.NoRoute(NoRouteHandler())

	return engine
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-principal, x-gateway-token, x-request-id")

		if c.Request.Method == "OPTIONS" {
			logging.Log.Infof("OPTIONS request received:%s", c.Request.URL.Path)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware echoes the caller's x-request-id or mints one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logging.Log.Infof("No routed request received for:%s", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, models.ErrorResponse{Code: "PAGE_NOT_FOUND", Error: "Page not found"})
	}
}

// CallerMiddleware trusts the principal asserted by the upstream
// authenticator. When token is set, requests must also carry it in
// x-gateway-token so the header cannot be forged by a direct caller.
func CallerMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token != "" && c.GetHeader(HeaderGatewayToken) != token {
			logging.Log.Warnf("ADMIN: request to %s without a valid gateway token", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHENTICATED", Error: "invalid gateway token"})
			return
		}

		raw := c.GetHeader(HeaderPrincipal)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHENTICATED", Error: "missing x-principal header"})
			return
		}
		p, err := guard.ParsePrincipal(raw)
		if err != nil {
			logging.Log.Warnf("ADMIN: rejected malformed principal %q on %s", raw, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: "UNAUTHENTICATED", Error: err.Error()})
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// Caller returns the principal stored by CallerMiddleware.
func Caller(c *gin.Context) (guard.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return "", false
	}
	p, ok := v.(guard.Principal)
	return p, ok
}
