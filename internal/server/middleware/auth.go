// Package middleware holds the HTTP middlewares shared across routes.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys the auth middleware populates for downstream handlers.
const (
	ContextTenantID  = "tenantID"
	ContextCompanyID = "companyID"
)

// Claims is the verified token payload. Token issuance lives in a separate
// identity service; this backend only verifies signatures.
type Claims struct {
	TenantID  string `json:"tenantId"`
	CompanyID string `json:"companyId"`
	jwt.StandardClaims
}

// Auth verifies the bearer token and injects the tenant and company ids into
// the request context. Requests without a valid token never reach a handler.
func Auth(secret string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.TenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing tenant claim"})
			return
		}

		c.Set(ContextTenantID, claims.TenantID)
		c.Set(ContextCompanyID, claims.CompanyID)
		c.Next()
	}
}

// TenantID returns the tenant id the auth middleware stored on the context.
func TenantID(c *gin.Context) string {
	return c.GetString(ContextTenantID)
}

// CompanyID returns the company id the auth middleware stored on the context.
func CompanyID(c *gin.Context) string {
	return c.GetString(ContextCompanyID)
}
