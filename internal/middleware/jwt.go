package middleware // middleware contains reusable HTTP middleware functions

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/repository"
	"github.com/emergid/emergency-medical-id/internal/utils"
)

// revokedKeyPrefix namespaces revoked token ids inside Redis.
const revokedKeyPrefix = "revoked:jti:"

// JWTAuth returns an Echo middleware implementing the access control gate
// for protected routes:
//
//  1. extract the Bearer token from the Authorization header,
//  2. verify its signature and expiry,
//  3. reject tokens that were revoked via logout (only when Redis is
//     configured; with rdb == nil the service relies on expiry alone),
//  4. re-resolve the user row so tokens for deleted accounts stop working,
//  5. attach user_id, role and email to the request context.
//
// Each failure maps to a distinct machine-readable code so clients can tell
// an expired session from a forged or orphaned one.
func JWTAuth(secret string, users *repository.UserRepo, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, model.CodeAuthRequired, "bearer token required")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				if err == utils.ErrTokenExpired {
					return unauthorized(c, model.CodeTokenExpired, "token expired")
				}
				return unauthorized(c, model.CodeTokenInvalid, "invalid token")
			}

			if rdb != nil && claims.JTI != "" {
				rctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
				n, rerr := rdb.Exists(rctx, revokedKeyPrefix+claims.JTI).Result()
				cancel()
				// A Redis outage must not lock every user out; only a
				// positive hit rejects the token.
				if rerr == nil && n > 0 {
					return unauthorized(c, model.CodeTokenInvalid, "token revoked")
				}
			}

			// The token alone is not proof the account still exists.
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if err == sql.ErrNoRows {
					return unauthorized(c, model.CodeAuthRequired, "account no longer exists")
				}
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"success": false, "code": model.CodeStoreUnavailable, "message": "store unavailable",
				})
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", u.Role)
			c.Set("email", u.Email)
			c.Set("jti", claims.JTI)
			c.Set("token_exp", claims.Exp)
			return next(c)
		}
	}
}

// RevokeToken adds a token id to the revocation list until its natural
// expiry. No-op when Redis is not configured.
func RevokeToken(ctx context.Context, rdb *redis.Client, jti string, exp time.Time) error {
	if rdb == nil || jti == "" {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	return rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func unauthorized(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"success": false, "code": code, "message": msg,
	})
}
