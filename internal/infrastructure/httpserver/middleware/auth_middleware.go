package middleware

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/driftchat/drift/internal/infrastructure/httpserver/helpers"
)

// JWTMiddleware validates the managed auth service's access tokens. Identity
// lives entirely in the token: the subject claim is the user id, so no
// session lookup happens here.
type JWTMiddleware struct {
	secret []byte
	logger *logrus.Logger
}

func NewJWTMiddleware(jwtSecret string, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(jwtSecret), logger: logger}
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// RequireJWT creates middleware that validates JWT tokens and sets user context
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims := &accessClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return m.secret, nil
			})
			if err != nil || !token.Valid {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path}).WithError(err).Warn("JWT validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			helpers.SetUserID(c, userID)
			if claims.Email != "" {
				helpers.SetUserEmail(c, claims.Email)
			}
			return next(c)
		}
	}
}
