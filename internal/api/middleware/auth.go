package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/freelancehub/tracker/internal/core/domain"
)

// SessionValidator reports whether a token generation still names the live login.
type SessionValidator interface {
	Valid(generation uint64) bool
}

// Auth validates the JWT, checks that it belongs to the current session and
// injects the identity into the request context. Browsers cannot set headers
// on websocket upgrades, so the token is also accepted as ?access_token=.
func Auth(jwtSecret string, session SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, gen, ok := identityFromClaims(claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if !session.Valid(gen) {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			req := c.Request()
			c.SetRequest(req.WithContext(domain.ContextWithIdentity(req.Context(), id)))

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if t := c.QueryParam("access_token"); t != "" {
			return t, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// identityFromClaims reads uid, role and gen. JSON numbers decode as float64.
func identityFromClaims(claims jwt.MapClaims) (domain.Identity, uint64, bool) {
	uid, ok := claims["uid"].(float64)
	if !ok || uid <= 0 {
		return domain.Identity{}, 0, false
	}
	gen, ok := claims["gen"].(float64)
	if !ok || gen <= 0 {
		return domain.Identity{}, 0, false
	}
	roleStr, _ := claims["role"].(string)
	role, ok := domain.ParseRole(roleStr)
	if !ok {
		return domain.Identity{}, 0, false
	}
	return domain.Identity{UserID: int64(uid), Role: role}, uint64(gen), true
}
