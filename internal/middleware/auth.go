// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"strings"
	"time"

	"vidtube/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

const (
	msgMissingHeader = "Authorization header required"
	msgHeaderFormat  = "Invalid authorization header format"
	msgInvalidToken  = "Invalid or expired token"
	msgTokenSubject  = "Invalid user ID in token"
)

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	userID, msg := authenticate(c)
	if msg != "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": msg,
			"code":  "UNAUTHORIZED",
		})
	}
	setUser(c, userID)
	return c.Next()
}

// OptionalAuth attaches the caller identity when a valid token is present and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	return AuthRequired(c)
}

func setUser(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// authenticate returns the token subject, or a client-facing message on failure.
func authenticate(c *fiber.Ctx) (uuid.UUID, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, msgMissingHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, msgHeaderFormat
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, msgInvalidToken
	}

	// Subject claim per RFC 7519
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, msgTokenSubject
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, msgTokenSubject
	}
	return userID, ""
}

// CurrentUserID returns the authenticated caller, if any.
func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// IssueToken signs an access token for userID. Used by the seeder and tests;
// credential exchange lives in the auth service.
func IssueToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
