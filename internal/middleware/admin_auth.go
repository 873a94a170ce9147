package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AdminCookie holds the admin session token
	AdminCookie = "admin_token"

	// AdminTokenTTL is how long an admin login lasts
	AdminTokenTTL = 12 * time.Hour

	adminLocal = "admin"
)

// AdminClaims is the payload of an admin token
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 token for username valid from now.
func IssueAdminToken(secret, username string, now time.Time) (string, time.Time, error) {
	expires := now.Add(AdminTokenTTL)
	claims := AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// ParseAdminToken verifies the signature and expiry of an admin token.
func ParseAdminToken(secret, raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Username == "" {
		return nil, errors.New("invalid admin token")
	}
	return claims, nil
}

// RequireAdmin accepts the admin cookie or an Authorization bearer token.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(AdminCookie)
		if raw == "" {
			if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin login required",
			})
		}

		claims, err := ParseAdminToken(secret, raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session",
			})
		}

		c.Locals(adminLocal, claims.Username)
		return c.Next()
	}
}

// AdminUsername returns the admin set by RequireAdmin.
func AdminUsername(c *fiber.Ctx) string {
	name, _ := c.Locals(adminLocal).(string)
	return name
}
