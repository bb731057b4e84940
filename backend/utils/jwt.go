package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"lms/backend/config"
	"lms/backend/models"
)

var ErrMissingToken = errors.New("missing authorization token")

// Claims is the token body issued by the identity provider. The role travels as a
// claim so it is never read from our own storage.
type Claims struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWTToken signs a token for id. Used by the demo seeder and tests; in
// production tokens come from the identity provider.
func GenerateJWTToken(id models.Identity, cfg *config.Config, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:     id.Name,
		Email:    id.Email,
		ImageURL: id.ImageURL,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken verifies tokenString and returns the identity it describes.
func ParseToken(tokenString string, cfg *config.Config) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return models.Identity{}, errors.New("invalid token claims")
	}
	if cfg.JWTIssuer != "" && !claims.VerifyIssuer(cfg.JWTIssuer, true) {
		return models.Identity{}, errors.New("unexpected token issuer")
	}

	return models.Identity{
		UserID:   claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		ImageURL: claims.ImageURL,
		Role:     claims.Role,
	}, nil
}

// ExtractIdentityFromToken reads the bearer token of the request.
func ExtractIdentityFromToken(c *fiber.Ctx, cfg *config.Config) (models.Identity, error) {
	header := c.Get(fiber.HeaderAuthorization)
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if tokenString == "" {
		return models.Identity{}, ErrMissingToken
	}
	return ParseToken(tokenString, cfg)
}
