package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fakturo/internal/core/apperror"
	appctx "fakturo/internal/core/context"
	"fakturo/internal/core/id"
)

// ActorClaims are the JWT claims the engine understands. Tokens are
// issued by an external identity service; the engine only verifies the
// signature and extracts attribution.
type ActorClaims struct {
	jwt.RegisteredClaims

	Username  string  `json:"username"`
	Role      string  `json:"role"`
	PartnerID *string `json:"partnerId,omitempty"`
}

// TokenVerifier validates HMAC-signed bearer tokens.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier with the shared signing secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token, returning the acting user.
func (v *TokenVerifier) Verify(tokenString string) (*appctx.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token invalid")
	}

	userID, err := id.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	actor := &appctx.Actor{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.PartnerID != nil {
		partnerID, err := id.Parse(*claims.PartnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid partnerId claim: %w", err)
		}
		actor.PartnerID = &partnerID
	}

	return actor, nil
}

// Issue signs a token for the given actor. Used by tests and tooling;
// production tokens come from the identity service.
func (v *TokenVerifier) Issue(actor *appctx.Actor, ttl time.Duration) (string, error) {
	claims := &ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Username: actor.Username,
		Role:     actor.Role,
	}
	if actor.PartnerID != nil {
		s := actor.PartnerID.String()
		claims.PartnerID = &s
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Auth middleware validates bearer tokens and populates the actor
// context used for audit attribution and created_by fields.
func Auth(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := verifier.Verify(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", actor.UserID.String())

		c.Next()
	}
}

// RequireRole middleware checks if the actor has one of the roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, required := range roles {
			if actor.Role == required {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
