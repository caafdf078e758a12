package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "segdesk/internal/platform/errors"
)

// Provider supplies the reviewer whose queue is worked on. The value is
// opaque; no role logic happens client-side.
type Provider interface {
	UserID() string
}

type Static string

func (s Static) UserID() string { return string(s) }

// Claims are the fields the backend puts in its bearer tokens.
type Claims struct {
	ID   string
	Role string
}

// FromToken reads the claims of a bearer token without verifying its
// signature; the backend verifies every request.
func FromToken(token string) (Claims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return Claims{}, fmt.Errorf("%w: empty token", apperrors.ErrInvalidInput)
	}
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("%w: decode token: %w", apperrors.ErrInvalidInput, err)
	}
	return Claims{ID: claimString(mapClaims["id"]), Role: claimString(mapClaims["role"])}, nil
}

// Resolve picks the configured user id, falling back to the token's id claim.
func Resolve(configured, token string) (Provider, error) {
	if id := strings.TrimSpace(configured); id != "" {
		return Static(id), nil
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: no user id configured and no token to read it from", apperrors.ErrInvalidInput)
	}
	claims, err := FromToken(token)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: token carries no id claim", apperrors.ErrInvalidInput)
	}
	return Static(claims.ID), nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
