package utils

import (
	"context"
)

type contextKey string

const (
	TokenKey contextKey = "token"
)

// GetTokenFromContext returns the bearer token forwarded to the booking backend
func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok && token != ""
}

// SetTokenContext stores the bearer token in the context
func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
