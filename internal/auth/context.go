package auth

import (
	"context"
	"slices"
)

// RoleHits may read recovered plaintexts.
const RoleHits = "hits"

type ctxKey string

const claimsKey ctxKey = "claims"

type Claims struct {
	Subject string
	Roles   []string
}

func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(claimsKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
