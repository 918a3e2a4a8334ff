package auth

import "context"

type scopesKey struct{}

func withScopes(ctx context.Context, s []string) context.Context {
	return context.WithValue(ctx, scopesKey{}, s)
}

func scopes(ctx context.Context) []string {
	s, _ := ctx.Value(scopesKey{}).([]string)
	return s
}
