// Package auth supplies bearer tokens for authenticated invocations.
package auth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenProvider yields a bearer token for an outgoing request. Providers
// must be safe for concurrent use: many invocations may request a token at
// once and must never observe a half-refreshed credential.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token, typically operator-supplied.
type StaticToken string

// Token returns the static token.
func (t StaticToken) Token(_ context.Context) (string, error) {
	return string(t), nil
}

// OAuth2Provider obtains tokens through the OAuth2 client-credentials grant.
// The underlying token source caches the current token and refreshes it on
// expiry under its own lock.
type OAuth2Provider struct {
	source oauth2.TokenSource
}

// NewOAuth2Provider builds a provider for the given client credentials.
func NewOAuth2Provider(ctx context.Context, clientID, clientSecret, tokenURL string, scopes []string) *OAuth2Provider {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}

	return &OAuth2Provider{source: cfg.TokenSource(ctx)}
}

// Token returns the current access token, refreshing it if expired.
func (p *OAuth2Provider) Token(_ context.Context) (string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
