package service

import (
	"context"
	"errors"

	"exquisitos/internal/domain"

	"google.golang.org/api/idtoken"
)

// googleVerifier validates Google ID tokens against the configured OAuth
// client id and extracts the account identity.
type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) IDTokenVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, token string) (*domain.GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, errors.New("google client id not configured")
	}

	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, err
	}

	ident := &domain.GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		ident.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		ident.Name = name
	}
	return ident, nil
}
