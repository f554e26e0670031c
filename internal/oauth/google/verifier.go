package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

const Provider = "google"

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type Verifier struct {
	ClientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{ClientID: clientID, validate: idtoken.Validate}
}

func (v *Verifier) Verify(ctx context.Context, token string) (tokens.ExternalProfile, error) {
	if v.ClientID == "" {
		return tokens.ExternalProfile{}, errors.New("google client id is not configured")
	}
	payload, err := v.validate(ctx, token, v.ClientID)
	if err != nil {
		return tokens.ExternalProfile{}, fmt.Errorf("validate id token: %w", err)
	}
	return profileFromClaims(payload.Claims)
}

func profileFromClaims(claims map[string]any) (tokens.ExternalProfile, error) {
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return tokens.ExternalProfile{}, errors.New("email not found in claims")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return tokens.ExternalProfile{}, errors.New("email is not verified")
	}
	name, _ := claims["name"].(string)
	return tokens.ExternalProfile{Email: email, DisplayName: name}, nil
}
