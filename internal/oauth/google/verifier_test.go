package google

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		claims    map[string]any
		validErr  error
		clientID  string
		wantEmail string
		wantName  string
		wantErr   bool
	}{
		{
			name:      "ok",
			claims:    map[string]any{"email": "ann@mail.io", "name": "Ann Lee", "email_verified": true},
			clientID:  "client",
			wantEmail: "ann@mail.io",
			wantName:  "Ann Lee",
		},
		{
			name:      "missing name is allowed",
			claims:    map[string]any{"email": "ann@mail.io"},
			clientID:  "client",
			wantEmail: "ann@mail.io",
		},
		{name: "no email", claims: map[string]any{"name": "x"}, clientID: "client", wantErr: true},
		{name: "unverified", claims: map[string]any{"email": "a@b.c", "email_verified": false}, clientID: "client", wantErr: true},
		{name: "validation fails", validErr: errors.New("bad audience"), clientID: "client", wantErr: true},
		{name: "no client id", clientID: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := &Verifier{
				ClientID: tt.clientID,
				validate: func(_ context.Context, _, aud string) (*idtoken.Payload, error) {
					if tt.validErr != nil {
						return nil, tt.validErr
					}
					return &idtoken.Payload{Audience: aud, Claims: tt.claims}, nil
				},
			}
			p, err := v.Verify(context.Background(), "raw")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, p.Email)
			assert.Equal(t, tt.wantName, p.DisplayName)
		})
	}
}
