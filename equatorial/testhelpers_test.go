package equatorial_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"github.com/stretchr/testify/require"
)

// makeToken builds an unsigned access token whose payload carries profile
// as a JSON encoded userData claim, the way upstream issues it.
func makeToken(t *testing.T, profile equatorial.UserProfile) equatorial.Token {
	t.Helper()

	userData, err := json.Marshal(profile)
	require.NoError(t, err)
	return makeTokenWithClaims(t, map[string]any{
		"sub":      "12345678900",
		"userData": string(userData),
	})
}

func makeTokenWithClaims(t *testing.T, claims map[string]any) equatorial.Token {
	t.Helper()

	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	return equatorial.Token{
		TokenType:   "Bearer",
		AccessToken: header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2lnbmF0dXJl",
	}
}

type recordingProgress struct {
	labels []string
	stops  int
}

func (p *recordingProgress) Start(label string) { p.labels = append(p.labels, label) }
func (p *recordingProgress) Stop()              { p.stops++ }
