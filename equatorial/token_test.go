package equatorial_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/siqueira-ec/equatorial-utils-cli/equatorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profile = equatorial.UserProfile{
	ContasContrato: []equatorial.ContaContrato{
		{Numero: "3001234567", Endereco: "Tv. Padre Eutíquio 100", Bairro: "Batista Campos", Cidade: "Belém"},
		{Numero: "3007654321", Endereco: "Av. Nazaré 50", Bairro: "Nazaré", Cidade: "Belém"},
	},
}

func TestPadSegment(t *testing.T) {
	for l := 0; l <= 16; l++ {
		seg := strings.Repeat("a", l)
		padded := equatorial.PadSegment(seg)

		added := len(padded) - l
		assert.Equal(t, (4-l%4)%4, added, "length %d", l)
		assert.LessOrEqual(t, added, 3)
		assert.Zero(t, len(padded)%4)
		assert.Equal(t, strings.Repeat("=", added), padded[l:])
	}
}

func TestDecodeProfile(t *testing.T) {
	got, err := equatorial.DecodeProfile(makeToken(t, profile))
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestDecodeProfileEveryPaddingLength(t *testing.T) {
	// vary the claim size so the raw payload hits every length mod 4
	for i := 0; i < 4; i++ {
		token := makeTokenWithClaims(t, map[string]any{
			"pad":      strings.Repeat("x", i),
			"userData": `{"ContasContrato":[{"Numero":"111"}]}`,
		})
		got, err := equatorial.DecodeProfile(token)
		require.NoError(t, err)
		require.Len(t, got.ContasContrato, 1)
		assert.Equal(t, "111", got.ContasContrato[0].Numero)
	}
}

func TestDecodeProfileObjectClaim(t *testing.T) {
	token := makeTokenWithClaims(t, map[string]any{
		"userData": map[string]any{
			"ContasContrato": []map[string]string{{"Numero": "111", "Endereco": "Rua A"}},
		},
	})

	got, err := equatorial.DecodeProfile(token)
	require.NoError(t, err)
	assert.Equal(t, []equatorial.ContaContrato{{Numero: "111", Endereco: "Rua A"}}, got.ContasContrato)
}

func TestDecodeProfileMissingUserData(t *testing.T) {
	token := makeTokenWithClaims(t, map[string]any{"sub": "12345678900"})

	_, err := equatorial.DecodeProfile(token)
	assert.ErrorIs(t, err, equatorial.ErrParse)
}

func TestDecodeProfileMalformed(t *testing.T) {
	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two segments", "aGVhZGVy.cGF5bG9hZA"},
		{"bad base64", "aGVhZGVy.!!!!.c2ln"},
		{"payload not json", "aGVhZGVy." + notJSON + ".c2ln"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := equatorial.DecodeProfile(equatorial.Token{TokenType: "Bearer", AccessToken: tt.token})
			assert.ErrorIs(t, err, equatorial.ErrDecode)
		})
	}
}
