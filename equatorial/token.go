package equatorial

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserProfile is the userData claim carried inside the access token.
type UserProfile struct {
	ContasContrato []ContaContrato `json:"ContasContrato"`
}

// ContaContrato is one billing account as listed in the profile.
type ContaContrato struct {
	Numero   string `json:"Numero"`
	Endereco string `json:"Endereco"`
	Bairro   string `json:"Bairro"`
	Cidade   string `json:"Cidade"`
}

// segmentParser only decodes segments. Signatures are never checked: the
// token is replayed upstream as is and unpacked here for its profile.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// PadSegment right-pads a base64url segment with '=' up to a multiple of four.
func PadSegment(seg string) string {
	if n := len(seg) % 4; n > 0 {
		seg += strings.Repeat("=", 4-n)
	}
	return seg
}

// DecodeProfile unpacks the userData claim from the middle segment of the
// access token.
func DecodeProfile(token Token) (UserProfile, error) {
	parts := strings.Split(token.AccessToken, ".")
	if len(parts) != 3 {
		return UserProfile{}, fmt.Errorf("%w: access token has %d segments, expected 3", ErrDecode, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(PadSegment(parts[1]))
	if err != nil {
		return UserProfile{}, fmt.Errorf("%w: token payload: %v", ErrDecode, err)
	}

	var claims map[string]json.RawMessage
	if err := json.Unmarshal(payload, &claims); err != nil {
		return UserProfile{}, fmt.Errorf("%w: token claims: %v", ErrDecode, err)
	}

	raw, ok := claims["userData"]
	if !ok {
		return UserProfile{}, fmt.Errorf("%w: token claims have no userData", ErrParse)
	}

	// userData is issued as a JSON encoded string; plain objects are accepted too.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return UserProfile{}, fmt.Errorf("%w: userData: %v", ErrParse, err)
	}
	return profile, nil
}
