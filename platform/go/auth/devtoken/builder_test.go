package devtoken

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildUnsignedTokenShape(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := BuildUnsignedToken(Params{
		ProjectID:     "vermi-dev",
		UserID:        "auth-uid-1",
		Email:         "jane@example.com",
		Name:          "Jane Doe",
		EmailVerified: true,
	}, now)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 2)

	payloadRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, json.Unmarshal(payloadRaw, &claims))

	require.Equal(t, "https://securetoken.google.com/vermi-dev", claims["iss"])
	require.Equal(t, "vermi-dev", claims["aud"])
	require.Equal(t, "auth-uid-1", claims["sub"])
	require.Equal(t, "jane@example.com", claims["email"])
	require.Equal(t, true, claims["email_verified"])
	require.Equal(t, float64(now.Add(time.Hour).Unix()), claims["exp"])

	firebaseClaim, ok := claims["firebase"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "password", firebaseClaim["sign_in_provider"])
}

func TestBuildUnsignedTokenRequiredFields(t *testing.T) {
	t.Parallel()

	_, err := BuildUnsignedToken(Params{UserID: "u", Email: "e@example.com"}, time.Time{})
	require.Error(t, err)

	_, err = BuildUnsignedToken(Params{ProjectID: "p", Email: "e@example.com"}, time.Time{})
	require.Error(t, err)

	_, err = BuildUnsignedToken(Params{ProjectID: "p", UserID: "u"}, time.Time{})
	require.Error(t, err)
}
