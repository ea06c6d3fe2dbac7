package lib

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rxvision_server/structs/tables"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	user := &tables.User{Id: uuid.New(), Email: "ada@rxvision.io", FirstName: "Ada", LastName: "Lovelace", Photo: "https://img/ada.png"}
	now := time.Now().Truncate(time.Second)

	signed, issued, err := NewSessionToken(user, "secret", 24*time.Hour, now)
	require.NoError(t, err)

	claims, err := ParseSessionToken(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.Id, claims.Sub)
	assert.Equal(t, "ada@rxvision.io", claims.Email)
	assert.Equal(t, "Ada Lovelace", claims.Name)
	assert.Equal(t, "https://img/ada.png", claims.Picture)
	assert.Equal(t, issued.Jti, claims.Jti)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.Exp.Unix())
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	user := &tables.User{Id: uuid.New(), Email: "ada@rxvision.io"}
	signed, _, err := NewSessionToken(user, "secret", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ParseSessionToken(signed, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionTokenReportsExpiry(t *testing.T) {
	user := &tables.User{Id: uuid.New(), Email: "ada@rxvision.io"}
	signed, _, err := NewSessionToken(user, "secret", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseSessionToken(signed, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestExtractSessionToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ExtractSessionToken(r)
	assert.ErrorIs(t, err, ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := ExtractSessionToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	token, err = ExtractSessionToken(r)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", token)
}
