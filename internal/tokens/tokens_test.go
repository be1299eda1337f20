package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/devtree/devtree/backend/api/internal/config"
	"github.com/devtree/devtree/backend/api/internal/models"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	return cfg
}

func TestGenerateAccessToken_ValidAndClaims(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	u := &models.User{ID: primitive.NewObjectID(), Name: "Test User", Email: "test@example.com"}

	tokenStr, err := GenerateAccessToken(cfg, u, 2*time.Minute)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, tokenStr)
	require.NoError(t, err)
	require.Equal(t, u.ID.Hex(), claims.UserID)
	require.NotNil(t, claims.IssuedAt)
	require.InDelta(t, (2 * time.Minute).Seconds(), claims.Remaining().Seconds(), 5)

	// the raw payload carries the userId claim name
	raw, err := jwt.NewParser().DecodeSegment(strings.Split(tokenStr, ".")[1])
	require.NoError(t, err)
	require.Contains(t, string(raw), `"userId":"`+u.ID.Hex()+`"`)
}

func TestParseAccessToken_Expired(t *testing.T) {
	cfg := testConfig("another-secret-32-bytes-longgggg")
	u := &models.User{ID: primitive.NewObjectID()}
	tokenStr, err := GenerateAccessToken(cfg, u, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_WrongSecretFails(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID()}
	tokenStr, err := GenerateAccessToken(testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx"), u, 2*time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(testConfig("different-secret-xxxxxxxxxxxxxxxx"), tokenStr)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Malformed(t *testing.T) {
	_, err := ParseAccessToken(testConfig("x"), "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Rejected when alg=none (unsigned token)
func TestParseAccessToken_AlgNoneRejected(t *testing.T) {
	payload := `{"userId":"u-none","exp":9999999999}`
	tok := new(jwt.Token).EncodeSegment([]byte(`{"alg":"none"}`)) + "." + new(jwt.Token).EncodeSegment([]byte(payload)) + "."
	_, err := ParseAccessToken(testConfig("x"), tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// Tampering with payload must fail signature verification
func TestParseAccessToken_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	u := &models.User{ID: primitive.NewObjectID()}
	tokenStr, err := GenerateAccessToken(cfg, u, 5*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payloadBytes, _ := jwt.NewParser().DecodeSegment(parts[1])
	other := primitive.NewObjectID().Hex()
	parts[1] = new(jwt.Token).EncodeSegment([]byte(strings.Replace(string(payloadBytes), u.ID.Hex(), other, 1)))

	_, err = ParseAccessToken(cfg, strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_MissingUserID(t *testing.T) {
	cfg := testConfig("missing-user-secret-xxxxxxxxxxxxxx")
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})
	s, err := jt.SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, s)
	require.ErrorIs(t, err, ErrInvalidToken)
}
