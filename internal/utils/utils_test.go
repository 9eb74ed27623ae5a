// internal/utils/utils_test.go
package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type beatForm struct {
	Key      string `validate:"required,musical_key"`
	Currency string `validate:"required,currency"`
	Role     string `validate:"omitempty,signup_role"`
}

func TestCustomValidators(t *testing.T) {
	assert.NoError(t, ValidateStruct(beatForm{Key: "F#m", Currency: "USD", Role: "seller"}))

	err := ValidateStruct(beatForm{Key: "H", Currency: "EUR", Role: "admin"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 3)
	assert.Equal(t, "key", errs[0].Field)
	assert.Equal(t, "musical_key", errs[0].Tag)
	assert.Equal(t, "currency", errs[1].Tag)
	assert.Equal(t, "signup_role", errs[2].Tag)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateSessionToken("seller-1", "seller", 1)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "seller-1", claims.UserID)
	assert.Equal(t, "seller-1", claims.Subject)
	assert.Equal(t, "seller", claims.Role)
}

func TestSessionTokenRejectsForeignSecret(t *testing.T) {
	SetJWTSecret("one")
	token, err := GenerateSessionToken("u1", "buyer", 1)
	require.NoError(t, err)

	SetJWTSecret("two")
	_, err = ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	claims := SessionClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateSessionToken(token)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("  <b>hello</b><script>alert(1)</script> "))
	assert.Equal(t, "R&B", SanitizeText("R&B"))
	assert.Equal(t, []string{"dark", "808"}, SanitizeTags([]string{"Dark", "dark", " ", "<i>808</i>"}))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Paginate(items, PaginationParams{Page: 2, Limit: 2}))
	assert.Equal(t, []int{5}, Paginate(items, PaginationParams{Page: 3, Limit: 2}))
	assert.Empty(t, Paginate(items, PaginationParams{Page: 4, Limit: 2}))

	result := CreatePaginationResult(nil, 5, PaginationParams{Page: 1, Limit: 2})
	assert.Equal(t, 3, result.TotalPages)
}
