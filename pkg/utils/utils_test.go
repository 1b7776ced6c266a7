package utils

import (
	"testing"
	"thywilluche/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Gift of Words", "the-gift-of-words"},
		{"  Hello,   World!!  ", "hello-world"},
		{"2024 Review Championship", "2024-review-championship"},
		{"---", ""},
		{"Café Noir", "café-noir"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
}

func TestPagination(t *testing.T) {
	p := Pagination{}
	offset, limit := p.GetPageOffset()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)

	p = Pagination{Page: 3, Limit: 500}
	offset, limit = p.GetPageOffset()
	assert.Equal(t, 200, offset)
	assert.Equal(t, 100, limit)

	res := NewPageResult([]string{"a"}, 41, Pagination{Page: -1})
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, int64(41), res.Total)
	assert.Equal(t, int64(5), res.TotalPages)
}

func TestToken_RoundTrip(t *testing.T) {
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret"
	config.GlobalConfig.JWT.Expire = 2

	tok, exp, err := GenerateToken("u-1", "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, exp)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, "ADMIN", claims.Role)

	config.GlobalConfig.JWT.Secret = "another-secret-another-secret-xx"
	_, err = ParseToken(tok)
	assert.Error(t, err)
}

func TestPatch(t *testing.T) {
	s := "keep"
	Patch(&s, nil)
	assert.Equal(t, "keep", s)

	empty := ""
	Patch(&s, &empty)
	assert.Empty(t, s)
	assert.Equal(t, 0, Deref[int](nil))
}
