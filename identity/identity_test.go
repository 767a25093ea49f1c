package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveEmail(t *testing.T) {
	// 空白全部剥掉、小写，不做音译
	assert.Equal(t, "anapetrović@magacin.com", DeriveEmail("Ana Petrović", ""))
	assert.Equal(t, "markomarković@magacin.com", DeriveEmail("  Marko  Marković ", "magacin.com"))
	assert.Equal(t, "nikolina@example.org", DeriveEmail("Nikolina", "example.org"))
}

func TestPersonalCodePadsShortNames(t *testing.T) {
	assert.Equal(t, "ANA0000", PersonalCode("Ana"))
	assert.Equal(t, "0000000", PersonalCode(""))
}

func TestPersonalCodeTruncatesLongNames(t *testing.T) {
	assert.Equal(t, "NIKOLIN", PersonalCode("Nikolina"))
	assert.Equal(t, "ANAPETR", PersonalCode("Ana Petrović")[:7])
	assert.Len(t, []rune(PersonalCode("Ana Petrović")), PersonalCodeLen)
}

func TestValidConfirmationCode(t *testing.T) {
	assert.True(t, ValidConfirmationCode("ABC1234"))
	assert.True(t, ValidConfirmationCode("???????")) // 字符集不限
	assert.False(t, ValidConfirmationCode("ABC123"))
	assert.False(t, ValidConfirmationCode("ABC12345"))
	assert.False(t, ValidConfirmationCode(""))
}

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("lozinka123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "lozinka123"))
	assert.False(t, CheckPassword(h, "pogresna"))
}
