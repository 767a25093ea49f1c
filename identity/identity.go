// Package identity derives the login identity from a submitted display name:
// a deterministic email and the fixed 7-character personal code.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// DefaultEmailDomain 原系统写死的域名。
const DefaultEmailDomain = "magacin.com"

// PersonalCodeLen 个人码与确认码都是固定 7 位。
const PersonalCodeLen = 7

// DeriveEmail：去掉所有空白 → 小写 → 拼域名。不做音译，
// 所以 "Ana Petrović" → "anapetrović@magacin.com"。
func DeriveEmail(name, domain string) string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String()) + "@" + domain
}

// PersonalCode：取名字前 7 个字符大写，不足右侧补 '0' 到整 7 位。
func PersonalCode(name string) string {
	runes := []rune(name)
	if len(runes) > PersonalCodeLen {
		runes = runes[:PersonalCodeLen]
	}
	code := strings.ToUpper(string(runes))
	for len([]rune(code)) < PersonalCodeLen {
		code += "0"
	}
	return code
}

// ValidConfirmationCode 只校验长度，字符集不限。
func ValidConfirmationCode(code string) bool {
	return len([]rune(code)) == PersonalCodeLen
}

func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

func CheckPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
