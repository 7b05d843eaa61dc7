package hub

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Letters and digits that are hard to confuse when read aloud or typed.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const CodeLength = 5

func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// NormalizeCode makes lookups case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
