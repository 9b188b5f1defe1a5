package core

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	guidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength   = 8
)

// GenerateGUID creates a short random GUID with the provided prefix,
// e.g. GenerateGUID("msg") -> "msg-a1b2c3d4".
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")

	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// MustGUID is GenerateGUID for callers that cannot fail; crypto/rand
// exhaustion is not a recoverable condition here.
func MustGUID(prefix string) string {
	id, err := GenerateGUID(prefix)
	if err != nil {
		panic(err)
	}
	return id
}

// GUIDPrefix extracts the shortened ID used in UI labels.
func GUIDPrefix(guid string, length int) string {
	base := guid
	if i := strings.IndexByte(base, '-'); i >= 0 {
		base = base[i+1:]
	}
	if length <= 0 {
		return ""
	}
	if length > len(base) {
		length = len(base)
	}
	return base[:length]
}
