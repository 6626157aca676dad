package cache

import (
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Key prefix for cached translations.
const translationPrefix = "trfil"

// makeTranslationKey generates a fixed-size key from query text using BLAKE2b
// hashing. The text is case-folded and trimmed first so trivially different
// wordings of the same query share an entry.
func makeTranslationKey(queryText string) []byte {
	normalized := strings.ToLower(strings.TrimSpace(queryText))

	h, _ := blake2b.New(16, nil)
	h.Write([]byte(normalized))
	sum := h.Sum(nil)

	prefix := translationPrefix + ":"
	buf := make([]byte, len(prefix)+len(sum))
	offset := copy(buf, prefix)
	copy(buf[offset:], sum)
	return buf
}
