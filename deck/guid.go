package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const base91Table = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&()*+,-./:;<=>?@[]^_`{|}~"

// GUID derives a note GUID from a person id: the first 64 bits of the
// id's SHA-256, written in base 91. The same person always maps to the
// same note, so Anki keeps review history across re-imports.
func GUID(personID string) string {
	sum := sha256.Sum256([]byte(personID))
	n, _ := strconv.ParseUint(hex.EncodeToString(sum[:8]), 16, 64)
	if n == 0 {
		return string(base91Table[0])
	}
	var out []byte
	for n > 0 {
		out = append(out, base91Table[n%uint64(len(base91Table))])
		n /= uint64(len(base91Table))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
