package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// SHA256 hashes r's full content, streaming through a fixed buffer so large
// statement files don't need to be held in memory twice.
func SHA256(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
