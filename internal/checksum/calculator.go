package checksum

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/xxh3"
)

// Calculator fingerprints dump contents so a report can be tied to the exact
// file it was produced from.
type Calculator interface {
	// Sum returns the fingerprint of content.
	Sum(content []byte) string

	// SumReader fingerprints everything read from r.
	SumReader(r io.Reader) (string, error)
}

// XXH3 computes 128-bit XXH3 fingerprints as 32 hex characters.
// It is a zero-size type and safe for concurrent use.
type XXH3 struct{}

// New creates an XXH3 calculator.
func New() XXH3 {
	return XXH3{}
}

func (XXH3) Sum(content []byte) string {
	return encode(xxh3.Hash128(content))
}

func (XXH3) SumReader(r io.Reader) (string, error) {
	h := xxh3.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return encode(h.Sum128()), nil
}

func encode(u xxh3.Uint128) string {
	b := u.Bytes()
	return hex.EncodeToString(b[:])
}
