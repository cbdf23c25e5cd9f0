package checksum

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXXH3_Sum(t *testing.T) {
	c := New()
	dump := []byte("INSERT INTO `clientes` VALUES (1,'Ana');\n")

	sum := c.Sum(dump)

	assert.Len(t, sum, 32)
	assert.Equal(t, sum, c.Sum(dump))
	assert.NotEqual(t, sum, c.Sum(append(dump, '\n')))
}

func TestXXH3_SumReader_MatchesSum(t *testing.T) {
	c := New()
	dump := []byte(strings.Repeat("(1,'x'),", 10000))

	sum, err := c.SumReader(bytes.NewReader(dump))

	require.NoError(t, err)
	assert.Equal(t, c.Sum(dump), sum)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestXXH3_SumReader_Error(t *testing.T) {
	_, err := New().SumReader(failingReader{})
	assert.EqualError(t, err, "disk error")
}

func BenchmarkSum(b *testing.B) {
	c := New()
	content := []byte(strings.Repeat("(1,'Fermin Cruz','8098340218'),", 10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Sum(content)
	}
}
