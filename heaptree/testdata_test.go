package heaptree

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, b []byte) Node {
	t.Helper()
	n, err := NodeFromBytes(b)
	require.NoError(t, err)
	return n
}

// hPair hashes a and b exactly as given, for building expected values by hand
func hPair(a, b Node) Node {
	return sha256.Sum256(append(append([]byte{}, a[:]...), b[:]...))
}

// hSorted hashes a and b in ascending byte order
func hSorted(a, b Node) Node {
	for k := range a {
		if a[k] != b[k] {
			if a[k] > b[k] {
				return hPair(b, a)
			}
			break
		}
	}
	return hPair(a, b)
}
