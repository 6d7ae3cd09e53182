package heaptree

import (
	"crypto/sha256"
	"crypto/sha512"
	"testing"

	"github.com/forestrie/go-merkletree/treetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestHashPairCommutative(t *testing.T) {
	hasher := sha3.NewLegacyKeccak256()
	for i := uint64(0); i < 16; i++ {
		a := mustNode(t, treetesting.HashNum(i))
		b := mustNode(t, treetesting.HashNum(i+100))

		ab, err := HashPair(hasher, Commutative, a, b)
		require.NoError(t, err)
		ba, err := HashPair(hasher, Commutative, b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestHashPairPositional(t *testing.T) {
	hasher := sha256.New()
	a := mustNode(t, treetesting.HashNum(1))
	b := mustNode(t, treetesting.HashNum(2))

	ab, err := HashPair(hasher, Positional, a, b)
	require.NoError(t, err)
	ba, err := HashPair(hasher, Positional, b, a)
	require.NoError(t, err)

	assert.NotEqual(t, ab, ba)
	assert.Equal(t, hPair(a, b), ab)
	assert.Equal(t, hPair(b, a), ba)
}

func TestHashPairUnknownPolicy(t *testing.T) {
	_, err := HashPair(sha256.New(), HashPolicy(9), Node{}, Node{})
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestHashLeafIsDoubleHash(t *testing.T) {
	encoded := []byte("some abi encoded value")
	once := sha256.Sum256(encoded)
	twice := sha256.Sum256(once[:])

	got, err := HashLeaf(sha256.New(), encoded)
	require.NoError(t, err)
	assert.Equal(t, Node(twice), got)
	assert.NotEqual(t, Node(once), got)
}

func TestHashBadHasherSize(t *testing.T) {
	_, err := HashLeaf(sha512.New(), []byte("x"))
	require.ErrorIs(t, err, ErrBadHashSize)

	_, err = Build(sha512.New(), treetesting.NumberedLeafHashes(2), DepthBalanced, Commutative)
	require.ErrorIs(t, err, ErrBadHashSize)
}
