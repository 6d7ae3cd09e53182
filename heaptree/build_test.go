package heaptree

import (
	"crypto/sha256"
	"testing"

	"github.com/forestrie/go-merkletree/treetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSize(t *testing.T) {
	hasher := sha256.New()
	for _, layout := range []Layout{DepthBalanced, ArbitraryCount} {
		for _, policy := range []HashPolicy{Commutative, Positional} {
			for n := 1; n <= 33; n++ {
				tree, err := Build(hasher, treetesting.NumberedLeafHashes(n), layout, policy)
				require.NoError(t, err)
				require.Equal(t, 2*n-1, tree.Len())
				require.Equal(t, n, tree.LeafCount())
				require.NoError(t, tree.Validate(hasher))
			}
		}
	}
}

func TestBuildSingleLeaf(t *testing.T) {
	leaf := treetesting.HashNum(42)
	tree, err := Build(sha256.New(), [][]byte{leaf}, ArbitraryCount, Positional)
	require.NoError(t, err)
	require.Equal(t, 1, tree.Len())
	assert.Equal(t, mustNode(t, leaf), tree.Root())

	proof, err := tree.Prove(0)
	require.NoError(t, err)
	assert.Equal(t, 0, proof.Len())
	require.NoError(t, tree.Verify(sha256.New(), tree.Root(), proof))
}

// TestBuildByHand checks the root against values hashed independently of the
// tree code.
func TestBuildByHand(t *testing.T) {
	l := make([]Node, 5)
	for i := range l {
		l[i] = mustNode(t, treetesting.HashNum(uint64(i)))
	}
	leaves := treetesting.NumberedLeafHashes(5)

	tests := []struct {
		name   string
		layout Layout
		policy HashPolicy
		want   Node
	}{
		// slots 8..4 hold l0..l4
		{
			"depth balanced commutative",
			DepthBalanced, Commutative,
			hSorted(hSorted(hSorted(l[1], l[0]), l[4]), hSorted(l[3], l[2])),
		},
		{
			"depth balanced positional",
			DepthBalanced, Positional,
			hPair(hPair(hPair(l[1], l[0]), l[4]), hPair(l[3], l[2])),
		},
		// slots 7, 8, 4, 5, 6 hold l0..l4
		{
			"arbitrary count positional",
			ArbitraryCount, Positional,
			hPair(hPair(hPair(l[0], l[1]), l[2]), hPair(l[3], l[4])),
		},
		{
			"arbitrary count commutative",
			ArbitraryCount, Commutative,
			hSorted(hSorted(hSorted(l[0], l[1]), l[2]), hSorted(l[3], l[4])),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Build(sha256.New(), leaves, tt.layout, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tree.Root())
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(sha256.New(), treetesting.NumberedLeafHashes(11), ArbitraryCount, Positional)
	require.NoError(t, err)
	b, err := Build(sha256.New(), treetesting.NumberedLeafHashes(11), ArbitraryCount, Positional)
	require.NoError(t, err)
	assert.Equal(t, a.Nodes(), b.Nodes())

	c, err := Build(sha256.New(), treetesting.NumberedLeafHashes(11), DepthBalanced, Positional)
	require.NoError(t, err)
	assert.NotEqual(t, a.Root(), c.Root())
}

func TestBuildErrors(t *testing.T) {
	hasher := sha256.New()

	_, err := Build(hasher, nil, DepthBalanced, Commutative)
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Build(hasher, [][]byte{treetesting.HashNum(1), treetesting.HashNum(2)[:31]}, DepthBalanced, Commutative)
	require.ErrorIs(t, err, ErrInvalidNode)

	_, err = Build(hasher, treetesting.NumberedLeafHashes(2), DepthBalanced, HashPolicy(0))
	require.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = Build(hasher, treetesting.NumberedLeafHashes(2), UnknownLayout, Commutative)
	require.ErrorIs(t, err, ErrUnknownLayout)
}

func TestFromNodes(t *testing.T) {
	built, err := Build(sha256.New(), treetesting.NumberedLeafHashes(6), ArbitraryCount, Commutative)
	require.NoError(t, err)

	nodes := built.Nodes()
	tree, err := FromNodes(nodes, Commutative)
	require.NoError(t, err)
	assert.Equal(t, built.Root(), tree.Root())
	require.NoError(t, tree.Validate(sha256.New()))

	// the tree holds its own copy
	nodes[0] = Node{}
	assert.Equal(t, built.Root(), tree.Root())

	_, err = FromNodes(nodes[:4], Commutative)
	require.ErrorIs(t, err, ErrInvalidTreeSize)
	_, err = FromNodes(nil, Commutative)
	require.ErrorIs(t, err, ErrEmptyInput)

	tampered := built.Nodes()
	tampered[1][0] ^= 0xff
	bad, err := FromNodes(tampered, Commutative)
	require.NoError(t, err)
	require.ErrorIs(t, bad.Validate(sha256.New()), ErrInvalidTree)
}
