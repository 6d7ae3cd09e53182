package heaptree

import (
	"crypto/sha256"
	"testing"

	"github.com/forestrie/go-merkletree/treetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestInclusionProofPath(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		i       int
		want    []int
		wantErr error
	}{
		{"n=1", 1, 0, []int{}, nil},
		{"n=4 slot 5", 7, 5, []int{6, 1}, nil},
		{"n=4 slot 3", 7, 3, []int{4, 2}, nil},
		{"n=5 slot 7", 9, 7, []int{8, 4, 2}, nil},
		{"n=5 slot 4", 9, 4, []int{3, 2}, nil},
		{"n=3 slot 2", 5, 2, []int{1}, nil},
		{"interior", 7, 2, nil, ErrNotLeaf},
		{"past end", 7, 7, nil, ErrIndexOutOfRange},
		{"bad size", 6, 3, nil, ErrInvalidTreeSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InclusionProofPath(tt.size, tt.i)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProofSides(t *testing.T) {
	assert.Equal(t, []bool{}, ProofSides(0))
	assert.Equal(t, []bool{false, false, false}, ProofSides(7))
	assert.Equal(t, []bool{true, false, false}, ProofSides(8))
	assert.Equal(t, []bool{true, false}, ProofSides(4))
	assert.Equal(t, []bool{false, true}, ProofSides(5))
}

// TestProofEveryLeaf checks every leaf of every tree shape verifies against the root
func TestProofEveryLeaf(t *testing.T) {
	hasher := sha3.NewLegacyKeccak256()
	for _, layout := range []Layout{DepthBalanced, ArbitraryCount} {
		for _, policy := range []HashPolicy{Commutative, Positional} {
			for n := 1; n <= 40; n++ {
				leaves := treetesting.NumberedLeafHashes(n)
				tree, err := Build(hasher, leaves, layout, policy)
				require.NoError(t, err)

				for leafIndex, leaf := range leaves {
					ti, err := TreeIndex(n, leafIndex, layout)
					require.NoError(t, err)

					proof, err := tree.Prove(ti)
					require.NoError(t, err)
					require.Equal(t, IndexDepth(ti), proof.Len())
					require.Equal(t, proof.Len(), len(proof.Sides))

					ok, err := VerifyInclusion(hasher, policy, mustNode(t, leaf), proof, tree.Root())
					require.NoError(t, err, "layout=%v policy=%v n=%d leaf=%d", layout, policy, n, leafIndex)
					require.True(t, ok)
				}
			}
		}
	}
}

func TestProofDepthBalancedFourLeaves(t *testing.T) {
	tree, err := Build(sha256.New(), treetesting.NumberedLeafHashes(4), DepthBalanced, Commutative)
	require.NoError(t, err)
	nodes := tree.Nodes()

	// leaf 1 is in slot 5, its sibling is slot 6 (leaf 0) and then slot 1
	proof, err := tree.Prove(5)
	require.NoError(t, err)
	assert.Equal(t, []Node{nodes[6], nodes[1]}, proof.Siblings)
	require.NoError(t, tree.Verify(sha256.New(), nodes[5], proof))
}

func TestProofArbitraryCountThreeLeaves(t *testing.T) {
	leaves := treetesting.NumberedLeafHashes(3)
	tree, err := Build(sha256.New(), leaves, ArbitraryCount, Positional)
	require.NoError(t, err)
	require.Equal(t, 5, tree.Len())

	wantLen := []int{2, 2, 1}
	for leafIndex, leaf := range leaves {
		ti, err := TreeIndex(3, leafIndex, ArbitraryCount)
		require.NoError(t, err)
		proof, err := tree.Prove(ti)
		require.NoError(t, err)
		assert.Equal(t, wantLen[leafIndex], proof.Len())
		require.NoError(t, tree.Verify(sha256.New(), mustNode(t, leaf), proof))
	}
}

func TestProofPositionalFiveLeaves(t *testing.T) {
	hasher := sha256.New()
	leaves := treetesting.NumberedLeafHashes(5)
	tree, err := Build(hasher, leaves, ArbitraryCount, Positional)
	require.NoError(t, err)

	// leaf 0 is on the deepest level, slot 7
	proof, err := tree.Prove(7)
	require.NoError(t, err)
	require.Equal(t, 3, proof.Len())
	require.NoError(t, tree.Verify(hasher, mustNode(t, leaves[0]), proof))

	for k := range proof.Sides {
		flipped := Proof{Siblings: proof.Siblings, Sides: append([]bool{}, proof.Sides...)}
		flipped.Sides[k] = !flipped.Sides[k]
		ok, err := VerifyInclusion(hasher, Positional, mustNode(t, leaves[0]), flipped, tree.Root())
		require.ErrorIs(t, err, ErrVerifyInclusionFailed, "flipped side %d", k)
		require.False(t, ok)
	}

	// leaf 2 sits one level up, slot 4
	proof, err = tree.Prove(4)
	require.NoError(t, err)
	require.Equal(t, 2, proof.Len())
	require.NoError(t, tree.Verify(hasher, mustNode(t, leaves[2]), proof))

	flipped := Proof{Siblings: proof.Siblings, Sides: []bool{!proof.Sides[0], proof.Sides[1]}}
	require.ErrorIs(t, tree.Verify(hasher, mustNode(t, leaves[2]), flipped), ErrVerifyInclusionFailed)

	missing := Proof{Siblings: proof.Siblings}
	require.ErrorIs(t, tree.Verify(hasher, mustNode(t, leaves[2]), missing), ErrMissingSides)
}

func TestProofCommutativeIgnoresSides(t *testing.T) {
	hasher := sha256.New()
	leaves := treetesting.NumberedLeafHashes(5)
	tree, err := Build(hasher, leaves, DepthBalanced, Commutative)
	require.NoError(t, err)

	proof, err := tree.Prove(8)
	require.NoError(t, err)
	require.NoError(t, tree.Verify(hasher, mustNode(t, leaves[0]), Proof{Siblings: proof.Siblings}))
}

func TestVerifyWrongLeaf(t *testing.T) {
	hasher := sha256.New()
	tree, err := Build(hasher, treetesting.NumberedLeafHashes(6), ArbitraryCount, Commutative)
	require.NoError(t, err)

	proof, err := tree.Prove(7)
	require.NoError(t, err)
	ok, err := VerifyInclusion(hasher, Commutative, mustNode(t, treetesting.HashNum(99)), proof, tree.Root())
	require.ErrorIs(t, err, ErrVerifyInclusionFailed)
	require.False(t, ok)
}
