package heaptree

import "fmt"

// Proof is the ordered list of sibling values from a leaf up to, but not
// including, the root.
//
// Sides[k] is true when Siblings[k] is the left operand of the pair hash at
// step k. Sides are needed to verify Positional proofs. Commutative
// verification ignores them.
type Proof struct {
	Siblings []Node
	Sides    []bool
}

func (p Proof) Len() int { return len(p.Siblings) }

// InclusionProof collects the proof for the leaf at index i of nodes.
//
// For the 5 leaf tree below and i=7 we would obtain
//
//	Siblings: [H(8), H(4), H(2)]
//	Sides:    [false, false, false]
//
// and for i=4
//
//	Siblings: [H(3), H(2)]
//	Sides:    [true, false]
//
//	0          0
//	         /   \
//	1       1     2
//	       / \   / \
//	2     3   4 5   6
//	     / \
//	3   7   8
func InclusionProof(nodes []Node, i int) (Proof, error) {
	path, err := InclusionProofPath(len(nodes), i)
	if err != nil {
		return Proof{}, err
	}
	proof := Proof{
		Siblings: make([]Node, len(path)),
		Sides:    ProofSides(i),
	}
	for k, iSibling := range path {
		proof.Siblings[k] = nodes[iSibling]
	}
	return proof, nil
}

// InclusionProofPath returns the indices of the witness nodes for leaf i in a
// tree of size nodes.
//
// This allows tooling to individually audit the proof path node values.
func InclusionProofPath(size int, i int) ([]int, error) {
	if !ValidTreeSize(size) {
		return nil, fmt.Errorf("%w: got %d nodes", ErrInvalidTreeSize, size)
	}
	if i < 0 || i >= size {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, size)
	}
	if !IsLeaf(size, i) {
		return nil, fmt.Errorf("%w: %d", ErrNotLeaf, i)
	}

	path := make([]int, 0, IndexDepth(i))
	for i > 0 {
		path = append(path, Sibling(i))
		i = Parent(i)
	}
	return path, nil
}

// ProofSides returns, for each step of the proof for index i, whether the
// sibling is the left operand. When i is even it is a right child and its
// sibling at i-1 is on the left.
func ProofSides(i int) []bool {
	sides := make([]bool, 0, IndexDepth(i))
	for i > 0 {
		sides = append(sides, i%2 == 0)
		i = Parent(i)
	}
	return sides
}
