package heaptree

import (
	"fmt"
	"hash"
)

// Tree is a built, immutable hash tree. The zero value is not usable, obtain
// one from Build or FromNodes.
//
// A Tree never changes after construction, so any number of goroutines may
// call its methods concurrently, provided each brings its own hasher.
type Tree struct {
	nodes  []Node
	policy HashPolicy
}

// FromNodes adopts a copy of nodes as a tree without recomputing any hashes.
//
// Only the shape is checked. Use Validate to check the interior nodes.
func FromNodes(nodes []Node, policy HashPolicy) (*Tree, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPolicy, policy)
	}
	if len(nodes) == 0 {
		return nil, ErrEmptyInput
	}
	if !ValidTreeSize(len(nodes)) {
		return nil, fmt.Errorf("%w: got %d nodes", ErrInvalidTreeSize, len(nodes))
	}
	t := &Tree{nodes: make([]Node, len(nodes)), policy: policy}
	copy(t.nodes, nodes)
	return t, nil
}

func (t *Tree) Root() Node         { return t.nodes[0] }
func (t *Tree) Len() int           { return len(t.nodes) }
func (t *Tree) LeafCount() int     { return LeafCount(len(t.nodes)) }
func (t *Tree) Policy() HashPolicy { return t.policy }

// Node returns the value at index i
func (t *Tree) Node(i int) (Node, error) {
	if i < 0 || i >= len(t.nodes) {
		return Node{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(t.nodes))
	}
	return t.nodes[i], nil
}

// Nodes returns a copy of the node slice, root first.
func (t *Tree) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// IsLeaf reports whether i is a leaf slot of this tree
func (t *Tree) IsLeaf(i int) bool {
	return IsLeaf(len(t.nodes), i)
}

// Prove returns the inclusion proof for the leaf at treeIndex. See InclusionProof
func (t *Tree) Prove(treeIndex int) (Proof, error) {
	return InclusionProof(t.nodes, treeIndex)
}

// Verify checks proof takes leaf to the root of this tree.
func (t *Tree) Verify(hasher hash.Hash, leaf Node, proof Proof) error {
	_, err := VerifyInclusion(hasher, t.policy, leaf, proof, t.nodes[0])
	return err
}

// Validate recomputes every interior node. See ValidateNodes
func (t *Tree) Validate(hasher hash.Hash) error {
	return ValidateNodes(hasher, t.policy, t.nodes)
}
