package heaptree

import (
	"fmt"
	"hash"
)

// Build places leafHashes according to layout and fills the interior nodes
// bottom up using policy.
//
// Every leaf hash must be exactly HashBytes long. For a single leaf the
// returned tree is that leaf, and no hashing takes place.
func Build(hasher hash.Hash, leafHashes [][]byte, layout Layout, policy HashPolicy) (*Tree, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownPolicy, policy)
	}
	if !layout.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLayout, layout)
	}
	for i, leaf := range leafHashes {
		if len(leaf) != HashBytes {
			return nil, fmt.Errorf("%w: leaf %d has %d bytes", ErrInvalidNode, i, len(leaf))
		}
	}
	n := len(leafHashes)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if err := checkHasher(hasher); err != nil {
		return nil, err
	}

	nodes := make([]Node, TreeSize(n))
	for i, leaf := range leafHashes {
		ti, err := TreeIndex(n, i, layout)
		if err != nil {
			return nil, err
		}
		copy(nodes[ti][:], leaf)
	}

	// the last interior node is n-2, when n == 1 the loop does not run.
	for i := len(nodes) - 1 - n; i >= 0; i-- {
		parent, err := HashPair(hasher, policy, nodes[LeftChild(i)], nodes[RightChild(i)])
		if err != nil {
			return nil, err
		}
		nodes[i] = parent
	}

	return &Tree{nodes: nodes, policy: policy}, nil
}
