package heaptree

import (
	"fmt"
	"hash"
)

// ValidateNodes recomputes every interior node from its children and checks
// it against the stored value.
func ValidateNodes(hasher hash.Hash, policy HashPolicy, nodes []Node) error {
	if !ValidTreeSize(len(nodes)) {
		return fmt.Errorf("%w: got %d nodes", ErrInvalidTreeSize, len(nodes))
	}
	if err := checkHasher(hasher); err != nil {
		return err
	}
	for i := len(nodes) - 1 - LeafCount(len(nodes)); i >= 0; i-- {
		want, err := HashPair(hasher, policy, nodes[LeftChild(i)], nodes[RightChild(i)])
		if err != nil {
			return err
		}
		if want != nodes[i] {
			return fmt.Errorf("%w: index %d", ErrInvalidTree, i)
		}
	}
	return nil
}
