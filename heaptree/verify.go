package heaptree

import (
	"fmt"
	"hash"
)

// IncludedRoot replays proof from leaf and returns the root it commits to.
//
// Under Positional the proof must carry exactly one side flag per sibling.
func IncludedRoot(hasher hash.Hash, policy HashPolicy, leaf Node, proof Proof) (Node, error) {
	if policy == Positional && len(proof.Sides) != len(proof.Siblings) {
		return Node{}, fmt.Errorf(
			"%w: %d siblings, %d sides", ErrMissingSides, len(proof.Siblings), len(proof.Sides))
	}
	if err := checkHasher(hasher); err != nil {
		return Node{}, err
	}

	var err error
	cur := leaf
	for k, sibling := range proof.Siblings {
		// Commutative hashing sorts the operands, so the order we present
		// them in only matters for Positional.
		if policy == Positional && proof.Sides[k] {
			cur, err = HashPair(hasher, policy, sibling, cur)
		} else {
			cur, err = HashPair(hasher, policy, cur, sibling)
		}
		if err != nil {
			return Node{}, err
		}
	}
	return cur, nil
}

// VerifyInclusion returns true if leaf combined with proof reproduces root.
//
// A mismatch is reported as an error wrapping ErrVerifyInclusionFailed. The
// degenerate single leaf tree has an empty proof, and the leaf must equal the
// root.
func VerifyInclusion(hasher hash.Hash, policy HashPolicy, leaf Node, proof Proof, root Node) (bool, error) {
	got, err := IncludedRoot(hasher, policy, leaf, proof)
	if err != nil {
		return false, err
	}
	if got != root {
		return false, fmt.Errorf(
			"%w: proven root %x does not match %x", ErrVerifyInclusionFailed, got[:], root[:])
	}
	return true, nil
}
