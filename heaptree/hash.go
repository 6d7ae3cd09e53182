package heaptree

import (
	"bytes"
	"fmt"
	"hash"
)

// HashLeaf computes:
//
//	H( H( encoded ) )
//
// encoded is the output of the typed value encoder for a single leaf value.
func HashLeaf(hasher hash.Hash, encoded []byte) (Node, error) {
	inner, err := sum(hasher, encoded)
	if err != nil {
		return Node{}, err
	}
	return sum(hasher, inner[:])
}

// HashPair computes the parent of left and right under policy.
//
//	Commutative: H( min(left, right) || max(left, right) )
//	Positional:  H( left || right )
func HashPair(hasher hash.Hash, policy HashPolicy, left, right Node) (Node, error) {
	switch policy {
	case Commutative:
		if bytes.Compare(left[:], right[:]) > 0 {
			left, right = right, left
		}
	case Positional:
	default:
		return Node{}, fmt.Errorf("%w: %v", ErrUnknownPolicy, policy)
	}
	return sum(hasher, left[:], right[:])
}

// sum resets hasher, writes parts and returns the digest
func sum(hasher hash.Hash, parts ...[]byte) (Node, error) {
	hasher.Reset()
	for _, p := range parts {
		_, _ = hasher.Write(p)
	}
	var out Node
	digest := hasher.Sum(nil)
	if len(digest) != HashBytes {
		return Node{}, ErrBadHashSize
	}
	copy(out[:], digest)
	return out, nil
}

func checkHasher(hasher hash.Hash) error {
	if hasher.Size() != HashBytes {
		return fmt.Errorf("%w: got %d", ErrBadHashSize, hasher.Size())
	}
	return nil
}
