package standardtree

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forestrie/go-merkletree/heaptree"
)

// GetProof returns the inclusion proof for the value at valueIndex, an index
// into the values the tree was built from.
//
// Unless the tree was built WithoutSelfVerify, the proof is replayed against
// the root before it is returned.
func (t *Tree) GetProof(valueIndex int) (heaptree.Proof, error) {
	r, err := t.Entry(valueIndex)
	if err != nil {
		return heaptree.Proof{}, err
	}
	proof, err := t.tree.Prove(r.TreeIndex)
	if err != nil {
		return heaptree.Proof{}, err
	}
	if t.opts.SelfVerify {
		if err := t.tree.Verify(t.opts.NewHasher(), r.Hash, proof); err != nil {
			return heaptree.Proof{}, fmt.Errorf("value %d: %w", valueIndex, err)
		}
	}
	return proof, nil
}

// GetProofByValue looks value up (see LeafLookup) and returns its proof.
// ErrLeafNotFound is returned if no value in the tree has the same encoding.
func (t *Tree) GetProofByValue(value []any) (heaptree.Proof, error) {
	i, err := t.LeafLookup(value)
	if err != nil {
		return heaptree.Proof{}, err
	}
	return t.GetProof(i)
}

// Verify reports whether proof takes leaf to root under the policy of this
// tree. root need not be the root of this tree.
func (t *Tree) Verify(leaf heaptree.Node, proof heaptree.Proof, root heaptree.Node) bool {
	return t.VerifyProof(leaf, proof, root) == nil
}

// VerifyProof is Verify with the reason for any failure.
func (t *Tree) VerifyProof(leaf heaptree.Node, proof heaptree.Proof, root heaptree.Node) error {
	_, err := heaptree.VerifyInclusion(t.opts.NewHasher(), t.tree.Policy(), leaf, proof, root)
	return err
}

// VerifyValue hashes value and verifies it against root using proof.
func (t *Tree) VerifyValue(value []any, proof heaptree.Proof, root heaptree.Node) error {
	leaf, err := t.LeafHash(value)
	if err != nil {
		return err
	}
	return t.VerifyProof(leaf, proof, root)
}

// HexProof returns the siblings of proof as 0x prefixed hex strings.
func HexProof(proof heaptree.Proof) []string {
	out := make([]string, len(proof.Siblings))
	for i, s := range proof.Siblings {
		out[i] = hexutil.Encode(s[:])
	}
	return out
}

// ParseHexProof is the inverse of HexProof. sides may be nil for Commutative
// proofs.
func ParseHexProof(siblings []string, sides []bool) (heaptree.Proof, error) {
	proof := heaptree.Proof{Siblings: make([]heaptree.Node, len(siblings)), Sides: sides}
	for i, s := range siblings {
		b, err := hexutil.Decode(s)
		if err != nil {
			return heaptree.Proof{}, fmt.Errorf("%w: sibling %d: %w", heaptree.ErrInvalidNode, i, err)
		}
		if proof.Siblings[i], err = heaptree.NodeFromBytes(b); err != nil {
			return heaptree.Proof{}, fmt.Errorf("sibling %d: %w", i, err)
		}
	}
	return proof, nil
}

// ParseNode decodes a single 0x prefixed 32 byte hex value.
func ParseNode(s string) (heaptree.Node, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return heaptree.Node{}, fmt.Errorf("%w: %w", heaptree.ErrInvalidNode, err)
	}
	return heaptree.NodeFromBytes(b)
}
