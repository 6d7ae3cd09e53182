// Package sealing signs tree roots.
//
// A seal is a COSE Sign1 message whose payload is the CBOR encoded TreeState.
// The root is removed from the payload after signing, so a verifier must
// obtain the root from the tree (or a snapshot of it) and put it back before
// the signature will check.
package sealing

import (
	"errors"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/snapshot"
)

var ErrSealVerifyFailed = errors.New("sealing: seal did not verify")

// TreeState is what a seal commits to.
type TreeState struct {
	// Format is the snapshot format tag of the tree, it fixes the pair hash
	// policy a verifier must use.
	Format    string `cbor:"1,keyasint"`
	LeafCount uint64 `cbor:"2,keyasint"`
	Root      []byte `cbor:"3,keyasint"`
	// Timestamp is the unix time (milliseconds) when the state was taken.
	// Including it allows the same root to be sealed again.
	Timestamp int64 `cbor:"4,keyasint"`
}

// StateOf returns the state of tree at now.
func StateOf(tree *heaptree.Tree, now time.Time) (TreeState, error) {
	format, err := snapshot.FormatFor(tree.Policy())
	if err != nil {
		return TreeState{}, err
	}
	root := tree.Root()
	return TreeState{
		Format:    format,
		LeafCount: uint64(tree.LeafCount()),
		Root:      root.Bytes(),
		Timestamp: now.UnixMilli(),
	}, nil
}

// NewRootSignerCodec returns the deterministic codec seals are encoded with.
// Unsigned integers decode to uint64.
func NewRootSignerCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}
