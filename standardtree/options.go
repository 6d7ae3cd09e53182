package standardtree

import (
	"hash"

	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/leafcodec"
	"golang.org/x/crypto/sha3"
)

type Options struct {
	Policy heaptree.HashPolicy
	Layout heaptree.Layout

	// NewHasher is called once per operation that hashes, so a Tree can be
	// shared between goroutines.
	NewHasher func() hash.Hash
	Encoder   leafcodec.Encoder

	// SortLeaves places leaves in ascending leaf hash order rather than value
	// order.
	SortLeaves bool

	// SelfVerify has GetProof check each proof against the root before
	// returning it.
	SelfVerify bool
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Policy:     heaptree.Commutative,
		Layout:     heaptree.DepthBalanced,
		NewHasher:  NewKeccak256,
		Encoder:    leafcodec.ABI{},
		SelfVerify: true,
	}
}

// NewKeccak256 is the default hasher
func NewKeccak256() hash.Hash { return sha3.NewLegacyKeccak256() }

func WithHashPolicy(policy heaptree.HashPolicy) Option {
	return func(o *Options) { o.Policy = policy }
}

func WithLayout(layout heaptree.Layout) Option {
	return func(o *Options) { o.Layout = layout }
}

// WithHasher sets the hash function. The digest size must be 32 bytes.
func WithHasher(newHasher func() hash.Hash) Option {
	return func(o *Options) { o.NewHasher = newHasher }
}

func WithEncoder(enc leafcodec.Encoder) Option {
	return func(o *Options) { o.Encoder = enc }
}

// WithSortedLeaves sorts the leaf hashes ascending before they are placed. The
// slot of every value is still recorded, so proofs by value index are
// unaffected.
func WithSortedLeaves() Option {
	return func(o *Options) { o.SortLeaves = true }
}

func WithoutSelfVerify() Option {
	return func(o *Options) { o.SelfVerify = false }
}
