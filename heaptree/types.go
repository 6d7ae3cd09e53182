package heaptree

import (
	"errors"
	"fmt"
)

// HashBytes is the fixed width of every node in the tree.
const HashBytes = 32

// Node is a single tree value, a leaf hash or an interior pair hash.
type Node [HashBytes]byte

// Bytes returns a copy of the node value as a slice.
func (n Node) Bytes() []byte {
	b := make([]byte, HashBytes)
	copy(b, n[:])
	return b
}

// NodeFromBytes checks b is exactly HashBytes long and returns it as a Node.
func NodeFromBytes(b []byte) (Node, error) {
	var n Node
	if len(b) != HashBytes {
		return n, fmt.Errorf("%w: got %d bytes", ErrInvalidNode, len(b))
	}
	copy(n[:], b)
	return n, nil
}

// HashPolicy selects how two sibling nodes are combined into their parent.
type HashPolicy uint8

const (
	// Commutative sorts the operands (unsigned, byte wise) before hashing.
	Commutative HashPolicy = iota + 1
	// Positional hashes the left operand followed by the right operand.
	Positional
)

func (p HashPolicy) String() string {
	switch p {
	case Commutative:
		return "commutative"
	case Positional:
		return "positional"
	default:
		return fmt.Sprintf("HashPolicy(%d)", uint8(p))
	}
}

func (p HashPolicy) Valid() bool {
	return p == Commutative || p == Positional
}

// ParseHashPolicy accepts the names produced by HashPolicy.String
func ParseHashPolicy(s string) (HashPolicy, error) {
	switch s {
	case "commutative":
		return Commutative, nil
	case "positional":
		return Positional, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Layout selects the slot each leaf occupies. See TreeIndex.
type Layout uint8

const (
	// UnknownLayout is carried by trees loaded from snapshots that did not
	// record a layout. It can not build a tree.
	UnknownLayout Layout = iota
	DepthBalanced
	ArbitraryCount
)

func (l Layout) String() string {
	switch l {
	case DepthBalanced:
		return "depth-balanced"
	case ArbitraryCount:
		return "arbitrary-count"
	case UnknownLayout:
		return "unknown"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

func (l Layout) Valid() bool {
	return l == DepthBalanced || l == ArbitraryCount
}

// ParseLayout accepts the names produced by Layout.String
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "depth-balanced":
		return DepthBalanced, nil
	case "arbitrary-count":
		return ArbitraryCount, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

var (
	ErrBadHashSize           = errors.New("heaptree: hasher output must be 32 bytes")
	ErrInvalidNode           = errors.New("heaptree: tree nodes must be 32 bytes")
	ErrEmptyInput            = errors.New("heaptree: expected a non-zero number of leaves")
	ErrInvalidTreeSize       = errors.New("heaptree: tree size must be 2n-1 for some n >= 1")
	ErrIndexOutOfRange       = errors.New("heaptree: index out of range")
	ErrNotLeaf               = errors.New("heaptree: index is not a leaf")
	ErrUnknownPolicy         = errors.New("heaptree: unknown hash policy")
	ErrUnknownLayout         = errors.New("heaptree: unknown layout")
	ErrMissingSides          = errors.New("heaptree: positional proofs need one side flag per sibling")
	ErrInvalidTree           = errors.New("heaptree: interior node does not match its children")
	ErrVerifyInclusionFailed = errors.New("heaptree: verify inclusion failed")
)
