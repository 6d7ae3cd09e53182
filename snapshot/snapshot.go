// Package snapshot is the portable form of a built tree: every node, every
// original value annotated with the slot it landed in, the leaf encoding and a
// format tag.
//
// Loading a snapshot never recomputes a hash. It checks the shape, the node
// widths, the format tag and that the values map one to one onto the leaf
// slots, and refuses anything else with ErrSnapshotFormat.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forestrie/go-merkletree/heaptree"
)

const (
	// FormatStandardV1 is the widely deployed format, it implies Commutative
	// pair hashing.
	FormatStandardV1 = "standard-v1"
	// FormatPositionalV1 implies Positional pair hashing.
	FormatPositionalV1 = "positional-v1"
)

var ErrSnapshotFormat = errors.New("snapshot: invalid snapshot")

// ValueEntry binds an original value to its slot in the tree. Entries are
// kept in original value order.
type ValueEntry struct {
	Value     []any `json:"value" cbor:"1,keyasint"`
	TreeIndex int   `json:"treeIndex" cbor:"2,keyasint"`
}

type Snapshot struct {
	Format       string       `json:"format"`
	Tree         []string     `json:"tree"`
	Values       []ValueEntry `json:"values"`
	LeafEncoding []string     `json:"leafEncoding"`

	// Layout records how the tree was built. It is informational, each value
	// carries its own TreeIndex.
	Layout string `json:"layout,omitempty"`
}

// FormatFor returns the format tag for trees hashed under policy
func FormatFor(policy heaptree.HashPolicy) (string, error) {
	switch policy {
	case heaptree.Commutative:
		return FormatStandardV1, nil
	case heaptree.Positional:
		return FormatPositionalV1, nil
	}
	return "", fmt.Errorf("%w: %v", heaptree.ErrUnknownPolicy, policy)
}

// PolicyFor returns the hash policy a format tag implies
func PolicyFor(format string) (heaptree.HashPolicy, error) {
	switch format {
	case FormatStandardV1:
		return heaptree.Commutative, nil
	case FormatPositionalV1:
		return heaptree.Positional, nil
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrSnapshotFormat, format)
}

// Dump captures tree and its values. values must be in original order, one per
// leaf. layout may be heaptree.UnknownLayout.
func Dump(tree *heaptree.Tree, values []ValueEntry, leafEncoding []string, layout heaptree.Layout) (Snapshot, error) {
	format, err := FormatFor(tree.Policy())
	if err != nil {
		return Snapshot{}, err
	}

	s := Snapshot{
		Format:       format,
		Tree:         make([]string, tree.Len()),
		Values:       make([]ValueEntry, len(values)),
		LeafEncoding: append([]string{}, leafEncoding...),
	}
	if layout.Valid() {
		s.Layout = layout.String()
	}
	for i, n := range tree.Nodes() {
		s.Tree[i] = hexutil.Encode(n[:])
	}
	for i, v := range values {
		s.Values[i] = ValueEntry{Value: portableTuple(v.Value), TreeIndex: v.TreeIndex}
	}

	// A dump that would not load is a bug in the caller, catch it here.
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Validate checks everything Load relies on.
func (s Snapshot) Validate() error {
	if _, err := PolicyFor(s.Format); err != nil {
		return err
	}
	if _, err := s.Nodes(); err != nil {
		return err
	}
	if s.Layout != "" {
		if _, err := heaptree.ParseLayout(s.Layout); err != nil {
			return fmt.Errorf("%w: %w", ErrSnapshotFormat, err)
		}
	}
	if len(s.LeafEncoding) == 0 {
		return fmt.Errorf("%w: empty leaf encoding", ErrSnapshotFormat)
	}

	size := len(s.Tree)
	n := heaptree.LeafCount(size)
	if len(s.Values) != n {
		return fmt.Errorf("%w: %d values for %d leaves", ErrSnapshotFormat, len(s.Values), n)
	}

	seen := make(map[int]int, n)
	for i, v := range s.Values {
		if !heaptree.IsLeaf(size, v.TreeIndex) {
			return fmt.Errorf(
				"%w: value %d has tree index %d, not a leaf slot", ErrSnapshotFormat, i, v.TreeIndex)
		}
		if prev, ok := seen[v.TreeIndex]; ok {
			return fmt.Errorf(
				"%w: values %d and %d share tree index %d", ErrSnapshotFormat, prev, i, v.TreeIndex)
		}
		seen[v.TreeIndex] = i
		if len(v.Value) != len(s.LeafEncoding) {
			return fmt.Errorf(
				"%w: value %d has %d fields, leaf encoding has %d",
				ErrSnapshotFormat, i, len(v.Value), len(s.LeafEncoding))
		}
	}
	return nil
}

// Nodes decodes the tree nodes, checking the count is 2n-1 and each is 32 bytes.
func (s Snapshot) Nodes() ([]heaptree.Node, error) {
	if !heaptree.ValidTreeSize(len(s.Tree)) {
		return nil, fmt.Errorf("%w: %d nodes is not 2n-1", ErrSnapshotFormat, len(s.Tree))
	}
	nodes := make([]heaptree.Node, len(s.Tree))
	for i, h := range s.Tree {
		b, err := hexutil.Decode(h)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrSnapshotFormat, i, err)
		}
		nodes[i], err = heaptree.NodeFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrSnapshotFormat, i, err)
		}
	}
	return nodes, nil
}

// Load validates s and reconstructs its tree without recomputing any hash.
func Load(s Snapshot) (*heaptree.Tree, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	policy, err := PolicyFor(s.Format)
	if err != nil {
		return nil, err
	}
	nodes, err := s.Nodes()
	if err != nil {
		return nil, err
	}
	return heaptree.FromNodes(nodes, policy)
}
