// Package standardtree builds hash trees over typed values.
//
// Each value is an ordered tuple of fields described by the leaf encoding. The
// leaf for a value is H(H(encode(leafEncoding, value))), the leaves are placed
// by a heaptree layout and the interior is filled under the chosen hash
// policy. Values are addressed either by their position in the input or by
// the value itself.
package standardtree

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/leafcodec"
)

var (
	ErrEncoding     = leafcodec.ErrEncoding
	ErrLeafNotFound = errors.New("standardtree: leaf not found")
	ErrLeafMismatch = errors.New("standardtree: value does not hash to its leaf")
)

// LeafRecord ties an input value to its leaf hash and its slot in the tree.
type LeafRecord struct {
	Value      []any
	ValueIndex int
	TreeIndex  int
	Hash       heaptree.Node
}

// Tree is immutable once built. All methods are safe for concurrent use.
type Tree struct {
	opts         Options
	tree         *heaptree.Tree
	leafEncoding []string
	records      []LeafRecord
	// leaf hash to value index, first occurrence wins
	lookup map[heaptree.Node]int
}

// Of builds a tree from values, in their given order, using leafEncoding to
// encode each one.
func Of(values [][]any, leafEncoding []string, opts ...Option) (*Tree, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(values) == 0 {
		return nil, heaptree.ErrEmptyInput
	}

	hasher := o.NewHasher()
	records := make([]LeafRecord, len(values))
	for i, v := range values {
		h, err := leafHash(o, hasher, leafEncoding, v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		records[i] = LeafRecord{
			Value:      append([]any{}, v...),
			ValueIndex: i,
			Hash:       h,
		}
	}

	// order[k] is the value index of the k'th leaf
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	if o.SortLeaves {
		sort.SliceStable(order, func(a, b int) bool {
			return bytes.Compare(records[order[a]].Hash[:], records[order[b]].Hash[:]) < 0
		})
	}

	slots, err := heaptree.LeafTreeIndices(len(order), o.Layout)
	if err != nil {
		return nil, err
	}
	leaves := make([][]byte, len(order))
	for k, vi := range order {
		leaves[k] = records[vi].Hash.Bytes()
		records[vi].TreeIndex = slots[k]
	}

	tree, err := heaptree.Build(hasher, leaves, o.Layout, o.Policy)
	if err != nil {
		return nil, err
	}
	return newTree(o, tree, leafEncoding, records), nil
}

func newTree(o Options, tree *heaptree.Tree, leafEncoding []string, records []LeafRecord) *Tree {
	t := &Tree{
		opts:         o,
		tree:         tree,
		leafEncoding: append([]string{}, leafEncoding...),
		records:      records,
		lookup:       make(map[heaptree.Node]int, len(records)),
	}
	for i, r := range records {
		if _, ok := t.lookup[r.Hash]; !ok {
			t.lookup[r.Hash] = i
		}
	}
	return t
}

func leafHash(o Options, hasher hash.Hash, leafEncoding []string, value []any) (heaptree.Node, error) {
	encoded, err := o.Encoder.Encode(leafEncoding, value)
	if err != nil {
		if errors.Is(err, ErrEncoding) {
			return heaptree.Node{}, err
		}
		return heaptree.Node{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return heaptree.HashLeaf(hasher, encoded)
}

// Root returns the root as 0x prefixed hex.
func (t *Tree) Root() string {
	root := t.tree.Root()
	return hexutil.Encode(root[:])
}

func (t *Tree) RootNode() heaptree.Node     { return t.tree.Root() }
func (t *Tree) Len() int                    { return t.tree.LeafCount() }
func (t *Tree) Policy() heaptree.HashPolicy { return t.tree.Policy() }
func (t *Tree) LeafEncoding() []string      { return append([]string{}, t.leafEncoding...) }
func (t *Tree) Nodes() []heaptree.Node      { return t.tree.Nodes() }
func (t *Tree) HeapTree() *heaptree.Tree    { return t.tree }

// Layout is heaptree.UnknownLayout for a tree loaded from a snapshot without
// a layout field.
func (t *Tree) Layout() heaptree.Layout { return t.opts.Layout }

// LeafHash returns the leaf hash value would have in this tree. value need not
// be in the tree.
func (t *Tree) LeafHash(value []any) (heaptree.Node, error) {
	return leafHash(t.opts, t.opts.NewHasher(), t.leafEncoding, value)
}

// Entries returns a record for every value, in value order.
func (t *Tree) Entries() []LeafRecord {
	out := make([]LeafRecord, len(t.records))
	for i, r := range t.records {
		r.Value = append([]any{}, r.Value...)
		out[i] = r
	}
	return out
}

// Entry returns the record for the value at valueIndex
func (t *Tree) Entry(valueIndex int) (LeafRecord, error) {
	if valueIndex < 0 || valueIndex >= len(t.records) {
		return LeafRecord{}, fmt.Errorf(
			"%w: value %d of %d", heaptree.ErrIndexOutOfRange, valueIndex, len(t.records))
	}
	r := t.records[valueIndex]
	r.Value = append([]any{}, r.Value...)
	return r, nil
}

// LeafLookup returns the index of the first value whose encoding is identical
// to that of value.
func (t *Tree) LeafLookup(value []any) (int, error) {
	h, err := t.LeafHash(value)
	if err != nil {
		return 0, err
	}
	i, ok := t.lookup[h]
	if !ok {
		return 0, fmt.Errorf("%w: %x", ErrLeafNotFound, h[:])
	}
	return i, nil
}

// Validate recomputes every leaf from its value and every interior node from
// its children.
func (t *Tree) Validate() error {
	hasher := t.opts.NewHasher()
	for _, r := range t.records {
		h, err := leafHash(t.opts, hasher, t.leafEncoding, r.Value)
		if err != nil {
			return fmt.Errorf("value %d: %w", r.ValueIndex, err)
		}
		node, err := t.tree.Node(r.TreeIndex)
		if err != nil {
			return err
		}
		if h != node {
			return fmt.Errorf("%w: value %d, tree index %d", ErrLeafMismatch, r.ValueIndex, r.TreeIndex)
		}
	}
	return t.tree.Validate(hasher)
}

// Render writes the tree as ascii art. See heaptree.Render
func (t *Tree) Render(w io.Writer) error {
	return heaptree.Render(w, t.tree.Nodes())
}
