package standardtree

import (
	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/snapshot"
)

// Dump captures the tree as a snapshot.
func (t *Tree) Dump() (snapshot.Snapshot, error) {
	values := make([]snapshot.ValueEntry, len(t.records))
	for i, r := range t.records {
		values[i] = snapshot.ValueEntry{Value: r.Value, TreeIndex: r.TreeIndex}
	}
	return snapshot.Dump(t.tree, values, t.leafEncoding, t.opts.Layout)
}

// Load rebuilds a tree from s without recomputing any hash. The hash policy
// comes from the format tag and any WithHashPolicy option is ignored.
//
// Leaf records take their hash from the slot named by each value, so a
// snapshot whose values do not match its nodes loads fine. Call Validate to
// check.
func Load(s snapshot.Snapshot, opts ...Option) (*Tree, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tree, err := snapshot.Load(s)
	if err != nil {
		return nil, err
	}
	o.Policy = tree.Policy()
	o.Layout = heaptree.UnknownLayout
	if s.Layout != "" {
		if o.Layout, err = heaptree.ParseLayout(s.Layout); err != nil {
			return nil, err
		}
	}

	records := make([]LeafRecord, len(s.Values))
	for i, v := range s.Values {
		node, err := tree.Node(v.TreeIndex)
		if err != nil {
			return nil, err
		}
		records[i] = LeafRecord{
			Value:      append([]any{}, v.Value...),
			ValueIndex: i,
			TreeIndex:  v.TreeIndex,
			Hash:       node,
		}
	}
	return newTree(o, tree, s.LeafEncoding, records), nil
}
