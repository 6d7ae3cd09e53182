package heaptree

import "fmt"

// BottomLayerWidth returns the number of leaves that sit on the deepest level
// of a complete binary tree over leafCount leaves. The value is always even and
// is 0 when leafCount is a power of two (every leaf is on one level).
//
// For leafCount = 5, the deepest level holds 2 leaves (a, b) and the
// remaining 3 (c, d, e) sit one level up:
//
//	0          0
//	         /   \
//	1       1     2
//	       / \   / \
//	2     3   c d   e
//	     / \
//	3   a   b
func BottomLayerWidth(leafCount int) int {
	if IsPow2(uint64(leafCount)) {
		return 0
	}
	depth := Log2Uint64(uint64(leafCount))
	return 2 * (leafCount - (1 << depth))
}

// TreeIndex returns the slot of the leafIndex'th leaf in a tree of leafCount
// leaves.
//
// DepthBalanced reverses the leaves into the tail of the node slice:
//
//	treeIndex = L - leafIndex - 1
//
// ArbitraryCount fills the deepest (partially populated) level from the left
// with the first BottomLayerWidth leaves, then the level above with the rest:
//
//	treeIndex = L - w + leafIndex        leafIndex <  w
//	treeIndex = L - w + leafIndex - n    leafIndex >= w
//
// Where L = 2n-1 and w = BottomLayerWidth(n). Both mappings are bijections
// from [0, n) onto the leaf slots [n-1, 2n-2].
func TreeIndex(leafCount int, leafIndex int, layout Layout) (int, error) {
	if leafCount < 1 {
		return 0, ErrEmptyInput
	}
	if leafIndex < 0 || leafIndex >= leafCount {
		return 0, fmt.Errorf("%w: leaf %d of %d", ErrIndexOutOfRange, leafIndex, leafCount)
	}
	size := TreeSize(leafCount)

	switch layout {
	case DepthBalanced:
		return size - leafIndex - 1, nil
	case ArbitraryCount:
		w := BottomLayerWidth(leafCount)
		if leafIndex < w {
			return size - w + leafIndex, nil
		}
		return size - w + leafIndex - leafCount, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnknownLayout, layout)
	}
}

// LeafTreeIndices returns TreeIndex for every leaf, in leaf order.
func LeafTreeIndices(leafCount int, layout Layout) ([]int, error) {
	if leafCount < 1 {
		return nil, ErrEmptyInput
	}
	out := make([]int, leafCount)
	for i := range out {
		ti, err := TreeIndex(leafCount, i, layout)
		if err != nil {
			return nil, err
		}
		out[i] = ti
	}
	return out, nil
}
