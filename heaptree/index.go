package heaptree

import "math/bits"

// TreeSize returns the node count for a tree of leafCount leaves
func TreeSize(leafCount int) int {
	return 2*leafCount - 1
}

// LeafCount returns the leaf count for a tree of size nodes. size must be odd.
func LeafCount(size int) int {
	return (size + 1) / 2
}

// ValidTreeSize is true if size == 2n-1 for some n >= 1
func ValidTreeSize(size int) bool {
	return size >= 1 && size%2 == 1
}

func Parent(i int) int     { return (i - 1) / 2 }
func LeftChild(p int) int  { return 2*p + 1 }
func RightChild(p int) int { return 2*p + 2 }

// IsLeftChild is true for odd indices. The root is neither a left nor a right child.
func IsLeftChild(i int) bool {
	return i%2 == 1
}

// Sibling returns the index of the node sharing a parent with i. i must be > 0
func Sibling(i int) int {
	if IsLeftChild(i) {
		return i + 1
	}
	return i - 1
}

// IsLeaf reports whether index i holds a leaf in a tree of size nodes.
//
// The interior nodes of a 2n-1 tree are always [0, n-2], whatever the layout.
func IsLeaf(size int, i int) bool {
	return i >= size-LeafCount(size) && i < size
}

// IndexDepth returns the number of edges between i and the root. This is also
// the length of the inclusion proof for i.
func IndexDepth(i int) int {
	return bits.Len64(uint64(i)+1) - 1
}
