package heaptree

/*

# Array backed binary hash trees

A tree over n leaves is held in a single slice of 2n-1 fixed width nodes. No
node carries a pointer. The shape is the classic binary heap layout:

	          0
	       /     \
	      1       2
	     / \     / \
	    3   4   5   6
	   / \
	  7   8

	parent(i) = (i-1)/2
	left(p)   = 2p+1
	right(p)  = 2p+2

A node at i > 0 is a left child when i is odd and a right child when i is even.
That rule holds for every layout, so proofs, side flags and verification only
ever need the index of the proven node.

The n-1 interior nodes always occupy [0, n-2] and the leaves always occupy
[n-1, 2n-2]. Which leaf goes in which of those slots is decided by a Layout:

  - DepthBalanced reverses the leaves into the tail of the slice. It is the
    placement used by the widely deployed "standard" tree format, which expects
    the caller to have ordered the leaves already.
  - ArbitraryCount places leaves left to right, filling the partially
    populated deepest level first and then the level above it. This is the
    complete binary tree you get from a heap.

How two children combine is decided by a HashPolicy:

  - Commutative sorts the two 32 byte operands before hashing, so a verifier
    needs only the sibling values.
  - Positional hashes left then right, so proofs carry a side flag per step.

Leaf hashes are H(H(encoded value)). Interior nodes are a single application of
H over 64 bytes. The double application keeps leaf values out of the space of
interior node values, so an interior node can not be presented as a leaf.

Everything in this package is a pure function of its arguments. Hashers are
supplied by the caller and are Reset before use; a hash.Hash is not safe for
concurrent use, so concurrent callers should each bring their own.
*/
