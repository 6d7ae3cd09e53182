package heaptree

import "math/bits"

// Log2Uint64 efficiently computes floor(log2(num)). num must be > 0
func Log2Uint64(num uint64) uint64 {
	return uint64(bits.Len64(num) - 1)
}

func IsPow2(num uint64) bool {
	return num != 0 && num&(num-1) == 0
}
