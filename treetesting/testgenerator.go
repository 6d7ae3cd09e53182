package treetesting

import (
	"encoding/binary"
	"fmt"
	"hash"
	"math/rand"
	"strings"

	"golang.org/x/crypto/sha3"
)

// BytesEncoding is the leaf encoding of the values returned by RepeatedDigitValues
var BytesEncoding = []string{"bytes"}

// AddressAmountEncoding is the leaf encoding of the values returned by
// TestGenerator.AddressAmountValues
var AddressAmountEncoding = []string{"address", "uint256"}

func NewHasher() hash.Hash { return sha3.NewLegacyKeccak256() }

// RepeatedDigitValues returns n single field values, each a 20 byte string
// whose hex is a single repeated digit: 0x1111.., 0x2222.., .. 0xFFFF.., then
// wrapping round. n = 15 gives the classic demonstration set.
func RepeatedDigitValues(n int) [][]any {
	const digits = "123456789ABCDEF"
	values := make([][]any, n)
	for i := range values {
		d := string(digits[i%len(digits)])
		values[i] = []any{"0x" + strings.Repeat(d, 40)}
	}
	return values
}

// HashNum returns keccak256(num_be8), a stand in for a hashed leaf value.
func HashNum(num uint64) []byte {
	b := [8]byte{}
	binary.BigEndian.PutUint64(b[:], num)
	h := NewHasher()
	h.Write(b[:])
	return h.Sum(nil)
}

// NumberedLeafHashes returns HashNum(0) .. HashNum(n-1)
func NumberedLeafHashes(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaves[i] = HashNum(uint64(i))
	}
	return leaves
}

type TestGeneratorConfig struct {
	// Seed is fixed by tests so the generated data is the same from run to run.
	Seed int64
}

// TestGenerator produces reproducible pseudo random leaf values
type TestGenerator struct {
	cfg TestGeneratorConfig
	rng *rand.Rand
}

func NewTestGenerator(cfg TestGeneratorConfig) *TestGenerator {
	return &TestGenerator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// AddressAmountValues returns n (address, uint256) values in the JSON native form.
func (g *TestGenerator) AddressAmountValues(n int) [][]any {
	values := make([][]any, n)
	for i := range values {
		addr := make([]byte, 20)
		_, _ = g.rng.Read(addr)
		values[i] = []any{
			fmt.Sprintf("0x%x", addr),
			fmt.Sprintf("%d", g.rng.Uint64()),
		}
	}
	return values
}
