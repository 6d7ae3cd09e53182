package snapshot

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/treetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T, n int, layout heaptree.Layout, policy heaptree.HashPolicy) (*heaptree.Tree, []ValueEntry) {
	t.Helper()
	tree, err := heaptree.Build(treetesting.NewHasher(), treetesting.NumberedLeafHashes(n), layout, policy)
	require.NoError(t, err)

	values := make([]ValueEntry, n)
	for i, v := range treetesting.RepeatedDigitValues(n) {
		ti, err := heaptree.TreeIndex(n, i, layout)
		require.NoError(t, err)
		values[i] = ValueEntry{Value: v, TreeIndex: ti}
	}
	return tree, values
}

func TestDumpLoadJSON(t *testing.T) {
	for _, policy := range []heaptree.HashPolicy{heaptree.Commutative, heaptree.Positional} {
		for _, n := range []int{1, 2, 3, 5, 8, 15} {
			tree, values := testTree(t, n, heaptree.ArbitraryCount, policy)

			s, err := Dump(tree, values, treetesting.BytesEncoding, heaptree.ArbitraryCount)
			require.NoError(t, err)
			assert.Equal(t, "arbitrary-count", s.Layout)

			data, err := MarshalJSON(s)
			require.NoError(t, err)

			s2, err := UnmarshalJSON(data)
			require.NoError(t, err)
			assert.Equal(t, s, s2)

			loaded, err := Load(s2)
			require.NoError(t, err)
			assert.Equal(t, tree.Nodes(), loaded.Nodes())
			assert.Equal(t, policy, loaded.Policy())
			assert.Equal(t, values, s2.Values)
		}
	}
}

func TestDumpFormatTags(t *testing.T) {
	tree, values := testTree(t, 4, heaptree.DepthBalanced, heaptree.Commutative)
	s, err := Dump(tree, values, treetesting.BytesEncoding, heaptree.DepthBalanced)
	require.NoError(t, err)
	assert.Equal(t, FormatStandardV1, s.Format)
	assert.True(t, strings.HasPrefix(s.Tree[0], "0x"))
	assert.Len(t, s.Tree[0], 66)

	tree, values = testTree(t, 4, heaptree.DepthBalanced, heaptree.Positional)
	s, err = Dump(tree, values, treetesting.BytesEncoding, 0)
	require.NoError(t, err)
	assert.Equal(t, FormatPositionalV1, s.Format)
	assert.Equal(t, "", s.Layout)
}

func TestDumpRejectsBadValues(t *testing.T) {
	tree, values := testTree(t, 3, heaptree.ArbitraryCount, heaptree.Commutative)
	_, err := Dump(tree, values[:2], treetesting.BytesEncoding, heaptree.ArbitraryCount)
	require.ErrorIs(t, err, ErrSnapshotFormat)
}

func TestLoadValidation(t *testing.T) {
	tree, values := testTree(t, 3, heaptree.ArbitraryCount, heaptree.Commutative)
	good, err := Dump(tree, values, treetesting.BytesEncoding, heaptree.ArbitraryCount)
	require.NoError(t, err)

	clone := func() Snapshot {
		s := good
		s.Tree = append([]string{}, good.Tree...)
		s.Values = append([]ValueEntry{}, good.Values...)
		s.LeafEncoding = append([]string{}, good.LeafEncoding...)
		return s
	}

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"unknown format", func(s *Snapshot) { s.Format = "standard-v2" }},
		{"empty tree", func(s *Snapshot) { s.Tree = nil }},
		{"even length", func(s *Snapshot) { s.Tree = s.Tree[:4] }},
		{"short node", func(s *Snapshot) { s.Tree[1] = s.Tree[1][:64] }},
		{"long node", func(s *Snapshot) { s.Tree[1] = s.Tree[1] + "00" }},
		{"not hex", func(s *Snapshot) { s.Tree[0] = "0x" + strings.Repeat("zz", 32) }},
		{"no prefix", func(s *Snapshot) { s.Tree[0] = s.Tree[0][2:] }},
		{"bad layout", func(s *Snapshot) { s.Layout = "sideways" }},
		{"empty encoding", func(s *Snapshot) { s.LeafEncoding = nil }},
		{"missing value", func(s *Snapshot) { s.Values = s.Values[:2] }},
		{"interior tree index", func(s *Snapshot) { s.Values[0].TreeIndex = 1 }},
		{"tree index past end", func(s *Snapshot) { s.Values[0].TreeIndex = 5 }},
		{"shared tree index", func(s *Snapshot) { s.Values[0].TreeIndex = s.Values[1].TreeIndex }},
		{"field count", func(s *Snapshot) { s.Values[2].Value = []any{"0x11", "0x22"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := clone()
			tt.mutate(&s)

			loaded, err := Load(s)
			require.ErrorIs(t, err, ErrSnapshotFormat)
			require.Nil(t, loaded)

			data, err := MarshalJSON(s)
			require.NoError(t, err)
			_, err = UnmarshalJSON(data)
			require.ErrorIs(t, err, ErrSnapshotFormat)
		})
	}
}

func TestUnmarshalJSONStandardShape(t *testing.T) {
	tree, values := testTree(t, 2, heaptree.DepthBalanced, heaptree.Commutative)
	s, err := Dump(tree, values, treetesting.BytesEncoding, 0)
	require.NoError(t, err)

	// the shape written by other implementations of the standard format
	doc := map[string]any{
		"format":       "standard-v1",
		"tree":         s.Tree,
		"values":       []map[string]any{{"value": values[0].Value, "treeIndex": 2}, {"value": values[1].Value, "treeIndex": 1}},
		"leafEncoding": []string{"bytes"},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	got, err := UnmarshalJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = UnmarshalJSON([]byte(`{"format": `))
	require.ErrorIs(t, err, ErrSnapshotFormat)
}

func TestCBORRoundTrip(t *testing.T) {
	codec, err := NewCBORCodec()
	require.NoError(t, err)

	tree, values := testTree(t, 7, heaptree.ArbitraryCount, heaptree.Positional)
	s, err := Dump(tree, values, treetesting.BytesEncoding, heaptree.ArbitraryCount)
	require.NoError(t, err)

	data, err := codec.MarshalCBOR(s)
	require.NoError(t, err)
	again, err := codec.MarshalCBOR(s)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	got, err := codec.UnmarshalCBOR(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = codec.UnmarshalCBOR(data[:len(data)/2])
	require.ErrorIs(t, err, ErrSnapshotFormat)
}

func TestPortable(t *testing.T) {
	addr := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	got := portableTuple([]any{
		[]byte{0x01, 0x02},
		big.NewInt(1234),
		addr,
		[4]byte{0xde, 0xad, 0xbe, 0xef},
		[]any{big.NewInt(1), "x"},
		json.Number("7"),
		uint64(9),
		true,
	})
	assert.Equal(t, []any{
		"0x0102",
		"1234",
		addr.Hex(),
		"0xdeadbeef",
		[]any{"1", "x"},
		json.Number("7"),
		uint64(9),
		true,
	}, got)
}
