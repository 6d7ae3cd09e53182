package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/leafcodec"
	"github.com/forestrie/go-merkletree/snapshot"
	"github.com/forestrie/go-merkletree/standardtree"
	"github.com/spf13/cobra"
)

// addTreeFlags registers the flags every command that needs a tree accepts.
func addTreeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("values", "", "json file holding an array of leaf values, each an array of fields")
	f.String("encoding", "bytes", "comma separated abi types of the leaf fields")
	f.String("policy", heaptree.Commutative.String(), "pair hashing, commutative or positional")
	f.String("layout", heaptree.DepthBalanced.String(), "leaf placement, depth-balanced or arbitrary-count")
	f.Bool("sorted", false, "sort the leaf hashes before placing them")
	f.String("snapshot", "", "load the tree from a snapshot (.json or .cbor) instead of values")
}

// demoValues is used when neither values nor a snapshot are given.
func demoValues() [][]any {
	const digits = "123456789ABCDEF"
	values := make([][]any, len(digits))
	for i := range values {
		values[i] = []any{"0x" + strings.Repeat(string(digits[i]), 40)}
	}
	return values
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *app) loadTree() (*standardtree.Tree, error) {
	if path := a.v.GetString("snapshot"); path != "" {
		s, err := readSnapshot(path)
		if err != nil {
			return nil, err
		}
		a.log.Debugf("loaded snapshot %s: %s, %d leaves", path, s.Format, len(s.Values))
		return standardtree.Load(s)
	}

	policy, err := heaptree.ParseHashPolicy(a.v.GetString("policy"))
	if err != nil {
		return nil, err
	}
	layout, err := heaptree.ParseLayout(a.v.GetString("layout"))
	if err != nil {
		return nil, err
	}
	opts := []standardtree.Option{
		standardtree.WithHashPolicy(policy),
		standardtree.WithLayout(layout),
	}
	if a.v.GetBool("sorted") {
		opts = append(opts, standardtree.WithSortedLeaves())
	}

	values := demoValues()
	if path := a.v.GetString("values"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if values, err = leafcodec.DecodeValues(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	encoding := splitList(a.v.GetString("encoding"))
	a.log.Debugf("building %s %s tree over %d values", policy, layout, len(values))
	return standardtree.Of(values, encoding, opts...)
}

func readSnapshot(path string) (snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	if filepath.Ext(path) == ".cbor" {
		codec, err := snapshot.NewCBORCodec()
		if err != nil {
			return snapshot.Snapshot{}, err
		}
		return codec.UnmarshalCBOR(data)
	}
	return snapshot.UnmarshalJSON(data)
}

func encodeSnapshot(path string, s snapshot.Snapshot) ([]byte, error) {
	if filepath.Ext(path) == ".cbor" {
		codec, err := snapshot.NewCBORCodec()
		if err != nil {
			return nil, err
		}
		return codec.MarshalCBOR(s)
	}
	return snapshot.MarshalJSON(s)
}
