package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/forestrie/go-merkletree/heaptree"
	"github.com/forestrie/go-merkletree/leafcodec"
	"github.com/forestrie/go-merkletree/standardtree"
	"github.com/spf13/cobra"
)

var errVerifyFailed = errors.New("proof did not verify")

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "root",
		Short: "Print the root of the tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.loadTree()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tree.Root())
			if a.v.GetBool("render") {
				return tree.Render(out)
			}
			return nil
		},
	}
	addTreeFlags(cmd)
	cmd.Flags().Bool("render", false, "also print the whole tree")
	return cmd
}

func (a *app) proofCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Print the inclusion proof for a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.loadTree()
			if err != nil {
				return err
			}

			index := a.v.GetInt("index")
			if raw := a.v.GetString("value"); raw != "" {
				value, err := parseValue(raw)
				if err != nil {
					return err
				}
				if index, err = tree.LeafLookup(value); err != nil {
					return err
				}
			}
			r, err := tree.Entry(index)
			if err != nil {
				return err
			}
			proof, err := tree.GetProof(index)
			if err != nil {
				return err
			}
			encoded, err := leafcodec.ABI{}.Encode(tree.LeafEncoding(), r.Value)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(r.Value)
			if err != nil {
				return err
			}
			a.log.Debugf("proof for value %d at tree index %d", index, r.TreeIndex)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "root: %s\n", tree.Root())
			fmt.Fprintf(out, "value: %s\n", raw)
			fmt.Fprintf(out, "encoded: %s\n", hexutil.Encode(encoded))
			fmt.Fprintf(out, "leaf: %s\n", hexutil.Encode(r.Hash[:]))
			fmt.Fprintf(out, "treeIndex: %d\n", r.TreeIndex)
			fmt.Fprintf(out, "proof: [%s]\n", strings.Join(standardtree.HexProof(proof), ","))
			if tree.Policy() == heaptree.Positional {
				fmt.Fprintf(out, "sides: [%s]\n", joinBools(proof.Sides))
			}
			if a.v.GetBool("render") {
				return tree.Render(out)
			}
			return nil
		},
	}
	addTreeFlags(cmd)
	cmd.Flags().Int("index", 0, "index of the value in the input")
	cmd.Flags().String("value", "", "the value as a json array, overrides --index")
	cmd.Flags().Bool("render", false, "also print the whole tree")
	return cmd
}

func (a *app) dumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write a snapshot of the tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.loadTree()
			if err != nil {
				return err
			}
			s, err := tree.Dump()
			if err != nil {
				return err
			}
			path := a.v.GetString("out")
			data, err := encodeSnapshot(path, s)
			if err != nil {
				return err
			}
			if path == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			a.log.Infof("writing %s snapshot of %d leaves to %s", s.Format, len(s.Values), path)
			return os.WriteFile(path, data, 0644)
		},
	}
	addTreeFlags(cmd)
	cmd.Flags().String("out", "", "snapshot file, .cbor for binary, stdout if not set")
	return cmd
}

func (a *app) verifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an inclusion proof against a root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := heaptree.ParseHashPolicy(a.v.GetString("policy"))
			if err != nil {
				return err
			}
			root, err := standardtree.ParseNode(a.v.GetString("root"))
			if err != nil {
				return fmt.Errorf("root: %w", err)
			}
			leaf, err := a.verifyLeaf()
			if err != nil {
				return err
			}
			sides, err := parseBools(a.v.GetString("sides"))
			if err != nil {
				return err
			}
			proof, err := standardtree.ParseHexProof(splitList(strings.Trim(a.v.GetString("proof"), "[]")), sides)
			if err != nil {
				return err
			}

			ok, err := heaptree.VerifyInclusion(standardtree.NewKeccak256(), policy, leaf, proof, root)
			a.log.Debugf("verify %x: %v %v", leaf[:], ok, err)
			if err != nil {
				return fmt.Errorf("%w: %w", errVerifyFailed, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "verified")
			return nil
		},
	}
	f := cmd.Flags()
	f.String("policy", heaptree.Commutative.String(), "pair hashing, commutative or positional")
	f.String("root", "", "expected root, 0x hex")
	f.String("leaf", "", "leaf hash, 0x hex")
	f.String("value", "", "the value as a json array, hashed with --encoding, instead of --leaf")
	f.String("encoding", "bytes", "comma separated abi types of the leaf fields")
	f.String("proof", "", "comma separated sibling hashes, leaf first")
	f.String("sides", "", "comma separated side flags, needed for positional proofs")
	return cmd
}

func (a *app) verifyLeaf() (heaptree.Node, error) {
	raw := a.v.GetString("value")
	if raw == "" {
		leaf, err := standardtree.ParseNode(a.v.GetString("leaf"))
		if err != nil {
			return heaptree.Node{}, fmt.Errorf("leaf: %w", err)
		}
		return leaf, nil
	}
	value, err := parseValue(raw)
	if err != nil {
		return heaptree.Node{}, err
	}
	encoded, err := leafcodec.ABI{}.Encode(splitList(a.v.GetString("encoding")), value)
	if err != nil {
		return heaptree.Node{}, err
	}
	return heaptree.HashLeaf(standardtree.NewKeccak256(), encoded)
}

// parseValue reads a single value given as a json array of fields
func parseValue(raw string) ([]any, error) {
	values, err := leafcodec.DecodeValues(strings.NewReader("[" + raw + "]"))
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected one value, got %d", leafcodec.ErrEncoding, len(values))
	}
	return values[0], nil
}

func joinBools(bs []bool) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = strconv.FormatBool(b)
	}
	return strings.Join(parts, ",")
}

func parseBools(s string) ([]bool, error) {
	parts := splitList(strings.Trim(s, "[]"))
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]bool, len(parts))
	for i, p := range parts {
		b, err := strconv.ParseBool(p)
		if err != nil {
			return nil, fmt.Errorf("sides: %w", err)
		}
		out[i] = b
	}
	return out, nil
}
