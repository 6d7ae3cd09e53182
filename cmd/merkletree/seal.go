package main

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/forestrie/go-merkletree/sealing"
	"github.com/forestrie/go-merkletree/snapshotstore"
	"github.com/forestrie/go-merkletree/standardtree"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/veraison/go-cose"
)

func (a *app) sealCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Store trees and sign their roots",
	}
	cmd.PersistentFlags().String("store", "", "snapshot store directory")
	cmd.AddCommand(a.sealSignCommand(), a.sealCheckCommand(), a.sealListCommand())
	return cmd
}

func (a *app) openStore() (*snapshotstore.Store, error) {
	dir := a.v.GetString("store")
	if dir == "" {
		return nil, fmt.Errorf("--store is required")
	}
	return snapshotstore.NewStore(a.log, dir)
}

func (a *app) sealSignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Store a snapshot of the tree with a signed root, printing its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			key, err := readPrivateKey(a.v.GetString("key"))
			if err != nil {
				return err
			}
			tree, err := a.loadTree()
			if err != nil {
				return err
			}

			s, err := tree.Dump()
			if err != nil {
				return err
			}
			id := uuid.New()
			if err := store.Put(ctx, id, s); err != nil {
				return err
			}

			seal, err := signTree(tree, key, a.v.GetString("issuer"), a.v.GetString("kid"), id)
			if err != nil {
				return err
			}
			if err := store.PutSeal(ctx, id, seal); err != nil {
				return err
			}
			a.log.Infof("sealed %s: root %s", id, tree.Root())
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	addTreeFlags(cmd)
	cmd.Flags().String("key", "", "PEM encoded EC private key")
	cmd.Flags().String("kid", "merkletree", "key identifier recorded in the seal")
	cmd.Flags().String("issuer", "merkletree", "issuer recorded in the seal")
	return cmd
}

func signTree(tree *standardtree.Tree, key *ecdsa.PrivateKey, issuer, kid string, id uuid.UUID) ([]byte, error) {
	codec, err := sealing.NewRootSignerCodec()
	if err != nil {
		return nil, err
	}
	state, err := sealing.StateOf(tree.HeapTree(), time.Now())
	if err != nil {
		return nil, err
	}
	alg, err := dtcose.CoseAlgForEC(key.PublicKey)
	if err != nil {
		return nil, err
	}
	signer, err := cose.NewSigner(alg, key)
	if err != nil {
		return nil, err
	}
	return sealing.NewRootSigner(issuer, codec).Sign1(signer, kid, &key.PublicKey, id.String(), state, nil)
}

func (a *app) sealCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the seal of a stored tree against its snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(a.v.GetString("id"))
			if err != nil {
				return err
			}
			s, err := store.Get(ctx, id)
			if err != nil {
				return err
			}
			tree, err := standardtree.Load(s)
			if err != nil {
				return err
			}
			if a.v.GetBool("full") {
				if err := tree.Validate(); err != nil {
					return err
				}
			}
			msg, err := store.GetSeal(ctx, id)
			if err != nil {
				return err
			}

			codec, err := sealing.NewRootSignerCodec()
			if err != nil {
				return err
			}
			signed, state, err := sealing.DecodeSignedRoot(codec, msg)
			if err != nil {
				return err
			}
			claims, err := signed.CWTClaimsFromProtectedHeader()
			if err != nil {
				return err
			}
			if claims.Subject != id.String() {
				return fmt.Errorf("%w: seal subject %s", sealing.ErrSealVerifyFailed, claims.Subject)
			}
			if state.LeafCount != uint64(tree.Len()) {
				return fmt.Errorf("%w: seal is for %d leaves, snapshot has %d",
					sealing.ErrSealVerifyFailed, state.LeafCount, tree.Len())
			}
			root := tree.RootNode()
			state.Root = root.Bytes()

			// without --pubkey the seal is checked against the key it carries
			var keys sealing.PublicKeyProvider = dtcose.NewCWTPublicKeyProvider(signed)
			if path := a.v.GetString("pubkey"); path != "" {
				publicKey, err := readPublicKey(path)
				if err != nil {
					return err
				}
				keys = dtcose.NewPublicKeyProvider(signed, publicKey)
			}
			if err := sealing.VerifySignedRoot(codec, keys, signed, state, nil); err != nil {
				return err
			}
			a.log.Debugf("checked %s from %s, sealed at %d", id, claims.Issuer, state.Timestamp)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s verified\n", id, tree.Root())
			return nil
		},
	}
	cmd.Flags().String("id", "", "id of the stored tree")
	cmd.Flags().String("pubkey", "", "PEM encoded public key, the key in the seal is used if not set")
	cmd.Flags().Bool("full", false, "also recompute every leaf and interior node")
	return cmd
}

func (a *app) sealListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the ids of the stored trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			ids, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func readPEM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM data", path)
	}
	return block.Bytes, nil
}

func readPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	der, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ec, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s: not an EC key", path)
	}
	return ec, nil
}

func readPublicKey(path string) (crypto.PublicKey, error) {
	der, err := readPEM(path)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}
