package sealing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

// RootSigner produces seals over tree states.
type RootSigner struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewRootSigner(issuer string, cborCodec dtcbor.CBORCodec) RootSigner {
	return RootSigner{issuer: issuer, cborCodec: cborCodec}
}

// Sign1 signs state and returns the encoded message with the root detached.
// subject names the tree, for example the id it is stored under. The CWT
// claims carry the issuer, subject and publicKey as a cnf key.
func (rs RootSigner) Sign1(
	coseSigner cose.Signer, keyIdentifier string, publicKey *ecdsa.PublicKey,
	subject string, state TreeState, external []byte,
) ([]byte, error) {
	payload, err := rs.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: coseSigner.Algorithm(),
				cose.HeaderLabelKeyID:     []byte(keyIdentifier),
				dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
					rs.issuer, subject, keyIdentifier, coseSigner.Algorithm(), *publicKey),
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, coseSigner); err != nil {
		return nil, err
	}

	// verifiers must get the root from the tree
	state.Root = nil
	if msg.Payload, err = rs.cborCodec.MarshalCBOR(state); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

func newDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}

// DecodeSignedRoot decodes the message and the TreeState it carries. The
// returned state has no root. See VerifySignedRoot.
func DecodeSignedRoot(
	codec dtcbor.CBORCodec, msg []byte,
) (*dtcose.CoseSign1Message, TreeState, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg, newDecOptions()...)
	if err != nil {
		return nil, TreeState{}, fmt.Errorf("sealing: %w", err)
	}
	var unverifiedState TreeState
	if err = codec.UnmarshalInto(signed.Payload, &unverifiedState); err != nil {
		return nil, TreeState{}, fmt.Errorf("sealing: %w", err)
	}
	return signed, unverifiedState, nil
}

// PublicKeyProvider supplies the key and algorithm a seal is verified with.
type PublicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// VerifySignedRoot puts state, with the root filled in by the caller, back
// into signed and checks the signature with the key from keyProvider.
//
// Verification is a three step process:
//  1. DecodeSignedRoot to get the state
//  2. Obtain the root for state.LeafCount, from the tree or a snapshot of it,
//     and set state.Root
//  3. Call this function
//
// dtcose.NewPublicKeyProvider checks against a known key,
// dtcose.NewCWTPublicKeyProvider against the key the seal carries.
func VerifySignedRoot(
	codec dtcbor.CBORCodec, keyProvider PublicKeyProvider,
	signed *dtcose.CoseSign1Message, state TreeState, external []byte,
) error {
	var err error
	if signed.Payload, err = codec.MarshalCBOR(state); err != nil {
		return err
	}
	if err = signed.VerifyWithProvider(keyProvider, external); err != nil {
		return fmt.Errorf("%w: %w", ErrSealVerifyFailed, err)
	}
	return nil
}
