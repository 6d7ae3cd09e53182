package snapshot

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor/v2"
)

// cborSnapshot is the binary form. Nodes are raw 32 byte strings rather than
// hex.
type cborSnapshot struct {
	Format       string       `cbor:"1,keyasint"`
	Tree         [][]byte     `cbor:"2,keyasint"`
	Values       []ValueEntry `cbor:"3,keyasint"`
	LeafEncoding []string     `cbor:"4,keyasint"`
	Layout       string       `cbor:"5,keyasint,omitempty"`
}

// CBORCodec encodes snapshots deterministically, so equal snapshots always
// produce equal bytes.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBORCodec() (CBORCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return CBORCodec{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return CBORCodec{}, err
	}
	return CBORCodec{enc: enc, dec: dec}, nil
}

func (c CBORCodec) MarshalCBOR(s Snapshot) ([]byte, error) {
	cs := cborSnapshot{
		Format:       s.Format,
		Tree:         make([][]byte, len(s.Tree)),
		Values:       s.Values,
		LeafEncoding: s.LeafEncoding,
		Layout:       s.Layout,
	}
	for i, h := range s.Tree {
		b, err := hexutil.Decode(h)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrSnapshotFormat, i, err)
		}
		cs.Tree[i] = b
	}
	return c.enc.Marshal(cs)
}

// UnmarshalCBOR decodes and validates a CBOR snapshot.
func (c CBORCodec) UnmarshalCBOR(data []byte) (Snapshot, error) {
	var cs cborSnapshot
	if err := c.dec.Unmarshal(data, &cs); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrSnapshotFormat, err)
	}
	s := Snapshot{
		Format:       cs.Format,
		Tree:         make([]string, len(cs.Tree)),
		Values:       make([]ValueEntry, len(cs.Values)),
		LeafEncoding: cs.LeafEncoding,
		Layout:       cs.Layout,
	}
	// cbor hands back []byte and big.Int, keep the snapshot JSON friendly
	for i, v := range cs.Values {
		s.Values[i] = ValueEntry{Value: portableTuple(v.Value), TreeIndex: v.TreeIndex}
	}
	for i, b := range cs.Tree {
		s.Tree[i] = hexutil.Encode(b)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
