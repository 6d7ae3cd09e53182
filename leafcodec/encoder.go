// Package leafcodec turns a typed leaf value into the bytes that are hashed
// into a tree leaf.
//
// A leaf value is an ordered tuple of fields, described by an equally long list
// of type tags (the leaf encoding). The ABI encoder accepts the Solidity ABI
// type names ("address", "uint256", "bytes", "bytes32", "string", "bool", and
// fixed or dynamic arrays of those) and produces abi.encode(types, value).
package leafcodec

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	ErrEncoding        = errors.New("leafcodec: value does not match the leaf encoding")
	ErrUnsupportedType = errors.New("leafcodec: unsupported type")
)

// Encoder produces the canonical byte encoding of value under types.
//
// Implementations must be deterministic: structurally equal values must
// produce identical bytes.
type Encoder interface {
	Encode(types []string, value []any) ([]byte, error)
}

// ABI is the Solidity ABI encoder. The zero value is ready to use.
type ABI struct{}

var _ Encoder = ABI{}

// Encode returns abi.encode(types, value).
//
// Field values may be given either as the go-ethereum native types
// (common.Address, *big.Int, []byte, [N]byte, ...) or in the JSON native form
// used by snapshots: 0x hex strings for addresses and byte strings, decimal or
// 0x hex strings (or json.Number) for integers, and []any for arrays.
func (ABI) Encode(types []string, value []any) ([]byte, error) {
	if len(types) != len(value) {
		return nil, fmt.Errorf("%w: %d types, %d fields", ErrEncoding, len(types), len(value))
	}

	args, err := Arguments(types)
	if err != nil {
		return nil, err
	}

	fields := make([]any, len(value))
	for k, v := range value {
		fields[k], err = normalize(args[k].Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d (%s): %w", ErrEncoding, k, types[k], err)
		}
	}

	encoded, err := args.Pack(fields...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return encoded, nil
}

// Arguments parses the type tags into an unnamed abi argument list.
func Arguments(types []string) (abi.Arguments, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: empty leaf encoding", ErrEncoding)
	}
	args := make(abi.Arguments, len(types))
	for k, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedType, t, err)
		}
		args[k] = abi.Argument{Type: typ}
	}
	return args, nil
}
