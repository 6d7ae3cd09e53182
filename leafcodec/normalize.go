package leafcodec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errNotInteger = errors.New("not an integer")
	errIntRange   = errors.New("integer out of range")
	errBadAddress = errors.New("not a 20 byte address")
	errBadBool    = errors.New("not a bool")
	errBadString  = errors.New("not a string")
	errBadBytes   = errors.New("not a byte string")
	errBadLength  = errors.New("wrong length")
	errNotList    = errors.New("not a list")
)

// Integer strings are decimal or 0x hex, optionally negative. Other base
// prefixes, leading zero octal and digit separators are not integers.
var (
	decimalInt = regexp.MustCompile(`^-?[0-9]+$`)
	hexInt     = regexp.MustCompile(`^-?0[xX][0-9a-fA-F]+$`)
)

// integers beyond 2^53 can not be carried exactly by a float64
const maxSafeFloat = 1 << 53

// normalize converts v into the go type the abi packer expects for typ.
func normalize(typ abi.Type, v any) (any, error) {
	switch typ.T {
	case abi.IntTy, abi.UintTy:
		return normalizeInt(typ, v)
	case abi.AddressTy:
		return normalizeAddress(v)
	case abi.BoolTy:
		return normalizeBool(v)
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T", errBadString, v)
		}
		return s, nil
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy:
		return normalizeFixedBytes(typ, v)
	case abi.SliceTy, abi.ArrayTy:
		return normalizeList(typ, v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ.String())
	}
}

func toBigInt(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, errNotInteger
		}
		return new(big.Int).Set(x), nil
	case big.Int:
		return new(big.Int).Set(&x), nil
	case json.Number:
		n, ok := new(big.Int).SetString(string(x), 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errNotInteger, x)
		}
		return n, nil
	case string:
		return parseIntString(x)
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > maxSafeFloat {
			return nil, fmt.Errorf("%w: %v", errNotInteger, x)
		}
		return big.NewInt(int64(x)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("%w: %T", errNotInteger, v)
}

func parseIntString(s string) (*big.Int, error) {
	var n *big.Int
	var ok bool
	switch {
	case decimalInt.MatchString(s):
		n, ok = new(big.Int).SetString(s, 10)
	case hexInt.MatchString(s):
		digits := strings.TrimPrefix(s, "-")
		n, ok = new(big.Int).SetString(digits[2:], 16)
		if ok && digits != s {
			n.Neg(n)
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", errNotInteger, s)
	}
	return n, nil
}

func normalizeInt(typ abi.Type, v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}

	if typ.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%w: %s for %s", errIntRange, n, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		lowest := new(big.Int).Neg(limit)
		if n.Cmp(lowest) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("%w: %s for %s", errIntRange, n, typ.String())
		}
	}

	// The packer wants the exact go type for the 8, 16, 32 and 64 bit
	// widths, and *big.Int for everything else.
	goType := typ.GetType()
	if goType == reflect.TypeOf(&big.Int{}) {
		return n, nil
	}
	if typ.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
}

func normalizeAddress(v any) (common.Address, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case [common.AddressLength]byte:
		return common.Address(x), nil
	case string:
		if !common.IsHexAddress(x) {
			return common.Address{}, fmt.Errorf("%w: %q", errBadAddress, x)
		}
		return common.HexToAddress(x), nil
	case []byte:
		if len(x) != common.AddressLength {
			return common.Address{}, fmt.Errorf("%w: %d bytes", errBadAddress, len(x))
		}
		return common.BytesToAddress(x), nil
	}
	return common.Address{}, fmt.Errorf("%w: %T", errBadAddress, v)
}

func normalizeBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, fmt.Errorf("%w: %q", errBadBool, x)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %T", errBadBool, v)
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case hexutil.Bytes:
		return []byte(x), nil
	case common.Hash:
		return x.Bytes(), nil
	case string:
		b, err := hexutil.Decode(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadBytes, err)
		}
		return b, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return b, nil
	}
	return nil, fmt.Errorf("%w: %T", errBadBytes, v)
}

func normalizeFixedBytes(typ abi.Type, v any) (any, error) {
	b, err := toBytes(v)
	if err != nil {
		return nil, err
	}
	if len(b) != typ.Size {
		return nil, fmt.Errorf("%w: %d bytes for %s", errBadLength, len(b), typ.String())
	}
	out := reflect.New(typ.GetType()).Elem()
	reflect.Copy(out, reflect.ValueOf(b))
	return out.Interface(), nil
}

func normalizeList(typ abi.Type, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: %T", errNotList, v)
	}
	n := rv.Len()

	var out reflect.Value
	if typ.T == abi.ArrayTy {
		if n != typ.Size {
			return nil, fmt.Errorf("%w: %d elements for %s", errBadLength, n, typ.String())
		}
		out = reflect.New(typ.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(typ.GetType(), n, n)
	}

	for k := 0; k < n; k++ {
		elem, err := normalize(*typ.Elem, rv.Index(k).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", k, err)
		}
		out.Index(k).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}
