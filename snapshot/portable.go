package snapshot

import (
	"encoding/json"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// portableTuple returns a copy of value in which every field survives a JSON
// round trip with the same abi encoding: byte strings become 0x hex, big
// integers become decimal strings, and lists become []any.
func portableTuple(value []any) []any {
	out := make([]any, len(value))
	for i, v := range value {
		out[i] = portable(v)
	}
	return out
}

func portable(v any) any {
	switch x := v.(type) {
	case nil, string, bool, json.Number:
		return x
	case []byte:
		return hexutil.Encode(x)
	case hexutil.Bytes:
		return hexutil.Encode(x)
	case common.Address:
		return x.Hex()
	case *big.Int:
		return x.String()
	case big.Int:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return hexutil.Encode(b)
		}
		return portableList(rv)
	case reflect.Slice:
		return portableList(rv)
	}
	return v
}

func portableList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = portable(rv.Index(i).Interface())
	}
	return out
}
