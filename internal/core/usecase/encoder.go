package usecase

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nalin/ethereum-pubsub/internal/core/entity"
	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
)

// EncodeTransaction renders a transaction record as JSON:
//   - byte sequences become lowercase hex without a 0x prefix
//   - TxRecord and map values become plain objects (TxRecord keeps insertion
//     order, maps are emitted with sorted keys)
//   - integers, floats, strings, booleans and nil pass through
//   - lists are rendered element by element
//
// Any other value type fails with an EncodingErr.
func EncodeTransaction(rec *entity.TxRecord) ([]byte, error) {
	if rec == nil {
		return nil, apperr.NewEncodingErr("transaction record is required", nil)
	}
	v, err := renderValue("", rec)
	if err != nil {
		return nil, err
	}
	out, err := marshalJSON(v)
	if err != nil {
		return nil, apperr.NewEncodingErr("failed to marshal transaction", err)
	}
	return out, nil
}

type orderedField struct {
	key   string
	value any
}

type orderedObject []orderedField

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := marshalJSON(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON is json.Marshal without HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func renderValue(path string, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, bool, json.Number:
		return val, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return val, nil
	case *big.Int:
		if val == nil {
			return nil, nil
		}
		return val, nil
	case big.Int:
		return &val, nil
	case *hexutil.Big:
		if val == nil {
			return nil, nil
		}
		return (*big.Int)(val), nil
	case hexutil.Uint64:
		return uint64(val), nil
	case hexutil.Uint:
		return uint(val), nil
	case []byte:
		return hex.EncodeToString(val), nil
	case hexutil.Bytes:
		return hex.EncodeToString(val), nil
	case common.Hash:
		return hex.EncodeToString(val[:]), nil
	case *common.Hash:
		if val == nil {
			return nil, nil
		}
		return hex.EncodeToString(val[:]), nil
	case common.Address:
		return hex.EncodeToString(val[:]), nil
	case *common.Address:
		if val == nil {
			return nil, nil
		}
		return hex.EncodeToString(val[:]), nil
	case *entity.TxRecord:
		if val == nil {
			return nil, nil
		}
		return renderRecord(path, val)
	case entity.TxRecord:
		return renderRecord(path, &val)
	case map[string]any:
		return renderMap(path, val)
	case []any:
		return renderList(path, len(val), func(i int) any { return val[i] })
	case []*entity.TxRecord:
		return renderList(path, len(val), func(i int) any { return val[i] })
	case [][]byte:
		return renderList(path, len(val), func(i int) any { return val[i] })
	case []common.Hash:
		return renderList(path, len(val), func(i int) any { return val[i] })
	case []string:
		return renderList(path, len(val), func(i int) any { return val[i] })
	default:
		return nil, apperr.NewEncodingErr(fmt.Sprintf("field %q has unsupported type %T", path, v), nil)
	}
}

func renderRecord(path string, rec *entity.TxRecord) (orderedObject, error) {
	out := make(orderedObject, 0, rec.Len())
	for _, f := range rec.Fields() {
		v, err := renderValue(joinPath(path, f.Key), f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, orderedField{key: f.Key, value: v})
	}
	return out, nil
}

func renderMap(path string, m map[string]any) (orderedObject, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(orderedObject, 0, len(m))
	for _, k := range keys {
		v, err := renderValue(joinPath(path, k), m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, orderedField{key: k, value: v})
	}
	return out, nil
}

func renderList(path string, n int, at func(int) any) ([]any, error) {
	out := make([]any, n)
	for i := 0; i < n; i++ {
		v, err := renderValue(fmt.Sprintf("%s[%d]", path, i), at(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
