package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nalin/ethereum-pubsub/internal/core/entity"
	"github.com/tidwall/gjson"
)

// Field names the node reports as hex quantities.
var quantityFields = map[string]struct{}{
	"blockNumber":          {},
	"chainId":              {},
	"gas":                  {},
	"gasPrice":             {},
	"maxFeePerBlobGas":     {},
	"maxFeePerGas":         {},
	"maxPriorityFeePerGas": {},
	"nonce":                {},
	"transactionIndex":     {},
	"type":                 {},
	"v":                    {},
	"value":                {},
	"yParity":              {},
}

// Field names the node reports as hex data. For list fields the rule applies
// to every element.
var bytesFields = map[string]struct{}{
	"blobVersionedHashes": {},
	"blockHash":           {},
	"data":                {},
	"hash":                {},
	"input":               {},
	"r":                   {},
	"s":                   {},
	"storageKeys":         {},
}

var addressFields = map[string]struct{}{
	"address": {},
	"from":    {},
	"to":      {},
}

// decodeTransaction walks a raw eth_getTransactionByHash result in document
// order and builds a record with typed values. Unknown fields pass through as
// strings, numbers, booleans or nested records.
func decodeTransaction(raw []byte) (*entity.TxRecord, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid json")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", root.Type)
	}
	return decodeObject(root)
}

func decodeObject(obj gjson.Result) (*entity.TxRecord, error) {
	rec := &entity.TxRecord{}
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		var v any
		v, err = decodeValue(key.String(), value)
		if err != nil {
			err = fmt.Errorf("field %q: %w", key.String(), err)
			return false
		}
		rec.Set(key.String(), v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeValue(name string, value gjson.Result) (any, error) {
	switch {
	case value.Type == gjson.Null:
		return nil, nil
	case value.IsArray():
		elems := value.Array()
		out := make([]any, 0, len(elems))
		for i, el := range elems {
			v, err := decodeValue(name, el)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case value.IsObject():
		return decodeObject(value)
	case value.Type == gjson.String:
		return decodeString(name, value.Str)
	case value.Type == gjson.Number:
		return json.Number(value.Raw), nil
	case value.Type == gjson.True, value.Type == gjson.False:
		return value.Bool(), nil
	default:
		return nil, fmt.Errorf("unexpected json type %s", value.Type)
	}
}

func decodeString(name, s string) (any, error) {
	if _, ok := quantityFields[name]; ok {
		return parseQuantity(s)
	}
	if _, ok := bytesFields[name]; ok {
		return hexutil.Decode(s)
	}
	if _, ok := addressFields[name]; ok {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s).Hex(), nil
	}
	return s, nil
}

// parseQuantity accepts 0x-prefixed hex including leading zeros, which some
// nodes emit for signature fields.
func parseQuantity(s string) (*big.Int, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || digits == "" {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return n, nil
}
