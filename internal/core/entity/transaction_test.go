package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxRecord_PreservesInsertionOrder(t *testing.T) {
	r := NewTxRecord(Field{Key: "hash", Value: []byte{1}}, Field{Key: "value", Value: 1000})
	r.Set("from", "0xabc")
	r.Set("value", 2000)

	keys := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		keys = append(keys, f.Key)
	}
	require.Equal(t, []string{"hash", "value", "from"}, keys)

	v, ok := r.Get("value")
	require.True(t, ok)
	require.Equal(t, 2000, v)

	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestTxRecord_ZeroAndNil(t *testing.T) {
	var zero TxRecord
	zero.Set("a", 1)
	require.Equal(t, 1, zero.Len())

	var nilRec *TxRecord
	require.Equal(t, 0, nilRec.Len())
	require.Nil(t, nilRec.Fields())
	_, ok := nilRec.Get("a")
	require.False(t, ok)
}
