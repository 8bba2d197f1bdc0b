package entity

// Field is a single named value of a TxRecord.
type Field struct {
	Key   string
	Value any
}

// TxRecord is an ordered mapping of transaction field names to values, as
// returned by the chain node. Insertion order is preserved; setting an
// existing key replaces its value in place. No schema is enforced.
//
// Values are expected to be integers, strings, booleans, nil, byte sequences
// or nested TxRecords (and lists of those). The zero value is ready to use.
type TxRecord struct {
	fields []Field
	index  map[string]int
}

// NewTxRecord builds a record from fields in order.
func NewTxRecord(fields ...Field) *TxRecord {
	r := &TxRecord{}
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

func (r *TxRecord) Set(key string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

func (r *TxRecord) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Fields returns the fields in insertion order. The slice must not be modified.
func (r *TxRecord) Fields() []Field {
	if r == nil {
		return nil
	}
	return r.fields
}

func (r *TxRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}
