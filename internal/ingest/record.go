package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// RawRecord is one decoded input record. Fields may be missing or carry the
// wrong JSON type; accessors coerce leniently and validation happens later.
type RawRecord map[string]interface{}

// Hash computes a stable content hash of the record. json.Marshal writes map
// keys in sorted order, so the same record always hashes identically
// regardless of input field order.
func (r RawRecord) Hash() string {
	b, err := json.Marshal(r)
	if err != nil {
		b = []byte(fmt.Sprint(map[string]interface{}(r)))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// String returns the named field coerced to a string, or "" when absent
func (r RawRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
