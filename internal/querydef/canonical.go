package querydef

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// DomainDefinition prefixes fingerprint input. The version suffix allows the
// encoding to change without colliding with old fingerprints.
const DomainDefinition = "fluentsql/definition/v1"

// MarshalCanonical encodes d as canonical JSON:
//   - object keys sorted (all keys are fixed ASCII field names)
//   - no HTML escaping
//   - strings NFC normalized
//   - only populated fields are emitted, so equal definitions encode equally
//
// Column mappings are encoded as arrays of [name, expr] pairs because their
// order is significant.
func MarshalCanonical(d Definition) ([]byte, error) {
	obj := map[string]any{"kind": string(d.Kind)}
	for _, f := range d.Populated() {
		obj[f.String()] = canonicalValue(d, f)
	}
	return marshalCanonical(obj)
}

// Fingerprint returns the hex SHA-256 of the canonical encoding of d, with
// domain separation: SHA256(domain + 0x00 + canonical).
func Fingerprint(d Definition) (string, error) {
	canonical, err := MarshalCanonical(d)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainDefinition))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func canonicalValue(d Definition, f Field) any {
	switch f {
	case FieldFrom:
		return d.From
	case FieldAs:
		return d.As
	case FieldSelect:
		return columnPairs(d.Select)
	case FieldWhere:
		return d.Where
	case FieldDistinct:
		return d.Distinct
	case FieldTop:
		return *d.Top
	case FieldGroupBy:
		return d.GroupBy
	case FieldJoin:
		return d.Join
	case FieldLimit:
		return []int{d.Limit.Skip, d.Limit.Take}
	case FieldOrderBy:
		return d.OrderBy
	case FieldUpdate:
		return columnPairs(d.Update)
	case FieldInsert:
		return columnPairs(d.Insert)
	case FieldUpsert:
		return columnPairs(d.Upsert)
	case FieldOutput:
		return d.Output
	default:
		return nil
	}
}

func columnPairs(c Columns) [][]string {
	out := make([][]string, len(c))
	for i, col := range c {
		out[i] = []string{col.Name, col.Expr}
	}
	return out
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case []int:
		return marshalCanonicalArray(len(val), func(i int) any { return val[i] })
	case []string:
		return marshalCanonicalArray(len(val), func(i int) any { return val[i] })
	case [][]string:
		return marshalCanonicalArray(len(val), func(i int) any { return val[i] })
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString NFC-normalizes s and encodes it without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func marshalCanonicalArray(n int, at func(int) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		elem, err := marshalCanonical(at(i))
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elem)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
