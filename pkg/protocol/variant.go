package protocol

import "encoding/json"

// ParseVariant parses raw JSON bytes into a variant tree: nil, bool,
// float64, string, []any, or map[string]any, matching encoding/json's
// default decoding into `any`. A dedicated variant codec (tagged union
// types, custom number handling) would pay for generality this protocol
// never needs: every JSON payload in PURCMC is either an opaque argument
// blob handed to a backend callback or a small fixed-shape object
// (createWorkspace's {title}, callMethod's {method, arg}); encoding/json's
// `any` tree is exactly the shape purc_variant_t's own JSON import produces
// and callers already expect to type-switch on.
func ParseVariant(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeVariant serializes a variant tree back to JSON bytes.
func EncodeVariant(v any) ([]byte, error) {
	return json.Marshal(v)
}

// VariantString extracts a string field from a decoded JSON object, or
// returns "" with ok=false if the object is not a map or the key is not a
// string.
func VariantString(obj any, key string) (string, bool) {
	m, ok := obj.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}
