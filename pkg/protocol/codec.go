package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// wireMessage is the JSON-on-the-wire shape of a Message. VOID fields are
// omitted via `omitempty` so that Encode/Decode round-trip
// exactly, satisfying the codec's serialization contract (spec §4.1).
type wireMessage struct {
	Type          string   `json:"type,omitempty"`
	Target        string   `json:"target,omitempty"`
	TargetValue   uint64   `json:"targetValue,omitempty"`
	Operation     string   `json:"operation,omitempty"`
	EventName     string   `json:"eventName,omitempty"`
	ElementType   string   `json:"elementType,omitempty"`
	ElementValue  string   `json:"elementValue,omitempty"`
	ElementValues []string `json:"elementValues,omitempty"`
	Property      string   `json:"property,omitempty"`
	RequestID     string   `json:"requestId,omitempty"`
	DataType      string   `json:"dataType,omitempty"`
	// Data carries DataJSON payloads verbatim (already valid JSON) and
	// DataPlain/DataHTML payloads base64-encoded, since they are opaque
	// byte blobs that may not be valid UTF-8 JSON string content.
	Data        json.RawMessage `json:"data,omitempty"`
	DataEncoded string          `json:"dataEncoded,omitempty"`
	RetCode     int             `json:"retCode,omitempty"`
	ResultValue uint64          `json:"resultValue,omitempty"`
	SourceURI   string          `json:"sourceURI,omitempty"`
}

// Encode serializes m to its canonical JSON wire form.
func Encode(m *Message) ([]byte, error) {
	w := wireMessage{
		Type:          m.Type.String(),
		Target:        m.Target.String(),
		TargetValue:   m.TargetValue,
		Operation:     m.Operation,
		EventName:     m.EventName,
		ElementType:   m.ElementType.String(),
		ElementValue:  m.ElementValue,
		ElementValues: m.ElementValues,
		Property:      m.Property,
		RequestID:     m.RequestID,
		DataType:      m.DataType.String(),
		RetCode:       m.RetCode,
		ResultValue:   m.ResultValue,
		SourceURI:     m.SourceURI,
	}

	// VOID type/target/elementType/dataType serialize to "" per omitempty.
	if m.Type == TypeVoid {
		w.Type = ""
	}
	if m.Target == TargetVoid {
		w.Target = ""
	}
	if m.ElementType == ElementVoid {
		w.ElementType = ""
	}
	if m.DataType == DataVoid {
		w.DataType = ""
	}

	switch m.DataType {
	case DataJSON:
		if len(m.Data) > 0 {
			w.Data = json.RawMessage(m.Data)
		}
	case DataPlain, DataHTML:
		if len(m.Data) > 0 {
			w.DataEncoded = base64.StdEncoding.EncodeToString(m.Data)
		}
	}

	return json.Marshal(&w)
}

// Decode parses raw JSON wire bytes into a Message. On any malformed
// input it returns a BadMessage-flavored error with no partially
// populated Message (the caller should discard the zero value).
func Decode(data []byte) (*Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}

	m := &Message{}

	var err error
	if m.Type, err = ParseType(w.Type); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if m.Target, err = ParseTarget(w.Target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if m.ElementType, err = ParseElementType(w.ElementType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if m.DataType, err = ParseDataType(w.DataType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}

	m.TargetValue = w.TargetValue
	m.Operation = w.Operation
	m.EventName = w.EventName
	m.ElementValue = w.ElementValue
	m.ElementValues = w.ElementValues
	m.Property = w.Property
	m.RequestID = w.RequestID
	m.RetCode = w.RetCode
	m.ResultValue = w.ResultValue
	m.SourceURI = w.SourceURI

	switch m.DataType {
	case DataJSON:
		if len(w.Data) > 0 {
			m.Data = []byte(w.Data)
		}
	case DataPlain, DataHTML:
		if w.DataEncoded != "" {
			decoded, err := base64.StdEncoding.DecodeString(w.DataEncoded)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
			}
			m.Data = decoded
		}
	}

	return m, nil
}
