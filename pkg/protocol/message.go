// Package protocol implements the PURCMC wire message: its typed fields,
// JSON serialization, and the framings used to carry it over a stream
// socket, a WebSocket connection, or an in-process queue.
//
// # Wire Format
//
// A Message is serialized as a JSON object carrying only its non-VOID
// fields (the Message type below lists them). The object is then framed
// for transport:
//
//   - Stream (Unix socket): a 4-field binary header
//     {op, reserved, fragmentedTotalLen, payloadLen} followed by the payload.
//     Payloads larger than one frame are split across CONTINUATION frames
//     terminated by an END frame.
//   - WebSocket: one text or binary WebSocket frame per Message, using
//     gorilla/websocket's built-in client-side masking.
//   - In-process: a buffered channel of *Message, no serialization at all.
package protocol

import "fmt"

// Type is the message's role: request, response, event, or absent.
type Type uint8

const (
	TypeVoid Type = iota
	TypeRequest
	TypeResponse
	TypeEvent
)

// String returns the wire token for the message type.
func (t Type) String() string {
	switch t {
	case TypeRequest:
		return "request"
	case TypeResponse:
		return "response"
	case TypeEvent:
		return "event"
	default:
		return "void"
	}
}

// ParseType parses a case-insensitive wire token into a Type.
func ParseType(s string) (Type, error) {
	switch lower(s) {
	case "request":
		return TypeRequest, nil
	case "response":
		return TypeResponse, nil
	case "event":
		return TypeEvent, nil
	case "", "void":
		return TypeVoid, nil
	default:
		return TypeVoid, fmt.Errorf("protocol: unknown message type %q", s)
	}
}

// Target identifies the kind of resource a message addresses.
type Target uint8

const (
	TargetVoid Target = iota
	TargetSession
	TargetWorkspace
	TargetPlainWindow
	TargetWidget
	TargetDOM
	TargetInstance
)

// String returns the wire token for the target.
func (t Target) String() string {
	switch t {
	case TargetSession:
		return "session"
	case TargetWorkspace:
		return "workspace"
	case TargetPlainWindow:
		return "plainwindow"
	case TargetWidget:
		return "widget"
	case TargetDOM:
		return "dom"
	case TargetInstance:
		return "instance"
	default:
		return "void"
	}
}

// ParseTarget parses a case-insensitive wire token into a Target.
func ParseTarget(s string) (Target, error) {
	switch lower(s) {
	case "session":
		return TargetSession, nil
	case "workspace":
		return TargetWorkspace, nil
	case "plainwindow":
		return TargetPlainWindow, nil
	case "widget":
		return TargetWidget, nil
	case "dom":
		return TargetDOM, nil
	case "instance":
		return TargetInstance, nil
	case "", "void":
		return TargetVoid, nil
	default:
		return TargetVoid, fmt.Errorf("protocol: unknown target %q", s)
	}
}

// LessThanDOM reports whether t is session-, workspace-, or page-scoped —
// i.e. ordinally "less than" DOM. Several operations (callMethod,
// getProperty, setProperty) are valid at DOM scope or at any scope below
// it; see spec §4.6.
func (t Target) LessThanDOM() bool {
	switch t {
	case TargetSession, TargetWorkspace, TargetPlainWindow, TargetWidget:
		return true
	default:
		return false
	}
}

// ElementType identifies how ElementValue should be interpreted.
type ElementType uint8

const (
	ElementVoid ElementType = iota
	ElementCSS
	ElementXPath
	ElementHandle
	ElementHandles
	ElementID
)

// String returns the wire token for the element type.
func (e ElementType) String() string {
	switch e {
	case ElementCSS:
		return "css"
	case ElementXPath:
		return "xpath"
	case ElementHandle:
		return "handle"
	case ElementHandles:
		return "handles"
	case ElementID:
		return "id"
	default:
		return "void"
	}
}

// ParseElementType parses a case-insensitive wire token into an ElementType.
func ParseElementType(s string) (ElementType, error) {
	switch lower(s) {
	case "css":
		return ElementCSS, nil
	case "xpath":
		return ElementXPath, nil
	case "handle":
		return ElementHandle, nil
	case "handles":
		return ElementHandles, nil
	case "id":
		return ElementID, nil
	case "", "void":
		return ElementVoid, nil
	default:
		return ElementVoid, fmt.Errorf("protocol: unknown element type %q", s)
	}
}

// DataType identifies how Data should be interpreted.
type DataType uint8

const (
	DataVoid DataType = iota
	DataPlain
	DataJSON
	DataHTML
)

// String returns the wire token for the data type.
func (d DataType) String() string {
	switch d {
	case DataPlain:
		return "plain"
	case DataJSON:
		return "json"
	case DataHTML:
		return "html"
	default:
		return "void"
	}
}

// ParseDataType parses a case-insensitive wire token into a DataType.
func ParseDataType(s string) (DataType, error) {
	switch lower(s) {
	case "plain":
		return DataPlain, nil
	case "json":
		return DataJSON, nil
	case "html":
		return DataHTML, nil
	case "", "void":
		return DataVoid, nil
	default:
		return DataVoid, fmt.Errorf("protocol: unknown data type %q", s)
	}
}

// Message is the single wire record for requests, responses, and events.
//
// Field discipline: only the fields relevant to Type/ElementType/DataType
// are meaningful; all others must be left at their zero value, and VOID
// fields are omitted from the serialized form.
type Message struct {
	Type        Type
	Target      Target
	TargetValue uint64

	// Operation is set for TypeRequest; EventName is set for TypeEvent.
	// Lookup against the dispatch table is case-insensitive.
	Operation string
	EventName string

	ElementType ElementType
	// ElementValue holds the single-valued forms (CSS, XPath, HANDLE, ID).
	ElementValue string
	// ElementValues holds the HANDLES form: one hex handle per entry.
	ElementValues []string

	// Property names a single property for getProperty/setProperty, or is
	// empty when not applicable.
	Property string

	RequestID string

	DataType DataType
	// Data holds the raw payload: JSON text for DataJSON, an HTML fragment
	// for DataHTML, or opaque text for DataPlain.
	Data []byte

	RetCode     int
	ResultValue uint64
	SourceURI   string
}

// IsRequest reports whether m is a request message.
func (m *Message) IsRequest() bool { return m.Type == TypeRequest }

// IsResponse reports whether m is a response message.
func (m *Message) IsResponse() bool { return m.Type == TypeResponse }

// IsEvent reports whether m is an event message.
func (m *Message) IsEvent() bool { return m.Type == TypeEvent }

// JSONData unmarshals Data as a JSON variant tree. It returns an error if
// DataType is not DataJSON.
func (m *Message) JSONData() (any, error) {
	if m.DataType != DataJSON {
		return nil, fmt.Errorf("protocol: message data is not JSON (dataType=%s)", m.DataType)
	}
	return ParseVariant(m.Data)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
