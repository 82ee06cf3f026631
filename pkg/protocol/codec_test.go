package protocol

import (
	"bytes"
	"testing"
)

func TestRoundTripRequest(t *testing.T) {
	msgs := []*Message{
		{
			Type:      TypeRequest,
			Target:    TargetSession,
			Operation: "startSession",
			RequestID: "r1",
		},
		{
			Type:         TypeRequest,
			Target:       TargetWorkspace,
			TargetValue:  0,
			Operation:    "createPlainWindow",
			ElementType:  ElementID,
			ElementValue: "main@group1",
			DataType:     DataJSON,
			Data:         []byte(`{"title":"Hello"}`),
			RequestID:    "r3",
		},
		{
			Type:        TypeResponse,
			RequestID:   "r3",
			RetCode:     200,
			ResultValue: 0xdeadbeef,
		},
		{
			Type:          TypeEvent,
			Target:        TargetPlainWindow,
			TargetValue:   7,
			EventName:     "suppressPage",
			ElementType:   ElementHandle,
			ElementValue:  "2a",
			SourceURI:     "edpt://localhost/app/runner",
			ElementValues: []string{"1", "2"},
		},
	}

	for i, m := range msgs {
		encoded, err := Encode(m)
		if err != nil {
			t.Fatalf("msg %d: Encode: %v", i, err)
		}
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("msg %d: Decode: %v", i, err)
		}
		reencoded, err := Encode(decoded)
		if err != nil {
			t.Fatalf("msg %d: re-Encode: %v", i, err)
		}
		if !bytes.Equal(encoded, reencoded) {
			t.Fatalf("msg %d: round trip mismatch:\n  first:  %s\n  second: %s", i, encoded, reencoded)
		}
	}
}

func TestDecodeBadMessage(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error decoding malformed JSON")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"bogus"}`))
	if err == nil {
		t.Fatal("expected error decoding unknown message type")
	}
}

func TestVoidFieldsOmitted(t *testing.T) {
	m := &Message{Type: TypeResponse, RequestID: "r1", RetCode: 200}
	encoded, err := Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	for _, forbidden := range []string{`"target"`, `"elementType"`, `"dataType"`} {
		if bytes.Contains(encoded, []byte(forbidden)) {
			t.Errorf("expected VOID field %s to be omitted, got %s", forbidden, encoded)
		}
	}
}
