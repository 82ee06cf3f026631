package dispatch

import "testing"

func TestFindHandlerIsCaseInsensitive(t *testing.T) {
	lower, knownLower := findHandler("startsession")
	mixed, knownMixed := findHandler("StartSession")
	upper, knownUpper := findHandler("STARTSESSION")

	if !knownLower || !knownMixed || !knownUpper {
		t.Fatalf("expected startSession to be known regardless of case")
	}
	if lower == nil || mixed == nil || upper == nil {
		t.Fatalf("expected a handler for startSession")
	}
}

func TestFindHandlerDistinguishesUnknownFromUnimplemented(t *testing.T) {
	handler, known := findHandler("writeBegin")
	if !known {
		t.Fatalf("writeBegin is a reserved operation name, expected known=true")
	}
	if handler != nil {
		t.Fatalf("writeBegin has no handler wired, expected nil (NOT_IMPLEMENTED)")
	}

	_, known = findHandler("notAnOperation")
	if known {
		t.Fatalf("notAnOperation should be unknown (BAD_REQUEST)")
	}
}

func TestTableIsSortedForBinarySearch(t *testing.T) {
	for i := 1; i < len(table); i++ {
		if table[i-1].operation >= table[i].operation {
			t.Fatalf("table not strictly sorted at index %d: %q >= %q", i, table[i-1].operation, table[i].operation)
		}
	}
}
