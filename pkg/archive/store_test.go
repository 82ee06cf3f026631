package archive

import (
	"strings"
	"testing"
)

func TestKeyIsSortableWithinAnEndpoint(t *testing.T) {
	s := &Store{prefix: "transcripts/"}

	k1 := s.key("edpt://localhost/app/a", 1, DirectionInbound)
	k2 := s.key("edpt://localhost/app/a", 2, DirectionOutbound)

	if !strings.HasPrefix(k1, "transcripts/edpt://localhost/app/a/") {
		t.Fatalf("unexpected key: %s", k1)
	}
	if k1 >= k2 {
		t.Fatalf("expected k1 < k2 lexicographically: %s vs %s", k1, k2)
	}
}
