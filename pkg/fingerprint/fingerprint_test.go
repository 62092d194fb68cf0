package fingerprint

import (
	"strings"
	"testing"
)

func TestOfIsStable(t *testing.T) {
	for _, id := range []string{"a1", "b1", "", "some-very-long-identifier-0000000000000000"} {
		first, second := Of(id), Of(id)
		if first != second {
			t.Errorf("Of(%q) not stable: %q != %q", id, first, second)
		}
		if len(first) != Length {
			t.Errorf("Of(%q) = %q, expected %d characters", id, first, Length)
		}
		if strings.Trim(first, "0123456789abcdef") != "" {
			t.Errorf("Of(%q) = %q, expected lowercase hex", id, first)
		}
	}
}

func TestOfKnownValue(t *testing.T) {
	// sha256("a1") = f55ff16f66f43360266b95db6f8fec01d76031054306ae4a4b380598f6cfd114
	if got := Of("a1"); got != "f55ff16f" {
		t.Errorf("Of(a1) = %q, want f55ff16f", got)
	}
}

func TestOfDistinguishesIDs(t *testing.T) {
	if Of("a1") == Of("a2") {
		t.Errorf("expected different fingerprints for a1 and a2")
	}
}

func TestTag(t *testing.T) {
	if got := Tag("abcd1234"); got != "#abcd1234" {
		t.Errorf("Tag() = %q", got)
	}
}
