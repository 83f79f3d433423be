package gen

import (
	"strings"
	"testing"
)

func TestUserName_Unique(t *testing.T) {
	a, b := UserName(), UserName()
	if a == b {
		t.Errorf("expected unique names, got %q twice", a)
	}
	if !strings.HasPrefix(a, "loadgen_") {
		t.Errorf("name = %q", a)
	}
}

func TestEmail_Shape(t *testing.T) {
	e := Email()
	if !strings.HasSuffix(e, "@test.example.com") {
		t.Errorf("email = %q", e)
	}
}

func TestDocumentNumber_Length(t *testing.T) {
	n := DocumentNumber()
	if len(n) != 18 {
		t.Errorf("len = %d, want 18", len(n))
	}
	for _, c := range n {
		if c < '0' || c > '9' {
			t.Fatalf("non-digit %q in %q", c, n)
		}
	}
}

func TestPhoneNumber_Shape(t *testing.T) {
	n := PhoneNumber()
	if len(n) != 11 || n[0] != '1' {
		t.Errorf("phone = %q", n)
	}
}
