package common

import (
	"testing"
)

// ---------- RandomDigits ----------

func TestRandomDigits_LengthAndAlphabet(t *testing.T) {
	const n = 6
	s, err := RandomDigits(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n {
		t.Fatalf("expected length %d, got %d", n, len(s))
	}
	for i, c := range s {
		if c < '0' || c > '9' {
			t.Fatalf("char %d is not a digit: %q", i, c)
		}
	}
}

func TestRandomDigits_ZeroSize(t *testing.T) {
	s, err := RandomDigits(0)
	if err != nil {
		t.Fatalf("unexpected error for n=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for n=0, got %q", s)
	}
}

// ---------- WipeByteArray ----------

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

// ---------- GenerateRandByteArray ----------

func TestGenerateRandByteArray_Basic(t *testing.T) {
	const n = 24
	buf := GenerateRandByteArray(n)
	if len(buf) != n {
		t.Fatalf("expected length %d, got %d", n, len(buf))
	}
}

// ---------- MaskTail ----------

func TestMaskTail(t *testing.T) {
	tests := []struct {
		in      string
		visible int
		want    string
	}{
		{"123412341234", 4, "XXXXXXXX1234"},
		{"12", 4, "XX"},
		{"", 4, ""},
		{"9999", 0, "XXXX"},
		{"abc", -1, "XXX"},
	}
	for _, tc := range tests {
		if got := MaskTail(tc.in, tc.visible); got != tc.want {
			t.Fatalf("MaskTail(%q, %d) = %q, want %q", tc.in, tc.visible, got, tc.want)
		}
	}
}
