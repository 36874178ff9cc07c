package utils

import "testing"

func TestBytesToHex(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{0x00}, "00"},
		{[]byte{0x66, 0x5C, 0x9A}, "66 5C 9A"},
		{[]byte{0xFF, 0x0A}, "FF 0A"},
	}
	for _, tt := range tests {
		if got := BytesToHex(tt.in); got != tt.want {
			t.Errorf("BytesToHex(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHex2(t *testing.T) {
	if got := Hex2(0xF3); got != "0xF3" {
		t.Errorf("Hex2(0xF3) = %q", got)
	}
	if got := Hex2(0x05); got != "0x05" {
		t.Errorf("Hex2(0x05) = %q", got)
	}
}
