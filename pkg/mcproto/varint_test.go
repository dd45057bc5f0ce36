package mcproto

import (
	"bytes"
	"errors"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	vals := []int32{0, 1, 2, 127, 128, 255, 2147483647, -1, -2147483648}
	for _, v := range vals {
		var buf bytes.Buffer
		n, err := WriteVarInt(&buf, v)
		if err != nil {
			t.Fatalf("WriteVarInt(%d): %v", v, err)
		}
		consumed, got, err := ReadVarInt(buf.Bytes())
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("roundtrip: want %d got %d", v, got)
		}
		if consumed != n || consumed != VarIntLen(v) {
			t.Fatalf("roundtrip(%d): consumed %d, wrote %d, VarIntLen %d", v, consumed, n, VarIntLen(v))
		}
	}
}

func TestVarIntScenario1(t *testing.T) {
	cases := []struct {
		v    int32
		want []byte
	}{
		{764, []byte{0xFC, 0x05}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{0, []byte{0x00}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if _, err := WriteVarInt(&buf, c.v); err != nil {
			t.Fatalf("WriteVarInt(%d): %v", c.v, err)
		}
		if !bytes.Equal(buf.Bytes(), c.want) {
			t.Errorf("WriteVarInt(%d) = %x, want %x", c.v, buf.Bytes(), c.want)
		}
	}
}

func TestVarIntLenTable(t *testing.T) {
	cases := []struct {
		v    int32
		want int
	}{
		{0, 1}, {1, 1}, {127, 1},
		{128, 2}, {16383, 2},
		{16384, 3}, {2097151, 3},
		{2097152, 4}, {268435455, 4},
		{268435456, 5}, {2147483647, 5},
		{-1, 5}, {-128, 5}, {-2147483648, 5},
	}
	for _, c := range cases {
		if got := VarIntLen(c.v); got != c.want {
			t.Errorf("VarIntLen(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestReadVarIntIncomplete(t *testing.T) {
	// A continuation byte with nothing after it.
	_, _, err := ReadVarInt([]byte{0x80})
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete, got %v", err)
	}
	_, _, err = ReadVarInt(nil)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("want ErrIncomplete for empty buffer, got %v", err)
	}
}

func TestReadVarIntMalformedTooLong(t *testing.T) {
	// 5 continuation bytes in a row never terminates.
	_, _, err := ReadVarInt([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}
