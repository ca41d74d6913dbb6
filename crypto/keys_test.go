package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 20)
	addr, err := NewAddress(GentPrefix, raw)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}

	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(GentPrefix)+"1") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("round trip mismatch: %x", decoded.Bytes())
	}
	if decoded.Prefix() != GentPrefix {
		t.Fatalf("unexpected prefix: %s", decoded.Prefix())
	}
}

func TestNewAddressRejectsWrongLength(t *testing.T) {
	if _, err := NewAddress(GentPrefix, make([]byte, 19)); err == nil {
		t.Fatalf("19-byte address must be rejected")
	}
	if _, err := NewAddress(GentPrefix, make([]byte, 21)); err == nil {
		t.Fatalf("21-byte address must be rejected")
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatalf("garbage input must be rejected")
	}
	if _, err := DecodeAddress(""); err == nil {
		t.Fatalf("empty input must be rejected")
	}
}

func TestGeneratedKeyYieldsValidAddress(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if len(addr.Bytes()) != 20 {
		t.Fatalf("unexpected address length: %d", len(addr.Bytes()))
	}

	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("restore key: %v", err)
	}
	if !bytes.Equal(restored.PubKey().Address().Bytes(), addr.Bytes()) {
		t.Fatalf("restored key derives a different address")
	}
}
