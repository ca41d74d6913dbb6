package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestMemDBPutGetHas(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	key := []byte("key")
	value := []byte("value")

	ok, err := db.Has(key)
	if err != nil || ok {
		t.Fatalf("empty db must not have key: ok=%v err=%v", ok, err)
	}
	if _, err := db.Get(key); err == nil {
		t.Fatalf("get on missing key must fail")
	}

	if err := db.Put(key, value); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err = db.Has(key)
	if err != nil || !ok {
		t.Fatalf("db must have key after put: ok=%v err=%v", ok, err)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	key := []byte("key")
	value := []byte("value")
	if err := db.Put(key, value); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's slice must not leak into the store.
	value[0] = 'X'
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}

	// Mutating the returned slice must not corrupt the store either.
	got[0] = 'Y'
	again, err := db.Get(key)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !bytes.Equal(again, []byte("value")) {
		t.Fatalf("returned value aliased store: %q", again)
	}
}

func TestLevelDBRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	db, err := NewLevelDB(dir)
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	defer db.Close()

	key := []byte("key")
	if ok, err := db.Has(key); err != nil || ok {
		t.Fatalf("fresh db must not have key: ok=%v err=%v", ok, err)
	}
	if err := db.Put(key, []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Fatalf("unexpected value: %q", got)
	}
}
