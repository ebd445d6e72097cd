package bc

import (
	"testing"

	"github.com/voidhawk/xstatic/pkg/storage"
)

func testStore(t *testing.T) storage.Storage {
	t.Helper()
	storage.SetBasePath(t.TempDir())
	storage.DoCallbacks()
	s, err := storage.Initialize("bitcask")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := testStore(t)

	if err := s.Put([]byte("dep/zlib"), []byte(`{"Version":"1.3.1"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := s.Get([]byte("dep/zlib"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(v) != `{"Version":"1.3.1"}` {
		t.Fatalf("got %q", v)
	}

	if err := s.Del([]byte("dep/zlib")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err = s.Get([]byte("dep/zlib"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Fatalf("deleted key still present: %q", v)
	}
}

func TestMissingKey(t *testing.T) {
	s := testStore(t)

	v, err := s.Get([]byte("dep/never-fetched"))
	if err != nil {
		t.Fatalf("a missing key is not an error: %v", err)
	}
	if v != nil {
		t.Fatalf("got %q for a missing key", v)
	}
}

func TestRequiresBasePath(t *testing.T) {
	storage.SetBasePath("")
	storage.DoCallbacks()
	if _, err := storage.Initialize("bitcask"); err == nil {
		t.Fatal("initialization without a base path must fail")
	}
}
