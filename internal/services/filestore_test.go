package services

import (
	"testing"
)

func TestFileStore_PutGetDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	content := "<html><body>{{guest_name}}</body></html>"
	handle, err := store.Put(content)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if handle == "" {
		t.Fatal("Put() returned empty handle")
	}

	got, err := store.Get(handle)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != content {
		t.Errorf("Get() = %q, want %q", got, content)
	}

	if err := store.Delete(handle); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(handle); err == nil {
		t.Error("Get() after Delete() should fail")
	}

	// Deleting a missing handle is not an error.
	if err := store.Delete(handle); err != nil {
		t.Errorf("Delete() of missing handle error = %v", err)
	}
}

func TestFileStore_DistinctHandles(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	a, _ := store.Put("one")
	b, _ := store.Put("one")
	if a == b {
		t.Error("identical content must still get distinct handles")
	}
}

func TestFileStore_RejectsBadHandles(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	for _, handle := range []string{"", "../etc/passwd", "a/b", "not-a-uuid"} {
		if _, err := store.Get(handle); err == nil {
			t.Errorf("Get(%q) should be rejected", handle)
		}
	}
}
