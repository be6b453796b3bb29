package source

import (
	"io"
	"os"
	"testing"
)

func TestFileSourceReadAndSize(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/image.raw"

	content := []byte("some block of bytes")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if got := src.Size(); got != int64(len(content)) {
		t.Fatalf("got size %d, want %d", got, len(content))
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("got %q, want %q", got, content)
	}
}

func TestFileSourceExtentsCoversWholeRange(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/image.raw"

	content := make([]byte, 4096)
	for i := range content {
		content[i] = byte(i)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	extents, err := src.Extents(0, int64(len(content)))
	if err != nil {
		t.Fatal(err)
	}

	var total int64
	for _, e := range extents {
		total += e.Length
	}
	if total != int64(len(content)) {
		t.Fatalf("extents cover %d bytes, want %d", total, len(content))
	}
}

func TestPipeSourceHasNoExtents(t *testing.T) {
	r, w := io.Pipe()
	go func() {
		w.Write([]byte("hello"))
		w.Close()
	}()

	src := NewPipeSource(r)
	defer src.Close()

	if src.Size() != -1 {
		t.Fatalf("expected unknown size -1, got %d", src.Size())
	}

	if _, err := src.Extents(0, 10); err != ErrExtentsUnsupported {
		t.Fatalf("expected ErrExtentsUnsupported, got %v", err)
	}

	got, err := io.ReadAll(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}
