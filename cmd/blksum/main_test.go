package main

import (
	"bytes"
	"testing"
)

func TestListDigestsFlag(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--list-digests"})

	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(out.Bytes(), []byte("sha256")) {
		t.Fatalf("expected sha256 in digest list, got %q", out.String())
	}
}

func TestSourceNameDefaultsToDash(t *testing.T) {
	if got := sourceName(nil); got != "-" {
		t.Fatalf("got %q, want \"-\"", got)
	}
	if got := sourceName([]string{"image.raw"}); got != "image.raw" {
		t.Fatalf("got %q, want image.raw", got)
	}
}
