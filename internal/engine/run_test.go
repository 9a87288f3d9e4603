package engine

import (
	"strings"
	"testing"
)

func TestLimitedBufferTruncates(t *testing.T) {
	b := &limitedBuffer{max: 8}
	n, err := b.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := b.String(); got != "01234567" {
		t.Fatalf("buffer = %q", got)
	}
	if !b.truncated {
		t.Fatal("truncated flag not set")
	}
}

func TestLimitedBufferAcceptsUpToCap(t *testing.T) {
	b := &limitedBuffer{max: 4}
	if _, err := b.Write([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Write([]byte("cd")); err != nil {
		t.Fatal(err)
	}
	if b.truncated {
		t.Fatal("truncated set below the cap")
	}
	if _, err := b.Write([]byte("e")); err != nil {
		t.Fatal(err)
	}
	if !b.truncated || b.String() != "abcd" {
		t.Fatalf("buffer = %q, truncated = %v", b.String(), b.truncated)
	}
}

func TestBootstrapsCarryMarker(t *testing.T) {
	for _, src := range []string{entryCallBootstrap, moduleExecBootstrap} {
		if strings.Contains(src, "@@MARKER@@") {
			t.Fatal("marker placeholder not substituted")
		}
		if !strings.Contains(src, resultMarker) {
			t.Fatal("bootstrap does not embed the result marker")
		}
	}
}
