package strings

import (
	"testing"

	"potluck/internal/platform/testkit"
)

func TestOr(t *testing.T) {
	t.Parallel()

	def := []string{"GET"}
	if got := Or(nil, def); len(got) != 1 || got[0] != "GET" {
		t.Fatalf("Or(nil) = %v", got)
	}
	if got := Or([]string{"POST", "PUT"}, def); len(got) != 2 {
		t.Fatalf("Or(set) = %v", got)
	}
}

func TestMustString(t *testing.T) {
	t.Parallel()

	if MustString("feed", "name") != "feed" {
		t.Fatalf("value changed")
	}
	testkit.MustPanic(t, func() { MustString(" \t", "name") })
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"feed":     "/feed",
		"/feed/":   "/feed",
		" //meta ": "/meta",
		"/a/b":     "/a/b",
	} {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	testkit.MustPanic(t, func() { MustPrefix("/") })
	testkit.MustPanic(t, func() { MustPrefix("  ") })
}
