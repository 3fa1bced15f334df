package services_test

import (
	"errors"
	"strings"
	"testing"

	"syncorbit/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("exit status 2")
	err := services.Wrap(services.ErrCollaborator, "aligner", "analyze", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"aligner", "analyze", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected default collaborator marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err      error
		expected string
	}{
		{nil, ""},
		{services.Wrap(services.ErrNotFound, "library", "get", "no such movie", nil), "not_found"},
		{services.Wrap(services.ErrIneligible, "scan", "reanalyze", "movie is ignored", nil), "ineligible"},
		{services.Wrap(services.ErrConflict, "scan", "rescan", "scan already running", nil), "conflict"},
		{services.Wrap(services.ErrCorrupt, "library", "scan row", "bad decision value", nil), "corrupt"},
		{errors.New("plain"), "collaborator_failure"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.expected {
			t.Fatalf("Kind(%v) = %q, expected %q", tc.err, got, tc.expected)
		}
	}
}
