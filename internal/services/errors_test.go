package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(ErrTransient, "audio", "synthesize", "kokoro exited", cause)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected wrapped error to match ErrTransient")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to retain cause")
	}
	want := "transient failure: audio: synthesize: kokoro exited: socket closed"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "images", "generate", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("nil marker should default to ErrTransient")
	}
}

func TestIsRetriable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient marker", Wrap(ErrTransient, "", "", "boom", nil), true},
		{"permanent marker", Wrap(ErrPermanent, "", "", "bad input", nil), false},
		{"configuration marker", Wrap(ErrConfiguration, "", "", "missing key", nil), false},
		{"deadline", context.DeadlineExceeded, true},
		{"http 429", errors.New("unexpected status 429"), true},
		{"http 503", errors.New("server returned 503"), true},
		{"rate limit text", errors.New("Rate Limit exceeded"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"plain failure", errors.New("invalid prompt payload"), false},
		{"permanent wins over 429 text", fmt.Errorf("%w: quota 429", ErrPermanent), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetriable(tc.err); got != tc.want {
				t.Fatalf("IsRetriable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
