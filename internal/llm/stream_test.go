package llm

import (
	"errors"
	"testing"
)

func TestStreamingIfAllowedEffectiveFlag(t *testing.T) {
	tests := []struct {
		name      string
		allowed   bool
		desired   bool
		effective bool
	}{
		{"allowed and desired", true, true, true},
		{"allowed but not desired", true, false, false},
		{"desired but not allowed", false, true, false},
		{"neither", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &MockClient{}
			err := StreamingIfAllowed(c, tt.allowed, tt.desired, func() error {
				if c.Stream() != tt.effective {
					t.Errorf("expected stream flag %v inside scope, got %v", tt.effective, c.Stream())
				}
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStreamingIfAllowedRestoresPrevious(t *testing.T) {
	c := &MockClient{}
	c.SetStream(true)

	if err := StreamingIfAllowed(c, false, true, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Stream() {
		t.Error("expected prior stream flag restored after scope exit")
	}
}

func TestStreamingIfAllowedRestoresOnError(t *testing.T) {
	c := &MockClient{}
	c.SetStream(false)

	failure := errors.New("boom")
	err := StreamingIfAllowed(c, true, true, func() error {
		if !c.Stream() {
			t.Error("expected stream flag on inside scope")
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected fn error surfaced, got %v", err)
	}
	if c.Stream() {
		t.Error("expected prior stream flag restored after failing scope")
	}
}

func TestStreamingIfAllowedRestoresOnPanic(t *testing.T) {
	c := &MockClient{}
	c.SetStream(false)

	func() {
		defer func() { _ = recover() }()
		_ = StreamingIfAllowed(c, true, true, func() error {
			panic("boom")
		})
	}()

	if c.Stream() {
		t.Error("expected prior stream flag restored after panicking scope")
	}
}
