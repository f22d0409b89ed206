// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"bytes"
	"context"
	"testing"

	"github.com/julianstephens/softworkday/internal/storage"
)

// Run exercises an initialized provider. The provider must be empty.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := p.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok || v != nil {
			t.Errorf("Get(absent) = %q, %v; want nil, false", v, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		want := []byte(`{"morning":"09:10"}`)
		if err := p.Set(ctx, "softworkday_notification_schedule", want); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, ok, err := p.Get(ctx, "softworkday_notification_schedule")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !ok || !bytes.Equal(got, want) {
			t.Errorf("Get = %q, %v; want %q, true", got, ok, want)
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		if err := p.Set(ctx, "replace", []byte("first value that is longer")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := p.Set(ctx, "replace", []byte("second")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, _, err := p.Get(ctx, "replace")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Get = %q, want %q", got, "second")
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		if err := p.Set(ctx, "a", []byte("1")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := p.Set(ctx, "b", []byte("2")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, _, _ := p.Get(ctx, "a")
		if string(got) != "1" {
			t.Errorf("Get(a) = %q, want 1", got)
		}
	})

	t.Run("location", func(t *testing.T) {
		if p.Location() == "" {
			t.Error("Location() is empty")
		}
	})
}
