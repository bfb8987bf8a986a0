package main

import (
	"testing"
)

// TestNewListCmd tests the list command creation.
func TestNewListCmd(t *testing.T) {
	t.Parallel()

	cmd := NewListCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "list" {
			t.Errorf("expected use 'list', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has quiet flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("quiet")
		if flag == nil {
			t.Fatal("expected quiet flag")
		}
		if flag.Shorthand != "q" {
			t.Errorf("expected shorthand 'q', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("json") == nil {
			t.Error("expected json flag")
		}
	})

	t.Run("has runs flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("runs") == nil {
			t.Error("expected runs flag")
		}
	})
}
