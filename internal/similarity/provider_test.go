package similarity

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestStatic_Symmetric(t *testing.T) {
	s := NewStatic()
	a, b := uuid.New(), uuid.New()
	s.Set(a, b, 0.85)

	got, err := s.Similarity(context.Background(), b, a)
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if got != 0.85 {
		t.Fatalf("expected 0.85 regardless of argument order, got %v", got)
	}

	got, _ = s.Similarity(context.Background(), a, uuid.New())
	if got != 0 {
		t.Fatalf("expected 0 for an unknown pair, got %v", got)
	}
}
