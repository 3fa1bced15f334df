package services_test

import (
	"context"
	"testing"

	"syncorbit/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMovie(ctx, "Heat (1995)")
	ctx = services.WithJobID(ctx, "7b0c")
	ctx = services.WithRequestID(ctx, "req-123")

	if title, ok := services.MovieFromContext(ctx); !ok || title != "Heat (1995)" {
		t.Fatalf("unexpected movie: %v %v", title, ok)
	}
	if id, ok := services.JobIDFromContext(ctx); !ok || id != "7b0c" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestMovieBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMovie(ctx, "")
	if _, ok := services.MovieFromContext(ctx); ok {
		t.Fatal("expected no movie value")
	}
}
