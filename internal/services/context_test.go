package services_test

import (
	"context"
	"testing"

	"captionforge/internal/services"
)

func TestScopeAccumulates(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "batch-1")
	ctx = services.WithJobID(ctx, "job-42")
	staged := services.WithStage(ctx, "rendering")

	want := services.Scope{JobID: "job-42", Stage: "rendering", RequestID: "batch-1"}
	if got := services.ScopeFrom(staged); got != want {
		t.Fatalf("ScopeFrom = %+v, want %+v", got, want)
	}
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("parent context must not see the child stage")
	}
	if rid, ok := services.RequestIDFromContext(staged); !ok || rid != "batch-1" {
		t.Fatalf("request id = %q, %v", rid, ok)
	}
}

func TestStageOverridesPrevious(t *testing.T) {
	ctx := services.WithStage(context.Background(), "downloading")
	ctx = services.WithStage(ctx, "uploading")
	if stage, _ := services.StageFromContext(ctx); stage != "uploading" {
		t.Fatalf("stage = %q", stage)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	base := context.Background()
	ctx := services.WithJobID(services.WithStage(services.WithRequestID(base, ""), ""), "")
	if ctx != base {
		t.Fatal("blank values should return the original context")
	}
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job id value")
	}
}
