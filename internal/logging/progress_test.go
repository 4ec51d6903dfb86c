package logging

import (
	"testing"
	"time"
)

func TestNewProgressGateDefaultsStep(t *testing.T) {
	for _, step := range []float64{0, -3} {
		if g := NewProgressGate(step, 0); g.Step != 5 {
			t.Fatalf("NewProgressGate(%v).Step = %v, want 5", step, g.Step)
		}
	}
	if g := NewProgressGate(10, 0); g.Step != 10 {
		t.Fatalf("custom step not kept: %v", g.Step)
	}
}

func TestProgressGateNilAllowsAll(t *testing.T) {
	var g *ProgressGate
	if !g.Allow(42) || !g.Allow(-1) {
		t.Fatal("nil gate should allow every value")
	}
}

func TestProgressGateSteps(t *testing.T) {
	g := NewProgressGate(5, 0)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{3, false},
		{5, true},
		{9.9, false},
		{12, true},
		{11, false},
		{14.9, false},
		{15, true},
		{100, true},
		{100, false},
		{120, false},
	}
	for _, step := range steps {
		if got := g.Allow(step.percent); got != step.want {
			t.Fatalf("Allow(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressGateHeartbeatForUnknownPercent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewProgressGate(5, time.Minute)
	g.now = func() time.Time { return now }

	if !g.Allow(-1) {
		t.Fatal("first unknown value should pass")
	}
	now = now.Add(30 * time.Second)
	if g.Allow(-1) {
		t.Fatal("unknown value inside heartbeat should be dropped")
	}
	now = now.Add(31 * time.Second)
	if !g.Allow(-1) {
		t.Fatal("unknown value after heartbeat should pass")
	}
}

func TestProgressGateWithoutHeartbeatDropsUnknown(t *testing.T) {
	g := NewProgressGate(5, 0)
	if g.Allow(-1) {
		t.Fatal("unknown percent should be dropped without a heartbeat")
	}
}
