package observability

import (
	"context"
	"testing"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSampleRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := SampleRatio(in); got != want {
			t.Fatalf("SampleRatio(%v)=%v want %v", in, got, want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc ,broken, =x,team=ops")
	if len(h) != 2 || h["api-key"] != "abc" || h["team"] != "ops" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatal("expected nil for empty input")
	}
}
