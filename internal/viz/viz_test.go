package viz

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestPieSlices(t *testing.T) {
	slices := PieSlices([]float64{1, 0, 3, -2}, []string{"A", "B", "C"})

	if len(slices) != 2 {
		t.Fatalf("len = %d, want 2 (zero and negative skipped)", len(slices))
	}

	got := []struct {
		Index   int
		Label   string
		Percent float64
	}{
		{slices[0].Index, slices[0].Label, slices[0].Percent},
		{slices[1].Index, slices[1].Label, slices[1].Percent},
	}
	want := []struct {
		Index   int
		Label   string
		Percent float64
	}{
		{0, "A", 25},
		{2, "C", 75},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slices mismatch (-want +got):\n%s", diff)
	}

	if slices[0].StartAngle != 0 || slices[0].EndAngle != 90 {
		t.Errorf("first slice angles = %v..%v, want 0..90", slices[0].StartAngle, slices[0].EndAngle)
	}
	if slices[1].StartAngle != 90 || slices[1].EndAngle != 360 {
		t.Errorf("second slice angles = %v..%v, want 90..360", slices[1].StartAngle, slices[1].EndAngle)
	}

	// quarter wedge ends at three o'clock, small arc
	if want := "M 0 0 L 0.0000 -1.0000 A 1 1 0 0 1 1.0000 0.0000 Z"; slices[0].Path != want {
		t.Errorf("Path = %q, want %q", slices[0].Path, want)
	}
	// three quarters uses the large arc flag
	if want := "M 0 0 L 1.0000 0.0000 A 1 1 0 1 1 0.0000 -1.0000 Z"; slices[1].Path != want {
		t.Errorf("Path = %q, want %q", slices[1].Path, want)
	}
	if slices[0].Color == slices[1].Color {
		t.Error("adjacent slices share a color")
	}
}

func TestPieSlices_SingleSliceIsFullCircle(t *testing.T) {
	slices := PieSlices([]float64{0, 42}, nil)
	if len(slices) != 1 {
		t.Fatalf("len = %d, want 1", len(slices))
	}
	s := slices[0]
	if s.Percent != 100 {
		t.Errorf("Percent = %v, want 100", s.Percent)
	}
	if s.Label != "Slice 2" {
		t.Errorf("Label = %q, want generated label", s.Label)
	}
	if s.Path != "M 0 -1 A 1 1 0 1 1 0 1 A 1 1 0 1 1 0 -1 Z" {
		t.Errorf("Path = %q, want full circle", s.Path)
	}
}

func TestPieSlices_Empty(t *testing.T) {
	for _, values := range [][]float64{nil, {}, {0, -1}, {math.NaN(), math.Inf(1)}} {
		if got := PieSlices(values, nil); got == nil || len(got) != 0 {
			t.Errorf("PieSlices(%v) = %v, want empty non-nil", values, got)
		}
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got := Remaining(now, now.Add(2*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second+900*time.Millisecond))
	want := Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}
	got.Total = 0
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Remaining() mismatch (-want +got):\n%s", diff)
	}

	for _, target := range []time.Time{now, now.Add(-time.Hour)} {
		if c := Remaining(now, target); !c.Expired || c.Days+c.Hours+c.Minutes+c.Seconds != 0 {
			t.Errorf("Remaining(past) = %+v, want expired and zero", c)
		}
	}
}
