package indicators

import (
	"math"
	"testing"
)

func constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		window int
		want   []float64
	}{
		{
			name:   "full window",
			closes: []float64{1, 2, 3, 4},
			window: 2,
			want:   []float64{1, 1.5, 2.5, 3.5},
		},
		{
			name:   "short history averages what exists",
			closes: []float64{10, 20},
			window: 50,
			want:   []float64{10, 15},
		},
		{
			name:   "constant series",
			closes: constant(100, 10),
			window: 5,
			want:   constant(100, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.closes, tt.window)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRSI(t *testing.T) {
	t.Run("constant series saturates at 100", func(t *testing.T) {
		got := RSI(constant(100, 50), 14)
		for i, v := range got {
			if v != 100 {
				t.Fatalf("out[%d] = %v, want 100", i, v)
			}
		}
	})

	t.Run("strictly rising series stays at 100", func(t *testing.T) {
		closes := make([]float64, 50)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		got := RSI(closes, 14)
		if last := got[len(got)-1]; last != 100 {
			t.Errorf("rising RSI = %v, want 100", last)
		}
	})

	t.Run("strictly falling series goes to 0", func(t *testing.T) {
		closes := make([]float64, 50)
		for i := range closes {
			closes[i] = 100 - float64(i)
		}
		got := RSI(closes, 14)
		if last := got[len(got)-1]; last != 0 {
			t.Errorf("falling RSI = %v, want 0", last)
		}
	})

	t.Run("values stay within 0 and 100", func(t *testing.T) {
		closes := []float64{100, 102, 99, 103, 97, 105, 95, 110, 90, 108}
		for _, v := range RSI(closes, 14) {
			if v < 0 || v > 100 {
				t.Errorf("RSI value %v out of range", v)
			}
		}
	})
}

func TestDrawdownFromHigh(t *testing.T) {
	t.Run("at trailing high is zero", func(t *testing.T) {
		got := DrawdownFromHigh([]float64{90, 95, 100}, 90)
		if last := got[len(got)-1]; last != 0 {
			t.Errorf("drawdown = %v, want 0", last)
		}
	})

	t.Run("retracement from high", func(t *testing.T) {
		got := DrawdownFromHigh([]float64{100, 80}, 90)
		if want := 0.2; math.Abs(got[1]-want) > 1e-9 {
			t.Errorf("drawdown = %v, want %v", got[1], want)
		}
	})

	t.Run("window limits the high", func(t *testing.T) {
		// With window 2 the high at index 3 is max(90, 85) = 90.
		got := DrawdownFromHigh([]float64{200, 100, 90, 85}, 2)
		if want := (90.0 - 85.0) / 90.0; math.Abs(got[3]-want) > 1e-9 {
			t.Errorf("drawdown = %v, want %v", got[3], want)
		}
	})
}

func TestVolatility(t *testing.T) {
	t.Run("constant series has zero volatility", func(t *testing.T) {
		got := Volatility(constant(100, 30), 20)
		if last := got[len(got)-1]; last != 0 {
			t.Errorf("volatility = %v, want 0", last)
		}
	})

	t.Run("single observation yields zero", func(t *testing.T) {
		got := Volatility([]float64{100}, 20)
		if got[0] != 0 {
			t.Errorf("volatility = %v, want 0", got[0])
		}
	})

	t.Run("alternating returns are positive", func(t *testing.T) {
		closes := []float64{100, 110, 100, 110, 100, 110, 100}
		got := Volatility(closes, 20)
		if last := got[len(got)-1]; last <= 0 {
			t.Errorf("volatility = %v, want > 0", last)
		}
	})
}

func TestMomentum(t *testing.T) {
	t.Run("fractional change over lookback", func(t *testing.T) {
		closes := append(constant(100, 30), 110)
		got := Momentum(closes, 30, 0)
		if want := 0.10; math.Abs(got[len(got)-1]-want) > 1e-9 {
			t.Errorf("momentum = %v, want %v", got[len(got)-1], want)
		}
	})

	t.Run("fallback before lookback is reachable", func(t *testing.T) {
		got := Momentum(constant(100, 10), 30, 0.5)
		for i, v := range got {
			if v != 0.5 {
				t.Fatalf("out[%d] = %v, want fallback 0.5", i, v)
			}
		}
	})
}

func TestLast(t *testing.T) {
	if got := Last(nil); got != 0 {
		t.Errorf("Last(nil) = %v, want 0", got)
	}
	if got := Last([]float64{1, 2, 3}); got != 3 {
		t.Errorf("Last = %v, want 3", got)
	}
}
