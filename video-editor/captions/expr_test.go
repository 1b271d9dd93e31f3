package captions

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"constant", Constant{Value: 60}, "60"},
		{"constant rounds", Constant{Value: 1.0 / 3}, "0.3333"},
		{"negative zero", Constant{Value: -0.00001}, "0"},
		{"rising ramp", Ramp{From: 0, To: 1, Start: 2, End: 2.5}, "0+1*clip((t-2)/0.5,0,1)"},
		{"falling ramp", Ramp{From: 1.2, To: 1, Start: 0.9, End: 1}, "1.2-0.2*clip((t-0.9)/0.1,0,1)"},
		{"flat ramp", Ramp{From: 72, To: 72, Start: 0, End: 1}, "72"},
		{"smooth ramp", Ramp{From: 0, To: 2, Start: 0, End: 1, Easing: EaseSmooth},
			"0+2*(clip((t-0)/1,0,1))*(clip((t-0)/1,0,1))*(3-2*clip((t-0)/1,0,1))"},
		{"piecewise", Piecewise{
			Cases: []Case{{Until: 1, Expr: Constant{Value: 1}}},
			Else:  Constant{Value: 2},
		}, "if(lt(t,1),1,2)"},
		{"piecewise without else", Piecewise{Cases: []Case{{Until: 1, Expr: Constant{Value: 5}}}}, "if(lt(t,1),5,0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.expr); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderScaledPop(t *testing.T) {
	c, err := PopCurve(TimedPhrase{Start: 0, End: 1}, DefaultAnimationConfig())
	if err != nil {
		t.Fatalf("PopCurve() error = %v", err)
	}
	want := "if(lt(t,0.1),42+30*clip((t-0)/0.1,0,1),if(lt(t,0.9),72,72-12*clip((t-0.9)/0.1,0,1)))"
	if got := Render(Scale(c.Expr(), 60)); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestEvalMatchesScale(t *testing.T) {
	e := Piecewise{
		Cases: []Case{{Until: 1, Expr: Ramp{From: 0, To: 1, Start: 0, End: 1}}},
		Else:  Ramp{From: 1, To: 0.5, Start: 1, End: 2, Easing: EaseSmooth},
	}
	scaled := Scale(e, 10)
	for _, ts := range []float64{-1, 0, 0.25, 0.999, 1, 1.5, 2, 3} {
		if got, want := Eval(scaled, ts), 10*Eval(e, ts); !near(got, want) {
			t.Errorf("Eval(scaled, %v) = %v, want %v", ts, got, want)
		}
	}
	if got := Eval(e, 1.5); !near(got, 0.75) {
		t.Errorf("smooth midpoint = %v, want 0.75", got)
	}
}
