// SPDX-License-Identifier: EPL-2.0

package envelope

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEnvelope_Segments(t *testing.T) {
	t.Parallel()

	p := NewParameters(100)
	p.Attack = 0.04
	p.Hold = 0.02
	p.Decay = 0.02
	p.Sustain = 0.5

	e := New(p)
	e.Start()

	want := []struct {
		value float64
		stage Stage
	}{
		{0.25, StageAttack},
		{0.5, StageAttack},
		{0.75, StageAttack},
		{1, StageAttack},
		{1, StageHold},
		{1, StageHold},
		{0.75, StageDecay},
		{0.5, StageDecay},
		{0.5, StageSustain},
		{0.5, StageSustain},
	}
	for i, w := range want {
		got := e.Next()
		if !near(got, w.value) || e.Stage() != w.stage {
			t.Fatalf("step %d = %v (%v), want %v (%v)", i, got, e.Stage(), w.value, w.stage)
		}
	}
}

func TestEnvelope_InstantStart(t *testing.T) {
	t.Parallel()

	e := New(NewParameters(3000))
	e.Start()
	if got := e.Next(); got != 1 {
		t.Errorf("first value with zero attack = %v, want 1", got)
	}
	if e.Stage() != StageSustain {
		t.Errorf("stage = %v, want sustain", e.Stage())
	}
}

func TestEnvelope_Release(t *testing.T) {
	t.Parallel()

	p := NewParameters(100)
	p.Sustain = 0.6
	p.ReleaseHold = 0.02
	p.Release = 0.03

	e := New(p)
	e.Start()
	e.Next()
	e.Release()

	want := []float64{0.6, 0.6, 0.4, 0.2, 0}
	for i, w := range want {
		if got := e.Next(); !near(got, w) {
			t.Fatalf("release step %d = %v, want %v", i, got, w)
		}
		if e.IsIdle() {
			t.Fatalf("idle too early at step %d", i)
		}
	}
	if got := e.Next(); got != 0 || !e.IsIdle() {
		t.Errorf("after release = %v idle=%v, want 0 idle", got, e.IsIdle())
	}
}

func TestEnvelope_ReleaseWhenIdle(t *testing.T) {
	t.Parallel()

	e := New(NewParameters(100))
	e.Release()
	if !e.IsIdle() || e.Next() != 0 {
		t.Error("Release on an idle envelope should stay idle")
	}
}

func TestEnvelope_RestartDamps(t *testing.T) {
	t.Parallel()

	p := NewParameters(1000)
	p.Sustain = 0.8
	p.Attack = 0.005

	e := New(p)
	e.Start()
	for range 10 {
		e.Next()
	}
	e.Restart()
	if !e.IsPreStarting() {
		t.Fatal("Restart from sustain did not enter pre-start")
	}

	prev := 0.8
	after := 0.0
	steps := 0
	for e.IsPreStarting() {
		v := e.Next()
		steps++
		if steps > 100 {
			t.Fatal("pre-start never finished")
		}
		if !e.IsPreStarting() {
			after = v
			break
		}
		if v > prev {
			t.Fatalf("pre-start rose from %v to %v", prev, v)
		}
		prev = v
	}

	// ten ramp steps, the last one still reported as pre-start, then the hand-over
	if steps != 11 {
		t.Errorf("pre-start took %d calls, want 11", steps)
	}
	if prev != 0 {
		t.Errorf("last pre-start value = %v, want 0", prev)
	}
	if after <= 0 || e.Stage() != StageAttack {
		t.Errorf("after pre-start value = %v stage = %v, want attack above zero", after, e.Stage())
	}
}

func TestEnvelope_RestartFromIdle(t *testing.T) {
	t.Parallel()

	e := New(NewParameters(100))
	e.Restart()
	if e.IsPreStarting() {
		t.Error("Restart from idle entered pre-start")
	}
	if got := e.Next(); got != 1 {
		t.Errorf("first value = %v, want 1", got)
	}
}

func TestEnvelope_SustainTracksParameter(t *testing.T) {
	t.Parallel()

	p := NewParameters(100)
	e := New(p)
	e.Start()
	e.Next()

	p.Sustain = 0.3
	if got := e.Next(); !near(got, 0.3) {
		t.Errorf("sustain = %v, want 0.3", got)
	}

	p.Sustain = 4
	if got := e.Next(); got != 1 {
		t.Errorf("out of range sustain = %v, want clamped 1", got)
	}
}

func TestEnvelope_UpdateParams(t *testing.T) {
	t.Parallel()

	p := NewParameters(100)
	p.Attack = 1
	e := New(p)
	e.Start()
	for range 50 {
		e.Next()
	}

	p.Attack = 0.2
	e.UpdateParams()
	if got := e.Next(); got != 1 {
		t.Errorf("after shortening attack = %v, want 1", got)
	}
}

func TestEnvelope_Reset(t *testing.T) {
	t.Parallel()

	e := New(NewParameters(100))
	e.Start()
	e.Next()
	e.Reset()
	if !e.IsIdle() || e.Value() != 0 {
		t.Errorf("Reset left stage %v value %v", e.Stage(), e.Value())
	}
}

func TestStage_String(t *testing.T) {
	t.Parallel()

	if StagePreStart.String() != "prestart" || Stage(99).String() != "unknown" {
		t.Error("unexpected stage names")
	}
}

func BenchmarkEnvelope_Next(b *testing.B) {
	p := NewParameters(3000)
	p.Attack, p.Decay, p.Sustain, p.Release = 0.01, 0.1, 0.5, 0.2
	e := New(p)

	b.ReportAllocs()
	for i := range b.N {
		if i%4096 == 0 {
			e.Start()
		}
		_ = e.Next()
	}
}
