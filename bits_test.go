package wrflock

import "testing"

func TestStateToWordRoundTrip(t *testing.T) {
	s := uint32(sCurrW | sAcqW | sYieldR)
	w := stateToWord(s)
	if got := wordState(w); got != s {
		t.Fatalf("wordState(stateToWord(s)) = %#x, want %#x", got, s)
	}
	if got := wordCounter(w); got != 0 {
		t.Fatalf("wordCounter of a freshly built state word = %#x, want 0", got)
	}
}

func TestWithStatePreservesCounter(t *testing.T) {
	w := joinWord(sCurrR, 7)
	w2 := withState(w, sCurrF)
	if got := wordCounter(w2); got != 7 {
		t.Fatalf("withState changed the counter half: got %d, want 7", got)
	}
	if got := wordState(w2); got != sCurrF {
		t.Fatalf("withState did not install the new state: got %#x, want %#x", got, sCurrF)
	}
}

func TestJoinSplitWordRoundTrip(t *testing.T) {
	w := joinWord(sCurrW|sAcqR, 42)
	if got := wordState(w); got != sCurrW|sAcqR {
		t.Fatalf("wordState = %#x, want %#x", got, sCurrW|sAcqR)
	}
	if got := wordCounter(w); got != 42 {
		t.Fatalf("wordCounter = %d, want 42", got)
	}
}

func TestPhaseBits(t *testing.T) {
	cases := []struct {
		p     Phase
		curr  uint32
		yield uint32
	}{
		{PhaseWrite, sCurrW, sYieldW},
		{PhaseRead, sCurrR, sYieldR},
		{PhaseFree, sCurrF, sYieldF},
	}
	for _, c := range cases {
		curr, yield := phaseBits(c.p)
		if curr != c.curr || yield != c.yield {
			t.Errorf("phaseBits(%v) = (%#x, %#x), want (%#x, %#x)", c.p, curr, yield, c.curr, c.yield)
		}
	}
}

func TestPhaseBitsInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("phaseBits(PhaseUninit) did not panic")
		}
	}()
	phaseBits(PhaseUninit)
}

func TestRdCount(t *testing.T) {
	if got := rdCount(0xFFFF0001); got != 1 {
		t.Fatalf("rdCount masked the high bits incorrectly: got %d, want 1", got)
	}
}

func TestStateCounterOffsetsComplementary(t *testing.T) {
	if stateShift == counterShift {
		t.Fatal("state and counter halves must occupy disjoint 32-bit halves")
	}
	if stateByteOffset == counterByteOffset {
		t.Fatal("state and counter byte offsets must differ")
	}
}
