package smpp

import "testing"

func TestSequenceNextIncrements(t *testing.T) {
	s := newSequence()
	for i := uint32(1); i <= 5; i++ {
		if got := s.next(nil); got != i {
			t.Fatalf("next() = %d, want %d", got, i)
		}
	}
}

func TestSequenceWrapsPastMax(t *testing.T) {
	s := newSequence()
	s.n.Store(sequenceMax)
	if got := s.next(nil); got != 1 {
		t.Fatalf("next() after max = %d, want 1", got)
	}
}

func TestSequenceSkipsTaken(t *testing.T) {
	s := newSequence()
	s.n.Store(1)
	taken := map[uint32]bool{2: true, 3: true}
	got := s.next(func(n uint32) bool { return taken[n] })
	if got != 4 {
		t.Fatalf("next() = %d, want 4 (skipping taken 2 and 3)", got)
	}
}
