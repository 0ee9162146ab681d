package words

import (
	"testing"
)

func TestSimpleSource_One(t *testing.T) {
	source := NewSimpleSource()

	w, err := source.One(0)
	if err != nil {
		t.Fatalf("One failed: %v", err)
	}
	if w.Word == "" || w.Hint == "" {
		t.Errorf("Candidate should carry word and hint, got %+v", w)
	}
}

func TestSimpleSource_GroupDistinct(t *testing.T) {
	source := NewSimpleSource()

	group, err := source.Group(4)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(group) != 4 {
		t.Fatalf("Expected 4 candidates, got %d", len(group))
	}

	seen := make(map[string]struct{})
	for _, w := range group {
		if _, dup := seen[w.Word]; dup {
			t.Errorf("Candidate %q appeared twice", w.Word)
		}
		seen[w.Word] = struct{}{}
	}
}

func TestSimpleSource_GroupTooLarge(t *testing.T) {
	source := NewSimpleSource()

	if _, err := source.Group(1000); err != ErrNotEnoughWords {
		t.Errorf("Expected ErrNotEnoughWords, got %v", err)
	}
}
