package hexse

import "testing"

func TestBuildCodonsForward(t *testing.T) {
	orf := ORF{Frame: Frame0Forward, Coords: []Interval{{Start: 0, End: 9}}}
	codons, err := buildCodons(0, orf, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codons) != 3 {
		t.Fatalf("expected 3 codons, got %d", len(codons))
	}
	want := [3][3]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}}
	for i, c := range codons {
		if c.NTIndices != want[i] {
			t.Errorf("codon %d: got %v, want %v", i, c.NTIndices, want[i])
		}
	}
}

func TestBuildCodonsReverse(t *testing.T) {
	orf := ORF{Frame: Frame0Reverse, Coords: []Interval{{Start: 0, End: 9}}}
	codons, err := buildCodons(0, orf, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [3][3]int{{8, 7, 6}, {5, 4, 3}, {2, 1, 0}}
	for i, c := range codons {
		if c.NTIndices != want[i] {
			t.Errorf("codon %d: got %v, want %v", i, c.NTIndices, want[i])
		}
	}
}

func TestBuildCodonsSpliced(t *testing.T) {
	orf := ORF{Frame: Frame0Forward, Coords: []Interval{{Start: 0, End: 3}, {Start: 6, End: 12}}}
	codons, err := buildCodons(0, orf, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codons) != 3 {
		t.Fatalf("expected 3 codons, got %d", len(codons))
	}
	if codons[0].NTIndices != [3]int{0, 1, 2} {
		t.Errorf("first codon should come from the first interval, got %v", codons[0].NTIndices)
	}
	if codons[1].NTIndices != [3]int{6, 7, 8} {
		t.Errorf("second codon should come from the second interval, got %v", codons[1].NTIndices)
	}
}

func TestBuildCodonsOutOfBounds(t *testing.T) {
	orf := ORF{Frame: Frame0Forward, Coords: []Interval{{Start: 0, End: 9}}}
	if _, err := buildCodons(0, orf, 6); err == nil {
		t.Error("expected an error for coordinates exceeding the sequence length")
	}
}

func TestBuildCodonsNotMultipleOfThree(t *testing.T) {
	orf := ORF{Frame: Frame0Forward, Coords: []Interval{{Start: 0, End: 7}}}
	if _, err := buildCodons(0, orf, 7); err == nil {
		t.Error("expected an error for a spliced length not divisible by three")
	}
}

func TestCodonPositionOf(t *testing.T) {
	c := Codon{NTIndices: [3]int{4, 5, 6}}
	if c.positionOf(5) != 1 {
		t.Errorf("expected position 1, got %d", c.positionOf(5))
	}
	if c.positionOf(99) != -1 {
		t.Errorf("expected -1 for an index not in the codon, got %d", c.positionOf(99))
	}
}
