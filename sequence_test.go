package hexse

import (
	"math"
	"math/rand"
	"testing"
)

// buildFixture constructs the sequence ATG AAA TAG under a single ORF
// spanning all nine bases, with exactly one μ-category and one ω-class
// so that every random draw in assignSubstitutionRates is forced
// (rng.Intn(1) always returns 0): every assertion below is reachable by
// hand-tracing the codon model rather than by running the simulator.
func buildFixture(t *testing.T) *Sequence {
	t.Helper()
	orfs := []ORF{
		{
			Frame:       Frame0Forward,
			Coords:      []Interval{{Start: 0, End: 9}},
			NumClasses:  1,
			OmegaValues: []float64{2.0},
		},
	}
	params := Params{
		Kappa:      2.0,
		GlobalRate: 1.0,
		Pi:         [4]float64{0.25, 0.25, 0.25, 0.25},
		MuValues:   []float64{1.0},
	}
	rng := rand.New(rand.NewSource(1))
	seq, warnings := NewSequence("ATGAAATAG", orfs, params, rng)
	if seq == nil {
		t.Fatalf("expected a sequence, got nil, warnings=%v", warnings)
	}
	return seq
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewSequenceRejectsInvalidInput(t *testing.T) {
	_, errs := NewSequence("ACGT", nil, Params{}, rand.New(rand.NewSource(1)))
	if len(errs) == 0 {
		t.Fatal("expected an error for a too-short sequence")
	}
}

func TestNewSequenceDropsInvalidORFs(t *testing.T) {
	badORF := ORF{Frame: Frame0Forward, Coords: []Interval{{Start: 0, End: 7}}}
	seq, warnings := NewSequence("ATGAAATAG", []ORF{badORF}, Params{
		Pi: [4]float64{0.25, 0.25, 0.25, 0.25}, GlobalRate: 1, Kappa: 1,
	}, rand.New(rand.NewSource(1)))
	if seq == nil {
		t.Fatal("expected a sequence even with an invalid ORF dropped")
	}
	if len(seq.ORFs) != 0 {
		t.Errorf("expected the invalid ORF to be dropped, got %d ORFs", len(seq.ORFs))
	}
	if len(warnings) != 1 {
		t.Errorf("expected exactly one warning, got %d", len(warnings))
	}
}

func TestStartStopCodonSitesAreFullyDegenerate(t *testing.T) {
	seq := buildFixture(t)
	for _, i := range []int{0, 1, 2, 6, 7, 8} {
		if rate := seq.Nucleotides[i].TotalRate(); rate != 0 {
			t.Errorf("nucleotide %d (in start/stop codon) should have zero rate, got %v", i, rate)
		}
	}
}

func TestInteriorCodonRates(t *testing.T) {
	seq := buildFixture(t)

	want := map[int]float64{3: 0.75, 4: 1.25, 5: 1.25}
	for idx, w := range want {
		if got := seq.Nucleotides[idx].TotalRate(); !almostEqual(got, w) {
			t.Errorf("nucleotide %d: TotalRate() = %v, want %v", idx, got, w)
		}
	}
}

func TestPosition3ExcludesTransversionToStop(t *testing.T) {
	seq := buildFixture(t)
	nt := &seq.Nucleotides[3]
	if _, ok := nt.Rate('T'); ok {
		t.Error("A->T at position 3 creates a TAA stop codon and must be inadmissible")
	}
	if _, ok := nt.Rate('C'); !ok {
		t.Error("A->C at position 3 should be admissible")
	}
	if _, ok := nt.Rate('G'); !ok {
		t.Error("A->G at position 3 should be admissible")
	}
}

func TestIndividualRateValues(t *testing.T) {
	seq := buildFixture(t)
	nt := &seq.Nucleotides[3]
	if r, _ := nt.Rate('C'); !almostEqual(r, 0.5) {
		t.Errorf("A->C rate = %v, want 0.5 (transversion: kappa*pi)", r)
	}
	if r, _ := nt.Rate('G'); !almostEqual(r, 0.25) {
		t.Errorf("A->G rate = %v, want 0.25 (transition: pi)", r)
	}
}

func TestTotalOmegasRegistersOnlyNonsynonymousSignatures(t *testing.T) {
	seq := buildFixture(t)
	if len(seq.TotalOmegas) != 1 {
		t.Fatalf("expected exactly one registered non-synonymous signature, got %d", len(seq.TotalOmegas))
	}
	for _, v := range seq.TotalOmegas {
		if !almostEqual(v, 2.0) {
			t.Errorf("expected the registered total omega to equal the ORF's sole omega value 2.0, got %v", v)
		}
	}
}

func TestSynonymousSubstitutionExists(t *testing.T) {
	seq := buildFixture(t)
	// Position 5 (the third base of AAA) mutating to G yields AAG,
	// synonymous with AAA (both encode Lysine).
	nt := &seq.Nucleotides[5]
	sigID := nt.sigID[baseIndex('G')]
	if sigID == noSignature {
		t.Fatal("expected A->G at position 5 to be tracked in the event tree")
	}
	if !seq.signatureIsSynonymous(sigID) {
		t.Error("AAA->AAG is a synonymous substitution and should carry the synonymous signature")
	}
}

func TestEventTreeEventCounts(t *testing.T) {
	seq := buildFixture(t)
	want := map[byte]int{'A': 0, 'C': 3, 'G': 3, 'T': 2}
	for base, w := range want {
		if got := seq.Tree.To[baseIndex(base)].Events; got != w {
			t.Errorf("Tree.To[%c].Events = %d, want %d", base, got, w)
		}
	}
}

func TestEventTreeLeafProbabilitiesSumCorrectly(t *testing.T) {
	seq := buildFixture(t)
	toG := baseIndex('G')
	fromA := baseIndex('A')
	cat := seq.Tree.To[toG].From[fromA].Categories[0]

	total := 0.0
	for _, leaf := range cat.Omegas {
		total += leaf.Prob
	}
	// denom = 1 + 2.0 = 3: the synonymous leaf has prob 1/3, the
	// non-synonymous leaf has prob total_omega/denom = 2/3.
	if !almostEqual(total, 1.0) {
		t.Errorf("expected the leaf probabilities under (to=G,from=A) to sum to 1, got %v", total)
	}
}

func TestTransversionProbabilityMatchesKappa(t *testing.T) {
	seq := buildFixture(t)
	fromA := baseIndex('A')
	transitionProb := seq.Tree.To[baseIndex('G')].From[fromA].Prob
	transversionProb := seq.Tree.To[baseIndex('C')].From[fromA].Prob
	// kappa = 2: transversion:transition probability ratio should be 2:1.
	if !almostEqual(transversionProb/transitionProb, 2.0) {
		t.Errorf("expected transversion/transition probability ratio = kappa = 2, got %v", transversionProb/transitionProb)
	}
}

func TestStringRoundTrips(t *testing.T) {
	seq := buildFixture(t)
	if seq.String() != "ATGAAATAG" {
		t.Errorf("String() = %q, want %q", seq.String(), "ATGAAATAG")
	}
}

func TestLinearNeighborsAtBoundaries(t *testing.T) {
	seq := buildFixture(t)
	if n := seq.LeftNeighbor(0); n != nil {
		t.Errorf("expected nil left neighbor at position 0 of a linear sequence, got %v", n)
	}
	if n := seq.RightNeighbor(len(seq.Nucleotides) - 1); n != nil {
		t.Errorf("expected nil right neighbor at the last position of a linear sequence, got %v", n)
	}
}

func TestCircularNeighborsWrap(t *testing.T) {
	seq := buildFixture(t)
	seq.Params.Circular = true
	if n := seq.LeftNeighbor(0); n == nil || n.Index != len(seq.Nucleotides)-1 {
		t.Errorf("expected circular left neighbor of position 0 to be the last nucleotide")
	}
	if n := seq.RightNeighbor(len(seq.Nucleotides) - 1); n == nil || n.Index != 0 {
		t.Errorf("expected circular right neighbor of the last position to be position 0")
	}
}

func TestCloneForChildIsIndependent(t *testing.T) {
	seq := buildFixture(t)
	clone := seq.CloneForChild()

	clone.Nucleotides[4].Base = 'T'
	if seq.Nucleotides[4].Base == 'T' {
		t.Error("mutating the clone must not affect the parent's nucleotides")
	}

	clone.TotalOmegas[999] = 42
	if _, ok := seq.TotalOmegas[999]; ok {
		t.Error("mutating the clone's TotalOmegas must not affect the parent's")
	}

	// the clone's event tree must be a deep copy too
	toG, fromA := baseIndex('G'), baseIndex('A')
	clone.Tree.To[toG].From[fromA].Events = -1
	if seq.Tree.To[toG].From[fromA].Events == -1 {
		t.Error("mutating the clone's event tree must not affect the parent's")
	}
}

func TestApplySubstitutionChangesBaseAndPreservesLength(t *testing.T) {
	seq := buildFixture(t)
	rng := rand.New(rand.NewSource(2))
	originalLen := len(seq.Nucleotides)

	seq.ApplySubstitution(4, 'G', rng)

	if seq.Nucleotides[4].Base != 'G' {
		t.Errorf("expected position 4 to become G, got %c", seq.Nucleotides[4].Base)
	}
	if len(seq.Nucleotides) != originalLen {
		t.Errorf("ApplySubstitution must never change sequence length")
	}
}

func TestApplySubstitutionRepairsEventTree(t *testing.T) {
	seq := buildFixture(t)
	rng := rand.New(rand.NewSource(2))

	// Before mutating, position 4 (base A) is attached under
	// from-base A in several leaves. After changing it to G, it must
	// never again appear under a from-base-A leaf, since its current
	// base is no longer A.
	seq.ApplySubstitution(4, 'G', rng)

	fromA := baseIndex('A')
	for toIdx := range seq.Tree.To {
		fn := seq.Tree.To[toIdx].From[fromA]
		if fn == nil {
			continue
		}
		for _, cat := range fn.Categories {
			for _, leaf := range cat.Omegas {
				for _, site := range leaf.Sites {
					if site == 4 {
						t.Fatalf("nucleotide 4 still attached under from-base A after becoming G")
					}
				}
			}
		}
	}

	if nt4 := &seq.Nucleotides[4]; nt4.TotalRate() == 0 {
		t.Error("nucleotide 4 (now G, interior to the ORF) should still have a positive total rate")
	}
}
