/*
Package hexse implements the codon-aware nucleotide substitution event
model: the Sequence/Nucleotide/Codon/ORF data model, the Event Tree that
indexes every admissible substitution by target base, source base,
rate category and ω-signature, and the rate and probability arithmetic
that populates it. Branch simulation and phylogeny traversal live in
the sibling gillespie and phylo packages; this package is their shared,
passive data structure.
*/
package hexse

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/PoonLab/hexse/checks"
	"github.com/PoonLab/hexse/genetic"
	"github.com/PoonLab/hexse/transform"
)

// Params collects the scalar and per-category inputs a Sequence is
// built from: everything spec.md §6 lists as caller-supplied scalars.
type Params struct {
	Kappa      float64
	GlobalRate float64
	Pi         [4]float64 // stationary frequencies, indexed like bases: A,C,G,T
	MuValues   []float64  // discretized base-rate categories (μ1..μk)
	Circular   bool

	// CodeTable selects the genetic code used to detect starts, stops
	// and synonymous substitutions. Nil defaults to the standard code
	// (NCBI table 1).
	CodeTable *genetic.CodeTable
}

// Sequence owns every Nucleotide, Codon and ORF descriptor built from
// one input string, plus the Event Tree indexing their admissible
// substitutions. Codons and Nucleotides reference each other only
// through indices into these slices — never pointers — so that
// CloneForChild can replicate the whole structure without chasing
// cycles.
type Sequence struct {
	Nucleotides []Nucleotide
	Codons      []Codon
	ORFs        []ORF
	Params      Params

	Tree        *EventTree
	TotalOmegas map[int]float64

	sigTable  []omegaSignature
	sigIndex  map[string]int
	codeTable *genetic.CodeTable
}

// NewSequence builds a Sequence from a raw nucleotide string and an
// ORF table. It validates seq first (fatal on failure, per spec.md
// §7's InvalidSequence), then validates each ORF (non-fatal: invalid
// ORFs are dropped and reported in the returned warning slice, mirroring
// run_simulation.py's valid_orfs filtering), assigns each surviving ORF
// a one-hot ORF map bitmask in declaration order, resolves codons,
// and finally walks every site once to assign substitution rates and
// populate the Event Tree. rng drives every random choice (μ-category,
// ω-class) made during that walk, so the same rng state and inputs
// always produce the same Sequence.
func NewSequence(seq string, orfTable []ORF, params Params, rng *rand.Rand) (*Sequence, []error) {
	if !checks.ValidDNASequence(seq) {
		return nil, []error{InvalidSequenceError{Reason: "must be at least 9 unambiguous DNA bases (A/C/G/T)"}}
	}
	seq = strings.ToUpper(seq)

	var warnings []error

	codeTable := params.CodeTable
	if codeTable == nil {
		codeTable = genetic.StandardTable(1)
	}

	s := &Sequence{
		Nucleotides: make([]Nucleotide, len(seq)),
		Params:      params,
		TotalOmegas: map[int]float64{},
		sigIndex:    map[string]int{},
		codeTable:   codeTable,
	}
	for i := 0; i < len(seq); i++ {
		s.Nucleotides[i] = Nucleotide{Base: seq[i], Index: i}
	}

	var validORFs []ORF
	for _, orf := range orfTable {
		if err := ValidateORF(orf, len(seq)); err != nil {
			warnings = append(warnings, err)
			continue
		}
		validORFs = append(validORFs, orf)
	}
	for i := range validORFs {
		m := make([]byte, len(validORFs))
		m[i] = 1
		validORFs[i].Map = m
	}
	s.ORFs = validORFs

	for orfIdx, orf := range s.ORFs {
		codons, err := buildCodons(orfIdx, orf, len(seq))
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		for _, c := range codons {
			ci := len(s.Codons)
			s.Codons = append(s.Codons, c)
			for _, ntIdx := range c.NTIndices {
				s.Nucleotides[ntIdx].Codons = append(s.Nucleotides[ntIdx].Codons, ci)
			}
		}
	}

	s.Tree = newEventTree(len(s.Params.MuValues))

	for i := range s.Nucleotides {
		s.assignSubstitutionRates(&s.Nucleotides[i], rng)
	}
	s.computeProbabilities()
	s.countEvents()

	return s, warnings
}

// String reconstructs the sequence's current nucleotide string.
func (s *Sequence) String() string {
	var b strings.Builder
	b.Grow(len(s.Nucleotides))
	for _, nt := range s.Nucleotides {
		b.WriteByte(nt.Base)
	}
	return b.String()
}

// LeftNeighbor returns the nucleotide immediately 5' of pos, wrapping
// to the last position when the sequence is circular (spec.md §9(c):
// this repairs the source's missing else-branch for get_left_nt). It
// returns nil at position 0 of a linear sequence.
func (s *Sequence) LeftNeighbor(pos int) *Nucleotide {
	if pos == 0 {
		if s.Params.Circular {
			return &s.Nucleotides[len(s.Nucleotides)-1]
		}
		return nil
	}
	return &s.Nucleotides[pos-1]
}

// RightNeighbor returns the nucleotide immediately 3' of pos, wrapping
// to position 0 when the sequence is circular. It returns nil at the
// last position of a linear sequence.
func (s *Sequence) RightNeighbor(pos int) *Nucleotide {
	if pos == len(s.Nucleotides)-1 {
		if s.Params.Circular {
			return &s.Nucleotides[0]
		}
		return nil
	}
	return &s.Nucleotides[pos+1]
}

// CloneForChild replicates the entire Sequence — nucleotides, codons,
// ORFs and the Event Tree — so a phylogeny walker can hand an
// independent copy to each child branch. This is the fork boundary
// spec.md §5 and §9 describe: after CloneForChild returns, the parent
// and child share no mutable state.
func (s *Sequence) CloneForChild() *Sequence {
	clone := &Sequence{
		Nucleotides: append([]Nucleotide(nil), s.Nucleotides...),
		Codons:      append([]Codon(nil), s.Codons...),
		ORFs:        append([]ORF(nil), s.ORFs...),
		Params:      s.Params,
		TotalOmegas: make(map[int]float64, len(s.TotalOmegas)),
		sigTable:    append([]omegaSignature(nil), s.sigTable...),
		sigIndex:    make(map[string]int, len(s.sigIndex)),
		codeTable:   s.codeTable,
	}
	for i := range clone.Nucleotides {
		clone.Nucleotides[i].Codons = append([]int(nil), s.Nucleotides[i].Codons...)
	}
	for k, v := range s.TotalOmegas {
		clone.TotalOmegas[k] = v
	}
	for k, v := range s.sigIndex {
		clone.sigIndex[k] = v
	}
	clone.Tree = s.Tree.clone()
	return clone
}

// affectedSites returns nt's own index plus every nucleotide sharing a
// codon with it, deduplicated: the full set of sites whose admissible
// targets and ω-signatures can change when nt substitutes, since
// codon-level properties (start/stop/synonymy) depend on all three
// positions of every codon a site belongs to.
func (s *Sequence) affectedSites(nt *Nucleotide) []int {
	seen := map[int]bool{nt.Index: true}
	sites := []int{nt.Index}
	for _, ci := range nt.Codons {
		for _, idx := range s.Codons[ci].NTIndices {
			if !seen[idx] {
				seen[idx] = true
				sites = append(sites, idx)
			}
		}
	}
	return sites
}

// detachSite removes every one of nt's current admissible targets from
// the Event Tree, undoing what assignSubstitutionRates attached.
func (s *Sequence) detachSite(nt *Nucleotide) {
	fromIdx := baseIndex(nt.Base)
	for toIdx := range nt.rate {
		if nt.rate[toIdx] == nil {
			continue
		}
		s.Tree.detach(toIdx, fromIdx, nt.catKey[toIdx], nt.sigID[toIdx], nt.Index)
	}
}

// ApplySubstitution implements spec.md §4.7's branch-step mutation:
// it changes the nucleotide at ntIndex to the chosen target base, then
// repairs every site whose codon context depends on it (itself and its
// codon-mates in every ORF it participates in) by detaching their
// stale Event Tree entries, reassigning their substitution rates and
// ω-signatures against the new sequence state, and reattaching them.
// rng drives the same μ-category/ω-class draws assignSubstitutionRates
// always makes. Probabilities and event counts are recomputed over the
// whole tree afterward, since a changed total_omegas registry shifts
// the shared denominator for every ω-signature leaf, not just the
// affected sites'.
func (s *Sequence) ApplySubstitution(ntIndex int, to byte, rng *rand.Rand) {
	nt := &s.Nucleotides[ntIndex]
	affected := s.affectedSites(nt)

	for _, idx := range affected {
		s.detachSite(&s.Nucleotides[idx])
	}

	nt.Base = to

	for _, idx := range affected {
		s.assignSubstitutionRates(&s.Nucleotides[idx], rng)
	}

	s.computeProbabilities()
	s.countEvents()
}

// codonBases returns the codon's current triplet, complementing each
// base when the codon's frame is on the negative strand (its
// NTIndices already run 3'->5' in original-sequence order, so
// complementing in place yields the strand's actual reading sequence).
// substPos/substBase optionally override one position before reading,
// to evaluate a hypothetical substitution without mutating the
// sequence.
func (s *Sequence) codonBases(c Codon, substPos int, substBase byte) string {
	var out [3]byte
	for i, idx := range c.NTIndices {
		base := s.Nucleotides[idx].Base
		if i == substPos {
			base = substBase
		}
		if c.Frame.Reverse() {
			base = byte(transform.ComplementBase(rune(base)))
		}
		out[i] = base
	}
	return string(out[:])
}

func (s *Sequence) codonTriplet(c Codon) string {
	return s.codonBases(c, -1, 0)
}

// codonIsFirst reports whether c is the first codon in its ORF's
// spliced coordinate order — the position a START must occupy.
func (s *Sequence) codonIsFirst(c Codon) bool {
	orf := s.ORFs[c.ORFIndex]
	if c.Frame.Reverse() {
		// buildCodons reverses the spliced positions, so the first codon
		// starts at the highest position of the last declared interval.
		last := orf.Coords[len(orf.Coords)-1]
		hi := last.End
		if last.Start > hi {
			hi = last.Start
		}
		return c.NTIndices[0] == hi-1
	}
	first := orf.Coords[0]
	return c.NTIndices[0] == first.Start
}

func (s *Sequence) codonIsStart(c Codon) bool {
	return s.codonIsFirst(c) && s.codeTable.IsStart(s.codonTriplet(c))
}

func (s *Sequence) codonIsStop(c Codon) bool {
	return s.codeTable.IsStop(s.codonTriplet(c))
}

func (s *Sequence) codonIsNonsyn(c Codon, pos int, to byte) bool {
	return !s.codeTable.IsSynonymous(s.codonTriplet(c), s.codonBases(c, pos, to))
}

func (s *Sequence) codonCreatesStop(c Codon, pos int, to byte) bool {
	return s.codeTable.IsStop(s.codonBases(c, pos, to))
}

// isStartStopCodon implements spec.md §4.3 step 1 / is_start_stop_codon:
// true if substituting to at nt would touch a START or STOP codon in
// any ORF nt participates in.
func (s *Sequence) isStartStopCodon(nt *Nucleotide, to byte) bool {
	for _, ci := range nt.Codons {
		c := s.Codons[ci]
		pos := c.positionOf(nt.Index)
		if s.codonIsStop(c) || s.codonIsStart(c) || s.codonCreatesStop(c, pos, to) {
			return true
		}
	}
	return false
}

// signatureKey builds the canonical interning key for a signature: the
// owning ORF index and chosen slot value for each ORF the site
// participates in, in declaration order.
func signatureKey(sig omegaSignature) string {
	var b strings.Builder
	for _, slot := range sig {
		fmt.Fprintf(&b, "%d:%d|", slot.ORFIndex, slot.Value)
	}
	return b.String()
}

// internSignature returns the small integer id for sig, assigning a
// new one (and registering its total_omegas entry, if applicable) the
// first time a given signature is observed.
func (s *Sequence) internSignature(sig omegaSignature) int {
	key := signatureKey(sig)
	if id, ok := s.sigIndex[key]; ok {
		return id
	}
	id := len(s.sigTable)
	s.sigTable = append(s.sigTable, sig)
	s.sigIndex[key] = id
	s.registerTotalOmega(id, sig)
	return id
}

// registerTotalOmega implements spec.md §4.5's total_omegas bookkeeping:
// the product of chosen ω values over every non-synonymous slot in
// sig, stored only when at least one slot is non-synonymous.
func (s *Sequence) registerTotalOmega(id int, sig omegaSignature) {
	product := 1.0
	hasNonsyn := false
	for _, slot := range sig {
		orf := s.ORFs[slot.ORFIndex]
		if int(slot.Value) < orf.NumClasses {
			hasNonsyn = true
			product *= orf.OmegaValues[slot.Value]
		}
	}
	if hasNonsyn {
		s.TotalOmegas[id] = product
	}
}

// assignSubstitutionRates implements spec.md §4.3-§4.5 for one site:
// for every candidate target base, it either marks the target
// inadmissible (START/STOP-touching) or computes its rate, draws a
// μ-category and an ω-signature, interns that signature, and attaches
// the site to the corresponding Event Tree leaf.
func (s *Sequence) assignSubstitutionRates(nt *Nucleotide, rng *rand.Rand) {
	current := nt.Base
	fromIdx := baseIndex(current)

	for _, to := range bases {
		toIdx := baseIndex(to)
		if to == current {
			nt.rate[toIdx] = nil
			nt.catKey[toIdx] = noSignature
			nt.sigID[toIdx] = noSignature
			continue
		}

		if s.isStartStopCodon(nt, to) {
			nt.rate[toIdx] = nil
			nt.catKey[toIdx] = noSignature
			nt.sigID[toIdx] = noSignature
			continue
		}

		rate := s.Params.GlobalRate * s.Params.Pi[fromIdx]
		if isTransversion(current, to) {
			rate *= s.Params.Kappa
		}

		catIdx := 0
		if n := len(s.Params.MuValues); n > 0 {
			catIdx = rng.Intn(n)
			rate *= s.Params.MuValues[catIdx]
		}
		nt.catKey[toIdx] = catIdx

		sig := make(omegaSignature, len(nt.Codons))
		for slot, ci := range nt.Codons {
			c := s.Codons[ci]
			pos := c.positionOf(nt.Index)
			orf := s.ORFs[c.ORFIndex]

			if s.codonIsNonsyn(c, pos, to) {
				var omegaIdx int16
				if len(orf.OmegaValues) > 0 {
					omegaIdx = int16(rng.Intn(len(orf.OmegaValues)))
				}
				sig[slot] = sigSlot{ORFIndex: c.ORFIndex, Value: omegaIdx}
			} else {
				sig[slot] = sigSlot{ORFIndex: c.ORFIndex, Value: int16(orf.NumClasses)}
			}
		}

		rateVal := rate
		nt.rate[toIdx] = &rateVal

		sigID := s.internSignature(sig)
		nt.sigID[toIdx] = sigID
		s.Tree.attach(toIdx, fromIdx, catIdx, sigID, nt.Index)
	}

	nt.recomputeTotalRate()
}
