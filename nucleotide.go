package hexse

// bases enumerates the four DNA nucleotide states in the fixed order
// used to index every [4]-sized array in this package.
var bases = [4]byte{'A', 'C', 'G', 'T'}

// baseIndex returns bases' position for b, or -1 if b is not A/C/G/T.
func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return -1
	}
}

// isTransversion reports whether a substitution from one base to
// another is a transversion (purine<->pyrimidine) as opposed to a
// transition (purine<->purine or pyrimidine<->pyrimidine).
func isTransversion(from, to byte) bool {
	transitionPartner := map[byte]byte{'A': 'G', 'G': 'A', 'T': 'C', 'C': 'T'}
	return transitionPartner[from] != to
}

// noSignature marks a (site, to-base) pair that the event tree does
// not track: either to equals the site's current base, or the
// substitution would create/destroy a START or STOP codon.
const noSignature = -1

// Nucleotide is one site in a Sequence. Its Codons field holds indices
// into the owning Sequence's Codons slice rather than pointers, per the
// no-back-pointers design: codons and sequences never hold a
// Nucleotide by value elsewhere, so lookups always go through the
// Sequence that owns this Nucleotide.
type Nucleotide struct {
	Base  byte
	Index int

	Codons []int

	// rate, catKey and sigID are indexed by baseIndex(to). A nil rate
	// entry means that target is inadmissible (to == Base, or a
	// START/STOP would be created/destroyed). sigID holds the event
	// tree's interned ω-signature id for that target, or noSignature.
	rate   [4]*float64
	catKey [4]int
	sigID  [4]int

	totalRate float64
}

// TotalRate returns the nucleotide's cached total instantaneous
// substitution rate, the sum of rate[to] over admissible targets.
func (nt *Nucleotide) TotalRate() float64 {
	return nt.totalRate
}

// Rate returns the substitution rate toward base to, and false if that
// target is inadmissible for this site in its current state.
func (nt *Nucleotide) Rate(to byte) (float64, bool) {
	i := baseIndex(to)
	if i < 0 || nt.rate[i] == nil {
		return 0, false
	}
	return *nt.rate[i], true
}

func (nt *Nucleotide) recomputeTotalRate() {
	total := 0.0
	for _, r := range nt.rate {
		if r != nil {
			total += *r
		}
	}
	nt.totalRate = total
}
