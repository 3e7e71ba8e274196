package hexse

// Codon is a reading-frame triplet: a frame tag, the index of its
// owning ORF in the Sequence's ORFs slice, and the indices of its
// three nucleotides in the Sequence's Nucleotides slice. On a
// negative-strand ORF, NTIndices runs 3'->5' in original-sequence
// coordinates, so that reading the complement of each referenced base
// in stored order yields the codon as translated on that strand. A
// Codon is immutable once built — only the Nucleotides it references
// change state.
type Codon struct {
	Frame     Frame
	ORFIndex  int
	NTIndices [3]int
}

// positionOf returns the position (0, 1 or 2) of ntIndex within the
// codon, or -1 if the codon does not contain it.
func (c Codon) positionOf(ntIndex int) int {
	for i, idx := range c.NTIndices {
		if idx == ntIndex {
			return i
		}
	}
	return -1
}

// buildCodons splices seqLen-bounded coordinates for one ORF into its
// codons: the ORF's intervals are concatenated in declaration order,
// reversed as a whole when the frame is on the negative strand, then
// partitioned into contiguous triples. Nucleotide references always
// point into the original (unreversed, unspliced) sequence. Returns
// InvalidORFError if the spliced length isn't a multiple of three or
// any interval extends outside [0, seqLen].
func buildCodons(orfIndex int, orf ORF, seqLen int) ([]Codon, error) {
	var positions []int
	for _, iv := range orf.Coords {
		lo, hi := iv.Start, iv.End
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < 0 || hi > seqLen {
			return nil, InvalidORFError{orf, "coordinates out of bounds"}
		}
		for i := lo; i < hi; i++ {
			positions = append(positions, i)
		}
	}

	if len(positions)%3 != 0 {
		return nil, InvalidORFError{orf, "spliced length is not a multiple of three"}
	}

	if orf.Frame.Reverse() {
		reversed := make([]int, len(positions))
		for i, p := range positions {
			reversed[len(positions)-1-i] = p
		}
		positions = reversed
	}

	codons := make([]Codon, 0, len(positions)/3)
	for i := 0; i+3 <= len(positions); i += 3 {
		var triple [3]int
		copy(triple[:], positions[i:i+3])
		codons = append(codons, Codon{Frame: orf.Frame, ORFIndex: orfIndex, NTIndices: triple})
	}
	return codons, nil
}
