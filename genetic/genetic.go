/*
Package genetic provides the fixed nucleotide-triplet-to-amino-acid
translation tables used to classify substitutions as synonymous,
nonsynonymous, or start/stop-disrupting.

The table data is the NCBI genetic code table set
(https://www.ncbi.nlm.nih.gov/Taxonomy/Utils/wprintgc.cgi), generated the
same way poly's synthesis/codon package builds its TranslationTable: three
64-character strings, one amino acid letter or start/stop marker per codon,
walked in a fixed base ordering.
*/
package genetic

import (
	"fmt"
)

// CodeTable maps codons to amino acids for one genetic code (e.g. the
// standard code, or a mitochondrial variant) and records which codons
// that code treats as translation start or stop signals.
type CodeTable struct {
	Number      int
	translation map[string]byte
	starts      map[string]bool
	stops       map[string]bool
}

// errUnknownCodon is returned by Translate when given a triplet that is
// not one of the 64 codons (e.g. it contains an ambiguity code).
type errUnknownCodon struct {
	Codon string
}

func (e errUnknownCodon) Error() string {
	return fmt.Sprintf("genetic: %q is not a recognized codon", e.Codon)
}

// Translate returns the single-letter amino acid encoded by codon, or
// '*' for a stop codon. codon must be exactly 3 uppercase DNA bases.
func (t *CodeTable) Translate(codon string) (byte, error) {
	aa, ok := t.translation[codon]
	if !ok {
		return 0, errUnknownCodon{codon}
	}
	return aa, nil
}

// IsStart reports whether codon is annotated as a start codon in this
// genetic code.
func (t *CodeTable) IsStart(codon string) bool {
	return t.starts[codon]
}

// IsStop reports whether codon is a stop (translation-terminating) codon
// in this genetic code.
func (t *CodeTable) IsStop(codon string) bool {
	return t.stops[codon]
}

// IsSynonymous reports whether two codons translate to the same amino
// acid. Two stop codons are considered synonymous to each other.
func (t *CodeTable) IsSynonymous(from, to string) bool {
	a, aok := t.translation[from]
	b, bok := t.translation[to]
	return aok && bok && a == b
}

// StandardTable returns the CodeTable for the given NCBI genetic code
// table number (1 is the standard code used by nuclear genomes). It
// panics if number does not name one of the built-in tables, since these
// are compiled-in constants rather than user input.
func StandardTable(number int) *CodeTable {
	spec, ok := tablesByNumber[number]
	if !ok {
		panic(fmt.Sprintf("genetic: no built-in codon table numbered %d", number))
	}
	return buildTable(number, spec[0], spec[1])
}

// buildTable walks the three fixed 64-character base rows in lockstep
// with the amino-acid and start/stop marker rows, assigning the i-th
// codon in NCBI's canonical ordering to the i-th letter of each.
func buildTable(number int, aminoAcids, starts string) *CodeTable {
	const base1 = "TTTTTTTTTTTTTTTTCCCCCCCCCCCCCCCCAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGG"
	const base2 = "TTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGGTTTTCCCCAAAAGGGG"
	const base3 = "TCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAGTCAG"

	table := &CodeTable{
		Number:      number,
		translation: make(map[string]byte, 64),
		starts:      make(map[string]bool),
		stops:       make(map[string]bool),
	}

	for i, aa := range []byte(aminoAcids) {
		triplet := string([]byte{base1[i], base2[i], base3[i]})
		table.translation[triplet] = aa
		switch starts[i] {
		case 'M':
			table.starts[triplet] = true
		case '*':
			table.stops[triplet] = true
		}
		if aa == '*' {
			table.stops[triplet] = true
		}
	}
	return table
}

// tablesByNumber stores the [amino-acid-row, start-row] pair for each
// NCBI-numbered genetic code table, walked codon-by-codon against the
// fixed base1/base2/base3 rows in buildTable.
var tablesByNumber = map[int][2]string{
	1:  {"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "---M------**--*----M---------------M----------------------------"},
	2:  {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSS**VVVVAAAADDEEGGGG", "----------**--------------------MMMM----------**---M------------"},
	3:  {"FFLLSSSSYY**CCWWTTTTPPPPHHQQRRRRIIMMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "----------**----------------------MM---------------M------------"},
	4:  {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "--MM------**-------M------------MMMM---------------M------------"},
	5:  {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSSSSVVVVAAAADDEEGGGG", "---M------**--------------------MMMM---------------M------------"},
	6:  {"FFLLSSSSYYQQCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "--------------*--------------------M----------------------------"},
	9:  {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNNKSSSSVVVVAAAADDEEGGGG", "----------**-----------------------M---------------M------------"},
	10: {"FFLLSSSSYY**CCCWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "----------**-----------------------M----------------------------"},
	11: {"FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "---M------**--*----M------------MMMM---------------M------------"},
	12: {"FFLLSSSSYY**CC*WLLLSPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "----------**--*----M---------------M----------------------------"},
	13: {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNKKSSGGVVVVAAAADDEEGGGG", "---M------**----------------------MM---------------M------------"},
	14: {"FFLLSSSSYYY*CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNNKSSSSVVVVAAAADDEEGGGG", "-----------*-----------------------M----------------------------"},
	16: {"FFLLSSSSYY*LCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "----------*---*--------------------M----------------------------"},
	21: {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIMMTTTTNNNKSSSSVVVVAAAADDEEGGGG", "----------**-----------------------M---------------M------------"},
	22: {"FFLLSS*SYY*LCC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "------*---*---*--------------------M----------------------------"},
	23: {"FF*LSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "--*-------**--*-----------------M--M---------------M------------"},
	24: {"FFLLSSSSYY**CCWWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSSKVVVVAAAADDEEGGGG", "---M------**-------M---------------M---------------M------------"},
	25: {"FFLLSSSSYY**CCGWLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "---M------**-----------------------M---------------M------------"},
	26: {"FFLLSSSSYY**CC*WLLLAPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG", "----------**--*----M---------------M----------------------------"},
}
