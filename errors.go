package hexse

import "fmt"

// InvalidSequenceError reports that the input nucleotide string is not a
// valid seed for a substitution simulation: non-ACGT content, or a
// length below the minimum needed to hold a start and stop codon.
type InvalidSequenceError struct {
	Reason string
}

func (e InvalidSequenceError) Error() string {
	return fmt.Sprintf("hexse: invalid sequence: %s", e.Reason)
}

// InvalidORFError reports a malformed ORF descriptor: no intervals, an
// empty interval, coordinates outside the sequence, or a spliced length
// not divisible by three. Interval orientation is not compared with the
// frame tag, so no InvalidORFError reports it. Invalid ORFs are
// non-fatal — the caller drops them from the ORF table and continues.
type InvalidORFError struct {
	ORF    ORF
	Reason string
}

func (e InvalidORFError) Error() string {
	return fmt.Sprintf("hexse: invalid ORF %s %v: %s", e.ORF.Frame, e.ORF.Coords, e.Reason)
}

// UnrootedTreeError is returned by the phylogeny walker when given a
// tree with no identifiable root.
type UnrootedTreeError struct{}

func (e UnrootedTreeError) Error() string {
	return "hexse: phylogeny has no root"
}

// NumericUnderflowError signals that every site in a sequence has zero
// total substitution rate (every admissible target is degenerate), so a
// branch simulation step is a no-op. Callers should treat this as
// informational via errors.Is, not as a fatal failure.
type NumericUnderflowError struct{}

func (e NumericUnderflowError) Error() string {
	return "hexse: all substitution rates underflowed to zero"
}
