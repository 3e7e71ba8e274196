package hexse

import "fmt"

// Frame names an open reading frame's strand and codon phase, exactly
// as declared by the caller's ORF table.
type Frame string

const (
	Frame0Forward Frame = "+0"
	Frame1Forward Frame = "+1"
	Frame2Forward Frame = "+2"
	Frame0Reverse Frame = "-0"
	Frame1Reverse Frame = "-1"
	Frame2Reverse Frame = "-2"
)

// Reverse reports whether the frame lies on the negative strand.
func (f Frame) Reverse() bool {
	return len(f) > 0 && f[0] == '-'
}

// Interval is a half-open coordinate range [Start, End) in sequence
// coordinates. An ORF's Coords is a list of Intervals so that spliced
// ORFs can be expressed as several disjoint ranges.
type Interval struct {
	Start, End int
}

// Len returns the number of nucleotides the interval spans.
func (iv Interval) Len() int {
	if iv.End < iv.Start {
		return iv.Start - iv.End
	}
	return iv.End - iv.Start
}

// ORF describes one open reading frame: its strand/frame tag, its
// (possibly spliced) coordinate intervals, the shape parameter and
// discretized values of its per-site dN/dS (ω) distribution, and a
// one-hot bitmask ("ORF map") identifying it among every ORF declared
// on the sequence. OmegaValues is sorted ascending, matching the
// ordering the discretized sampler returns.
type ORF struct {
	Frame       Frame
	Coords      []Interval
	Shape       float64
	NumClasses  int
	OmegaValues []float64
	Map         []byte
}

// SplicedLength returns the total number of nucleotides across all of
// the ORF's coordinate intervals.
func (o ORF) SplicedLength() int {
	total := 0
	for _, iv := range o.Coords {
		total += iv.Len()
	}
	return total
}

// ValidateORF checks an ORF descriptor against the ingest rules: it
// must declare at least one interval, no interval may have Start ==
// End, every interval must fall within [0, seqLen] once normalized,
// and the total spliced length must be a multiple of three. It does
// not itself enforce that Start<End matches a forward Frame and
// Start>End a reverse one — buildCodons treats every interval the
// same way regardless of which end is larger, so a caller's ORF
// loader is free to always normalize coordinates before building the
// table; ClassifyFrame is the one place that convention is assumed.
func ValidateORF(orf ORF, seqLen int) error {
	if len(orf.Coords) == 0 {
		return InvalidORFError{orf, "no coordinate intervals declared"}
	}
	for _, iv := range orf.Coords {
		if iv.Start == iv.End {
			return InvalidORFError{orf, "interval start equals end"}
		}
		lo, hi := iv.Start, iv.End
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < 0 || hi > seqLen {
			return InvalidORFError{orf, fmt.Sprintf("interval [%d,%d) out of bounds for sequence of length %d", iv.Start, iv.End, seqLen)}
		}
	}
	if orf.SplicedLength()%3 != 0 {
		return InvalidORFError{orf, "spliced length is not a multiple of three"}
	}
	return nil
}

// ClassifyFrame maps a single-interval ORF's raw (start, end)
// coordinates to one of the six frame tags, mirroring how an external
// ORF loader determines strand and phase before constructing an ORF:
// start<end is a forward-strand ORF in frame (start mod 3); start>end
// is a reverse-strand ORF in frame (end mod 3).
func ClassifyFrame(start, end int) Frame {
	forward := [...]Frame{Frame0Forward, Frame1Forward, Frame2Forward}
	reverse := [...]Frame{Frame0Reverse, Frame1Reverse, Frame2Reverse}

	if start < end {
		return forward[start%3]
	}
	return reverse[end%3]
}
