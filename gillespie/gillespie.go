/*
Package gillespie runs the event-driven branch simulator over a
hexse.Sequence: repeatedly draw an exponential waiting time from the
sequence's aggregate substitution rate, descend the Event Tree to pick
a specific substitution weighted by probability and event count, apply
it, and repeat until the branch length is exhausted or the context is
canceled.
*/
package gillespie

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/mroth/weightedrand"

	"github.com/PoonLab/hexse"
)

// weightScale converts a float64 probability*events weight into the
// uint weight github.com/mroth/weightedrand requires, preserving
// relative magnitude without ever rounding a strictly positive weight
// down to zero.
const weightScale = 1e9

func toWeight(w float64) uint {
	if w <= 0 {
		return 0
	}
	scaled := uint(w * weightScale)
	if scaled == 0 {
		return 1
	}
	return scaled
}

var bases = [4]byte{'A', 'C', 'G', 'T'}

// pick builds a Chooser over choices and draws from rng via
// PickSource, rather than weightedrand.Chooser.Pick (which only reads
// the global math/rand source) — spec.md §5 forbids sharing a single
// RNG across concurrent branch workers, so every draw must go through
// the caller-owned *rand.Rand. Returns false if choices is empty or
// the Chooser can't be built (e.g. every weight rounded to zero).
func pick(choices []weightedrand.Choice, rng *rand.Rand) (int, bool) {
	if len(choices) == 0 {
		return 0, false
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return 0, false
	}
	return chooser.PickSource(rng).(int), true
}

// aggregateRate implements spec.md §4.7 step 1: R = Σ_site rate_total.
func aggregateRate(seq *hexse.Sequence) float64 {
	total := 0.0
	for i := range seq.Nucleotides {
		total += seq.Nucleotides[i].TotalRate()
	}
	return total
}

// selectSubstitution descends the Event Tree, picking at each level
// with weight proportional to prob*events rolled up from that
// subtree's children, and finally a uniformly random site from the
// chosen leaf. It returns the chosen target base, nucleotide index,
// and true, or false if the tree has no eligible events at all (every
// site's every target is inadmissible).
func selectSubstitution(tree *hexse.EventTree, rng *rand.Rand) (to byte, ntIndex int, ok bool) {
	var toChoices []weightedrand.Choice
	for toIdx := range tree.To {
		w := 0.0
		for _, fn := range tree.To[toIdx].From {
			if fn == nil {
				continue
			}
			w += fn.Prob * float64(fn.Events)
		}
		if w > 0 {
			toChoices = append(toChoices, weightedrand.Choice{Item: toIdx, Weight: toWeight(w)})
		}
	}
	toIdx, ok := pick(toChoices, rng)
	if !ok {
		return 0, 0, false
	}

	var fromChoices []weightedrand.Choice
	for fromIdx, fn := range tree.To[toIdx].From {
		if fn == nil || fn.Events == 0 {
			continue
		}
		w := fn.Prob * float64(fn.Events)
		if w > 0 {
			fromChoices = append(fromChoices, weightedrand.Choice{Item: fromIdx, Weight: toWeight(w)})
		}
	}
	fromIdx, ok := pick(fromChoices, rng)
	if !ok {
		return 0, 0, false
	}
	fn := tree.To[toIdx].From[fromIdx]

	var catChoices []weightedrand.Choice
	for ci := range fn.Categories {
		cat := &fn.Categories[ci]
		if cat.Events == 0 {
			continue
		}
		w := cat.Prob * float64(cat.Events)
		if w > 0 {
			catChoices = append(catChoices, weightedrand.Choice{Item: ci, Weight: toWeight(w)})
		}
	}
	catIdx, ok := pick(catChoices, rng)
	if !ok {
		return 0, 0, false
	}
	cat := &fn.Categories[catIdx]

	// cat.Omegas is a map; ranging over it directly would make the
	// Chooser's bucket order (and so, for a fixed rng draw, its pick)
	// depend on Go's randomized map iteration rather than on seq/rng
	// alone. Sort signature IDs first so the same rng stream always
	// produces the same substitution.
	sigIDs := make([]int, 0, len(cat.Omegas))
	for sigID := range cat.Omegas {
		sigIDs = append(sigIDs, sigID)
	}
	sort.Ints(sigIDs)

	var sigChoices []weightedrand.Choice
	for _, sigID := range sigIDs {
		leaf := cat.Omegas[sigID]
		if leaf.Events == 0 {
			continue
		}
		w := leaf.Prob * float64(leaf.Events)
		if w > 0 {
			sigChoices = append(sigChoices, weightedrand.Choice{Item: sigID, Weight: toWeight(w)})
		}
	}
	sigID, ok := pick(sigChoices, rng)
	if !ok {
		return 0, 0, false
	}
	leaf := cat.Omegas[sigID]

	site := leaf.Sites[rng.Intn(len(leaf.Sites))]
	return bases[toIdx], site, true
}

// RunBranch evolves seq in place along a branch of the given length,
// implementing spec.md §4.7: it loops drawing an exponential waiting
// time from the current aggregate rate, stopping once the elapsed
// simulated time would exceed length, applying one substitution per
// iteration otherwise. It checks ctx between steps, returning
// ctx.Err() immediately if canceled. If the sequence's aggregate rate
// is already zero (every site degenerate) it returns
// hexse.NumericUnderflowError without consuming any of length.
func RunBranch(ctx context.Context, seq *hexse.Sequence, length float64, rng *rand.Rand) error {
	rate := aggregateRate(seq)
	if rate <= 0 {
		return hexse.NumericUnderflowError{}
	}

	elapsed := 0.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rate = aggregateRate(seq)
		if rate <= 0 {
			return nil
		}

		wait := -math.Log(rng.Float64()) / rate
		if elapsed+wait > length {
			return nil
		}
		elapsed += wait

		to, ntIndex, ok := selectSubstitution(seq.Tree, rng)
		if !ok {
			return nil
		}
		seq.ApplySubstitution(ntIndex, to, rng)
	}
}
