package hexse

// EventTree is the four-level nested index described in the event
// model: to-base -> from-base -> μ-category -> ω-signature -> sites.
// Every interior node carries the rolled-up Events count a branch
// simulator needs to weight its selection; FromNode and the leaves
// also carry the Prob factor from the conditional-probability
// computation. The tree holds only nucleotide indices ("weak
// references") — never owns Nucleotide values.
type EventTree struct {
	To [4]ToNode
}

// ToNode is one to-base subtree.
type ToNode struct {
	From   [4]*FromNode
	Events int
}

// FromNode is one (to-base, from-base) branch. It is nil in the tree
// when from equals to, since a nucleotide never "substitutes" to its
// own state.
type FromNode struct {
	Prob       float64
	Events     int
	Categories []CategoryNode
}

// CategoryNode is one μ-category under a FromNode.
type CategoryNode struct {
	Prob   float64
	Events int
	Omegas map[int]*OmegaLeaf
}

// OmegaLeaf is the tree's leaf: every site currently eligible for this
// (to, from, μ-category, ω-signature) substitution, plus the
// probability mass and event count used to weight selection.
type OmegaLeaf struct {
	Prob   float64
	Events int
	Sites  []int
}

// sigSlot is one ORF's contribution to a site's ω-signature: which
// ORF, and whether the substitution was non-synonymous in it (Value in
// [0, NumClasses) names the chosen ω class) or synonymous (Value ==
// NumClasses, the sentinel position described in spec.md's ω-signature
// one-hot encoding).
type sigSlot struct {
	ORFIndex int
	Value    int16
}

// omegaSignature is a site's full per-target ω-signature: one slot per
// ORF it participates in, in the order those ORFs were declared.
type omegaSignature []sigSlot

func newEventTree(numCategories int) *EventTree {
	if numCategories < 1 {
		numCategories = 1
	}
	t := &EventTree{}
	for to := 0; to < 4; to++ {
		for from := 0; from < 4; from++ {
			if from == to {
				continue
			}
			fn := &FromNode{Categories: make([]CategoryNode, numCategories)}
			for c := range fn.Categories {
				fn.Categories[c].Omegas = map[int]*OmegaLeaf{}
			}
			t.To[to].From[from] = fn
		}
	}
	return t
}

// attach records that nucleotide ntIndex is currently eligible for the
// substitution described by (toIdx, fromIdx, catIdx, sigID), creating
// the ω-signature leaf on first use.
func (t *EventTree) attach(toIdx, fromIdx, catIdx, sigID, ntIndex int) {
	cat := &t.To[toIdx].From[fromIdx].Categories[catIdx]
	leaf, ok := cat.Omegas[sigID]
	if !ok {
		leaf = &OmegaLeaf{}
		cat.Omegas[sigID] = leaf
	}
	leaf.Sites = append(leaf.Sites, ntIndex)
}

// detach removes ntIndex from the given leaf, used when a substitution
// moves a site to a different ω-signature and the old leaf must be
// repaired. The leaf's own Events count is NOT refreshed here —
// callers re-run countEvents after any batch of attach/detach calls.
func (t *EventTree) detach(toIdx, fromIdx, catIdx, sigID, ntIndex int) {
	cat := &t.To[toIdx].From[fromIdx].Categories[catIdx]
	leaf, ok := cat.Omegas[sigID]
	if !ok {
		return
	}
	for i, idx := range leaf.Sites {
		if idx == ntIndex {
			leaf.Sites = append(leaf.Sites[:i], leaf.Sites[i+1:]...)
			break
		}
	}
	if len(leaf.Sites) == 0 {
		delete(cat.Omegas, sigID)
	}
}

// clone deep-copies the tree, including every leaf's site list, so
// that mutating the clone (e.g. during a branch simulation) never
// touches the parent's tree.
func (t *EventTree) clone() *EventTree {
	c := &EventTree{}
	for toIdx := range t.To {
		c.To[toIdx].Events = t.To[toIdx].Events
		for fromIdx, fn := range t.To[toIdx].From {
			if fn == nil {
				continue
			}
			newFn := &FromNode{
				Prob:       fn.Prob,
				Events:     fn.Events,
				Categories: make([]CategoryNode, len(fn.Categories)),
			}
			for ci, cat := range fn.Categories {
				newCat := CategoryNode{
					Prob:   cat.Prob,
					Events: cat.Events,
					Omegas: make(map[int]*OmegaLeaf, len(cat.Omegas)),
				}
				for sigID, leaf := range cat.Omegas {
					newCat.Omegas[sigID] = &OmegaLeaf{
						Prob:   leaf.Prob,
						Events: leaf.Events,
						Sites:  append([]int(nil), leaf.Sites...),
					}
				}
				newFn.Categories[ci] = newCat
			}
			c.To[toIdx].From[fromIdx] = newFn
		}
	}
	return c
}

// omegaDenominator is "1 + Σ total_omegas.values()" from spec.md §4.6,
// the shared normalizer for every ω-signature leaf's probability.
func (s *Sequence) omegaDenominator() float64 {
	sum := 0.0
	for _, v := range s.TotalOmegas {
		sum += v
	}
	return 1 + sum
}

// signatureIsSynonymous reports whether every ORF slot of the
// interned signature sigID is the synonymous sentinel (or the
// signature has no slots at all, i.e. the site has no ORF coverage).
func (s *Sequence) signatureIsSynonymous(sigID int) bool {
	sig := s.sigTable[sigID]
	for _, slot := range sig {
		if int(slot.Value) < s.ORFs[slot.ORFIndex].NumClasses {
			return false
		}
	}
	return true
}

// computeProbabilities implements spec.md §4.6: transition/transversion
// shares at each FromNode, μ-category shares, and ω-signature leaf
// probabilities normalized by omegaDenominator.
func (s *Sequence) computeProbabilities() {
	denom := s.omegaDenominator()
	muSum := 0.0
	for _, mu := range s.Params.MuValues {
		muSum += mu
	}

	for toIdx := 0; toIdx < 4; toIdx++ {
		for fromIdx := 0; fromIdx < 4; fromIdx++ {
			fn := s.Tree.To[toIdx].From[fromIdx]
			if fn == nil {
				continue
			}
			if isTransversion(bases[fromIdx], bases[toIdx]) {
				fn.Prob = s.Params.Kappa / (1 + 2*s.Params.Kappa)
			} else {
				fn.Prob = 1 / (1 + 2*s.Params.Kappa)
			}

			for ci := range fn.Categories {
				cat := &fn.Categories[ci]
				if muSum > 0 {
					cat.Prob = s.Params.MuValues[ci] / muSum
				} else {
					cat.Prob = 1
				}
				for sigID, leaf := range cat.Omegas {
					if s.signatureIsSynonymous(sigID) {
						leaf.Prob = 1 / denom
					} else {
						leaf.Prob = s.TotalOmegas[sigID] / denom
					}
				}
			}
		}
	}
}

// countEvents implements spec.md §4.6's closing step and §9's
// count_events_per_layer: every leaf's Events is its site count, and
// every interior node's Events is the sum of its children's.
func (s *Sequence) countEvents() {
	for toIdx := range s.Tree.To {
		toEvents := 0
		for fromIdx := range s.Tree.To[toIdx].From {
			fn := s.Tree.To[toIdx].From[fromIdx]
			if fn == nil {
				continue
			}
			fromEvents := 0
			for ci := range fn.Categories {
				cat := &fn.Categories[ci]
				catEvents := 0
				for _, leaf := range cat.Omegas {
					leaf.Events = len(leaf.Sites)
					catEvents += leaf.Events
				}
				cat.Events = catEvents
				fromEvents += catEvents
			}
			fn.Events = fromEvents
			toEvents += fromEvents
		}
		s.Tree.To[toIdx].Events = toEvents
	}
}
