/*
Package phylo walks a rooted phylogeny, evolving a hexse.Sequence
along each branch and collecting the sequences at the tree's leaves
into an alignment. Independent subtrees are simulated concurrently,
following the teacher's bio.ManyToChannel errgroup fan-out pattern
generalized from "one goroutine per file parser" to "one goroutine per
independent subtree".
*/
package phylo

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
	rnd "math/rand"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/PoonLab/hexse"
	"github.com/PoonLab/hexse/gillespie"
)

// Node is one vertex of a caller-supplied rooted phylogeny: a name
// (meaningful only at the leaves, where it becomes the alignment key),
// the length of the branch leading to it from its parent (ignored at
// the root), and its children. Newick parsing is out of scope; callers
// build this tree themselves.
type Node struct {
	Name         string
	BranchLength float64
	Children     []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// AlignmentRecord pairs a leaf name with its evolved sequence,
// preserving the preorder leaf visitation order that a map cannot.
type AlignmentRecord struct {
	Name     string
	Sequence string
}

// Alignment is the terminal output of a simulation: every leaf's
// evolved sequence, both as a lookup map and as an order-preserving
// slice.
type Alignment struct {
	Sequences map[string]string
	Records   []AlignmentRecord
}

// Simulate walks root preorder starting from rootSeq (already built by
// hexse.NewSequence), evolving a deep copy of it along each branch via
// gillespie.RunBranch, and returns the sequences found at every leaf.
// seed derives each node's RNG stream deterministically: a node's
// stream is seeded from seed hashed together with its root-to-node
// path, so two runs with the same seed and tree always produce the
// same alignment regardless of how the independent subtrees below the
// root happen to be scheduled. Disjoint subtrees rooted at root's
// children are simulated concurrently; ctx cancellation aborts every
// in-flight branch and is returned to the caller.
func Simulate(ctx context.Context, root *Node, rootSeq *hexse.Sequence, seed int64) (*Alignment, error) {
	if root == nil {
		return nil, hexse.UnrootedTreeError{}
	}

	align := &Alignment{Sequences: map[string]string{}}
	var collector recordCollector

	err := simulateSubtree(ctx, root, rootSeq, seed, nil, &collector)
	if err != nil {
		return nil, err
	}

	collector.sortByPath()
	for _, r := range collector.records {
		align.Sequences[r.rec.Name] = r.rec.Sequence
		align.Records = append(align.Records, r.rec)
	}
	return align, nil
}

// recordCollector gathers leaf records alongside the preorder path
// that produced them, so they can be restored to visitation order
// after concurrent subtrees report back in any order. Every leaf's
// goroutine appends independently, so access is guarded by a mutex.
type recordCollector struct {
	mu      sync.Mutex
	records []pathRecord
}

type pathRecord struct {
	path []int
	rec  AlignmentRecord
}

func (c *recordCollector) sortByPath() {
	sort.Slice(c.records, func(i, j int) bool {
		return lessPath(c.records[i].path, c.records[j].path)
	})
}

func lessPath(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// simulateSubtree evolves node's sequence (nodeSeq, already cloned for
// this node by the caller except at the root) along node's own branch
// when node is not the root, recurses into children concurrently via
// errgroup, and appends a record when node is a leaf.
func simulateSubtree(ctx context.Context, node *Node, nodeSeq *hexse.Sequence, seed int64, path []int, collector *recordCollector) error {
	rng := nodeRNG(seed, path)

	if len(path) > 0 && node.BranchLength > 0 {
		if err := gillespie.RunBranch(ctx, nodeSeq, node.BranchLength, rng); err != nil {
			if _, underflow := err.(hexse.NumericUnderflowError); !underflow {
				return err
			}
		}
	}

	if node.IsLeaf() {
		collector.append(pathRecord{path: append([]int(nil), path...), rec: AlignmentRecord{Name: node.Name, Sequence: nodeSeq.String()}})
		return nil
	}

	group, gctx := errgroup.WithContext(ctx)
	for i, child := range node.Children {
		i, child := i, child
		childSeq := nodeSeq.CloneForChild()
		childPath := append(append([]int(nil), path...), i)
		group.Go(func() error {
			return simulateSubtree(gctx, child, childSeq, seed, childPath, collector)
		})
	}
	return group.Wait()
}

func (c *recordCollector) append(r pathRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
}

// nodeRNG derives a per-node *rand.Rand deterministically from seed and
// the node's root-to-node path, using blake2b to mix them into a
// single 64-bit stream seed (spec.md §5: "a per-worker stream seeded
// deterministically from a root seed and the node's path").
func nodeRNG(seed int64, path []int) *rnd.Rand {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err) // blake2b.New512 only errors on an over-long key, which we never pass
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	h.Write(buf[:])
	for _, p := range path {
		binary.LittleEndian.PutUint64(buf[:], uint64(p))
		h.Write(buf[:])
	}
	sum := h.Sum(nil)
	streamSeed := int64(binary.LittleEndian.Uint64(sum[:8]))
	return rnd.New(rnd.NewSource(streamSeed))
}

// NewSeed draws a fresh, unpredictable root seed from the operating
// system's CSPRNG, for callers that don't need a reproducible run.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return int64(math.Float64bits(0)) // practically unreachable: crypto/rand.Read failing
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
