// Copyright © 2022-2023 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import "math"

// OperationProbs maps operation categories to their probabilities,
// learned from the cigar tallies of primary alignments.
// Categories never observed in the corpus are absent from the map
// rather than stored with probability 0, so that scoring can detect
// alignments containing operations the model knows nothing about.
type OperationProbs map[Operation]float64

// EmptyModelError reports that no primary alignment was available
// to train the operation probability model.
type EmptyModelError struct{}

func (e *EmptyModelError) Error() string {
	return "no primary alignments to train the operation probability model"
}

// scoredOperations are the categories contributing to the log
// likelihood of an alignment.
var scoredOperations = [5]Operation{OpMatch, OpSubstitution, OpInsertion, OpDeletion, OpClip}

// Score computes log(L(r|s)) = sum of count x log(P(operation)) over
// the scored categories. ok is false when the alignment has a nonzero
// count in a category the model never observed, such alignments are
// unscorable and must be dropped.
func (p OperationProbs) Score(stats AlignStats) (score float64, ok bool) {
	for _, op := range scoredOperations {
		prob, inModel := p[op]
		if !inModel {
			if stats.count(op) > 0 {
				return 0, false
			}
			continue
		}
		score += float64(stats.count(op)) * math.Log(prob)
	}
	return score, true
}

// ModelTrainer accumulates cigar tallies of primary alignments.
// Addition is order-independent, files may be fed in any order.
type ModelTrainer struct {
	counts AlignStats
	n      int64
}

func NewModelTrainer() *ModelTrainer {
	return &ModelTrainer{}
}

// Add accumulates one record. Secondary and supplementary placements
// are skipped, they represent alternative or chimeric placements and
// would bias the operation statistics.
func (t *ModelTrainer) Add(rec *AlignmentRecord) error {
	if !rec.Primary() {
		return nil
	}
	stats, err := convertCigarStats(rec.Read, rec.RawStats)
	if err != nil {
		return err
	}

	t.counts.Match += stats.Match
	t.counts.Insertion += stats.Insertion
	t.counts.Deletion += stats.Deletion
	t.counts.RefSkip += stats.RefSkip
	t.counts.SoftClip += stats.SoftClip
	t.counts.HardClip += stats.HardClip
	t.counts.Padding += stats.Padding
	t.counts.ExactMatch += stats.ExactMatch
	t.counts.Substitution += stats.Substitution
	t.counts.Back += stats.Back
	t.counts.Clip += stats.Clip
	t.n++
	return nil
}

// N is the number of primary alignments seen.
func (t *ModelTrainer) N() int64 {
	return t.n
}

// Count returns the accumulated count of one category.
func (t *ModelTrainer) Count(op Operation) int {
	return t.counts.count(op)
}

// Probs normalizes the accumulated counts into a probability
// distribution over the observed categories.
func (t *ModelTrainer) Probs() (OperationProbs, error) {
	if t.n == 0 {
		return nil, &EmptyModelError{}
	}

	var total int
	for _, op := range allOperations {
		total += t.counts.count(op)
	}
	if total == 0 { // all primary alignments had empty cigars
		return nil, &EmptyModelError{}
	}

	probs := make(OperationProbs, len(allOperations))
	for _, op := range allOperations {
		if count := t.counts.count(op); count > 0 {
			probs[op] = float64(count) / float64(total)
		}
	}
	return probs, nil
}

// MatrixEntry is one retained (read, reference) log likelihood.
type MatrixEntry struct {
	Ref  int // index into Matrix.Refs
	LogL float64
}

// Matrix is the sparse read x reference log-likelihood matrix.
// Entries are grouped per read, reads and their entries keep the
// order of first encounter.
type Matrix struct {
	Refs    []string // the full candidate reference universe
	Reads   []string
	Entries [][]MatrixEntry // Entries[i] belongs to Reads[i]
}

// MatrixBuilder collects the best log likelihood per (read, reference)
// pair. For a pair scored multiple times (e.g. supplementary
// alignments to the same reference) the strictly greater score wins,
// an exact tie keeps the first score encountered.
type MatrixBuilder struct {
	refs     []string
	refIndex map[string]int

	reads     []string
	readIndex map[string]int
	entries   [][]MatrixEntry
	positions []map[int]int // per read: ref index -> position in entries

	nUnknownRef int64
}

// NewMatrixBuilder creates a builder over the given reference
// universe, which may contain references no alignment mentions.
func NewMatrixBuilder(refs []string) *MatrixBuilder {
	b := &MatrixBuilder{
		refs:      refs,
		refIndex:  make(map[string]int, len(refs)),
		readIndex: make(map[string]int, mapInitSize),
	}
	for i, ref := range refs {
		b.refIndex[ref] = i
	}
	return b
}

// Add records the log likelihood of one (read, reference) pair.
// Pairs with a reference outside the universe are counted and
// ignored, they can never receive abundance.
func (b *MatrixBuilder) Add(read string, ref string, logL float64) {
	si, ok := b.refIndex[ref]
	if !ok {
		b.nUnknownRef++
		return
	}

	ri, ok := b.readIndex[read]
	if !ok {
		ri = len(b.reads)
		b.readIndex[read] = ri
		b.reads = append(b.reads, read)
		b.entries = append(b.entries, nil)
		b.positions = append(b.positions, make(map[int]int, 4))
	}

	if pos, seen := b.positions[ri][si]; seen {
		if logL > b.entries[ri][pos].LogL {
			b.entries[ri][pos].LogL = logL
		}
		return
	}
	b.positions[ri][si] = len(b.entries[ri])
	b.entries[ri] = append(b.entries[ri], MatrixEntry{Ref: si, LogL: logL})
}

// UnknownRefs is the number of ignored pairs whose reference was
// outside the universe.
func (b *MatrixBuilder) UnknownRefs() int64 {
	return b.nUnknownRef
}

// Matrix freezes the collected entries.
func (b *MatrixBuilder) Matrix() *Matrix {
	return &Matrix{
		Refs:    b.refs,
		Reads:   b.reads,
		Entries: b.entries,
	}
}
