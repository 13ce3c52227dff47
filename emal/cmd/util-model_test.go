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

import (
	"errors"
	"math"
	"testing"
)

func primaryRecord(read string, raw []int) *AlignmentRecord {
	return &AlignmentRecord{Read: read, Ref: "refA", RawStats: raw}
}

func TestModelTrainerProbs(t *testing.T) {
	trainer := NewModelTrainer()
	if err := trainer.Add(primaryRecord("r1", []int{90, 2, 1, 0, 5, 0, 0, 0, 0, 0, 5})); err != nil {
		t.Fatal(err)
	}
	if err := trainer.Add(primaryRecord("r2", []int{50, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2})); err != nil {
		t.Fatal(err)
	}

	// secondary and supplementary placements must not contribute
	if err := trainer.Add(&AlignmentRecord{Read: "r3", Ref: "refA", Secondary: true,
		RawStats: []int{1000, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := trainer.Add(&AlignmentRecord{Read: "r4", Ref: "refA", Supplementary: true,
		RawStats: []int{1000, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if trainer.N() != 2 {
		t.Fatalf("expected 2 primary alignments, got %d", trainer.N())
	}

	probs, err := trainer.Probs()
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for op, prob := range probs {
		if prob <= 0 {
			t.Errorf("category %c stored with non-positive probability %f", op, prob)
		}
		sum += prob
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %.12f, expected 1", sum)
	}

	// zero-mass categories must be absent, not stored as 0
	for _, op := range []Operation{OpHardClip, OpPadding, OpRefSkip, OpBack} {
		if _, ok := probs[op]; ok {
			t.Errorf("category %c with zero observed mass should be absent", op)
		}
	}
}

func TestModelTrainerEmpty(t *testing.T) {
	var target *EmptyModelError

	trainer := NewModelTrainer()
	_, err := trainer.Probs()
	if !errors.As(err, &target) {
		t.Errorf("expected EmptyModelError, got %v", err)
	}

	// only secondary alignments is as empty as no alignments
	trainer.Add(&AlignmentRecord{Read: "r1", Ref: "refA", Secondary: true,
		RawStats: []int{10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}})
	_, err = trainer.Probs()
	if !errors.As(err, &target) {
		t.Errorf("expected EmptyModelError, got %v", err)
	}
}

func TestOperationProbsScore(t *testing.T) {
	trainer := NewModelTrainer()
	raw := []int{90, 2, 1, 0, 5, 0, 0, 0, 0, 0, 5}
	if err := trainer.Add(primaryRecord("r1", raw)); err != nil {
		t.Fatal(err)
	}
	probs, err := trainer.Probs()
	if err != nil {
		t.Fatal(err)
	}

	stats, err := convertCigarStats("r1", raw)
	if err != nil {
		t.Fatal(err)
	}
	score, ok := probs.Score(stats)
	if !ok {
		t.Fatal("training alignment should be scorable under its own model")
	}

	// M'=88, X=2, I=2, D=1, C=5 of 103 total operations (S and H
	// counted once more via C, as in the model definition)
	total := 103.0
	expected := 88*math.Log(88/total) + 2*math.Log(2/total) + 2*math.Log(2/total) +
		1*math.Log(1/total) + 5*math.Log(5/total)
	if math.Abs(score-expected) > 1e-9 {
		t.Errorf("score: expected %f, got %f", expected, score)
	}
}

func TestOperationProbsScoreUnscorable(t *testing.T) {
	trainer := NewModelTrainer()
	// no insertions in the training data
	if err := trainer.Add(primaryRecord("r1", []int{90, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3})); err != nil {
		t.Fatal(err)
	}
	probs, err := trainer.Probs()
	if err != nil {
		t.Fatal(err)
	}

	stats, err := convertCigarStats("r2", []int{50, 2, 0, 0, 0, 0, 0, 0, 0, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := probs.Score(stats); ok {
		t.Error("alignment with an operation unseen in training data should be unscorable")
	}

	// a zero count in an absent category is fine
	stats, err = convertCigarStats("r3", []int{50, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := probs.Score(stats); !ok {
		t.Error("alignment without unseen operations should be scorable")
	}
}

func TestMatrixBuilderKeepsBestScore(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB"})

	b.Add("r1", "refA", -3.2)
	b.Add("r1", "refA", -2.9)

	m := b.Matrix()
	if len(m.Reads) != 1 || len(m.Entries[0]) != 1 {
		t.Fatalf("expected a single retained entry, got %v", m.Entries)
	}
	if m.Entries[0][0].LogL != -2.9 {
		t.Errorf("expected the greater score -2.9 retained, got %f", m.Entries[0][0].LogL)
	}

	// a later equal or smaller score must not replace the winner
	b.Add("r1", "refA", -2.9)
	b.Add("r1", "refA", -3.0)
	if m = b.Matrix(); m.Entries[0][0].LogL != -2.9 {
		t.Errorf("expected -2.9 kept, got %f", m.Entries[0][0].LogL)
	}
}

func TestMatrixBuilderGrouping(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB", "refC"})

	b.Add("r2", "refB", -1)
	b.Add("r1", "refA", -1)
	b.Add("r2", "refC", -2)
	b.Add("r1", "refA", -0.5)

	// a reference outside the universe is ignored
	b.Add("r1", "refX", -0.1)
	if b.UnknownRefs() != 1 {
		t.Errorf("expected 1 unknown reference, got %d", b.UnknownRefs())
	}

	m := b.Matrix()
	if len(m.Reads) != 2 || m.Reads[0] != "r2" || m.Reads[1] != "r1" {
		t.Fatalf("reads should keep first-encounter order, got %v", m.Reads)
	}
	if len(m.Entries[0]) != 2 {
		t.Errorf("expected 2 entries for r2, got %d", len(m.Entries[0]))
	}
	if len(m.Entries[1]) != 1 || m.Entries[1][0].LogL != -0.5 {
		t.Errorf("expected a single entry of -0.5 for r1, got %v", m.Entries[1])
	}
}
