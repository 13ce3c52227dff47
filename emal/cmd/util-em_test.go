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

func testEMConfig() *EMConfig {
	config := DefaultEMConfig()
	config.Threads = 2
	return &config
}

func TestRunEMSingleReference(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB"})
	b.Add("r1", "refA", -1)
	b.Add("r2", "refA", -2)
	b.Add("r3", "refA", -1.5)

	result, err := RunEM(b.Matrix(), testEMConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(result.F[0]-1) > 1e-9 {
		t.Errorf("refA: expected abundance 1, got %f", result.F[0])
	}
	if result.F[1] != 0 {
		t.Errorf("refB: expected abundance 0, got %f", result.F[1])
	}
	if result.Reads != 3 {
		t.Errorf("expected 3 contributing reads, got %d", result.Reads)
	}
}

func TestRunEMSymmetricReferences(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB"})
	b.Add("r1", "refA", -1)
	b.Add("r2", "refB", -1)
	b.Add("r3", "refA", -2)
	b.Add("r3", "refB", -2)

	result, err := RunEM(b.Matrix(), testEMConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(result.F[0]-0.5) > 1e-3 {
		t.Errorf("refA: expected abundance 0.5, got %f", result.F[0])
	}
	if math.Abs(result.F[1]-0.5) > 1e-3 {
		t.Errorf("refB: expected abundance 0.5, got %f", result.F[1])
	}
}

func TestRunEMInvariants(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB", "refC"})
	b.Add("r1", "refA", -1)
	b.Add("r1", "refB", -3)
	b.Add("r2", "refB", -0.5)
	b.Add("r2", "refC", -0.7)
	b.Add("r3", "refC", -2)
	b.Add("r4", "refA", -4)
	b.Add("r4", "refC", -4)
	m := b.Matrix()

	prevLogL := math.Inf(-1)
	result, err := RunEM(m, testEMConfig(), func(iter int, logL float64) {
		if logL < prevLogL {
			t.Errorf("iteration %d: log likelihood decreased from %f to %f", iter, prevLogL, logL)
		}
		prevLogL = logL
	})
	if err != nil {
		t.Fatal(err)
	}

	var sum float64
	for _, v := range result.F {
		if v < 0 {
			t.Errorf("negative abundance %f", v)
		}
		sum += v
	}
	if sum < 0.999 || sum > 1.0001 {
		t.Errorf("abundances sum to %f", sum)
	}
}

func TestRunEMDidNotConverge(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA", "refB"})
	b.Add("r1", "refA", -1)
	b.Add("r2", "refB", -1)
	b.Add("r3", "refA", -2)
	b.Add("r3", "refB", -2.5)

	config := testEMConfig()
	config.MaxIters = 1

	var target *DidNotConvergeError
	_, err := RunEM(b.Matrix(), config, nil)
	if !errors.As(err, &target) {
		t.Errorf("expected DidNotConvergeError, got %v", err)
	}
	if target != nil && target.Iters != 1 {
		t.Errorf("expected 1 iteration reported, got %d", target.Iters)
	}
}

func TestRunEMEmptyMatrix(t *testing.T) {
	b := NewMatrixBuilder([]string{"refA"})
	if _, err := RunEM(b.Matrix(), testEMConfig(), nil); err == nil {
		t.Error("expected an error for a matrix without reads")
	}

	b = NewMatrixBuilder(nil)
	b.Add("r1", "refA", -1) // outside the empty universe, ignored
	if _, err := RunEM(b.Matrix(), testEMConfig(), nil); err == nil {
		t.Error("expected an error for an empty reference universe")
	}
}

func TestReduceAbundance(t *testing.T) {
	f := []float64{0.6, 0.39995, 0.00005}

	out, err := ReduceAbundance(f, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if out[2] != 0 {
		t.Errorf("reference below threshold should be dropped, got %f", out[2])
	}

	var sum float64
	for _, v := range out {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("reduced abundances sum to %.12f, expected 1", sum)
	}

	// idempotence
	out2, err := ReduceAbundance(out, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range out {
		if math.Abs(out2[i]-out[i]) > 1e-9 {
			t.Errorf("reducing a reduced vector changed entry %d: %f -> %f", i, out[i], out2[i])
		}
	}
}

func TestReduceAbundanceDegenerate(t *testing.T) {
	var target *DegenerateReductionError

	_, err := ReduceAbundance([]float64{0.3, 0.3, 0.4}, 0.5)
	if !errors.As(err, &target) {
		t.Errorf("expected DegenerateReductionError, got %v", err)
	}
}
