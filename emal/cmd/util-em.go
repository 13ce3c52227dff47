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
	"fmt"
	"math"
	"runtime"
	"sync"
)

// EMConfig holds the estimator parameters. All of them are plain
// values so they can be loaded from a YAML file and overridden by
// flags.
type EMConfig struct {
	// exit when the increase of the total log likelihood drops
	// below this value (natural-log units)
	Convergence float64 `yaml:"convergence"`

	// defensive cap on the number of iterations
	MaxIters int `yaml:"max-iters"`

	// references with abundance <= this value are removed by
	// ReduceAbundance
	Threshold float64 `yaml:"abund-threshold"`

	Threads int `yaml:"-"`
}

// DefaultEMConfig returns the default estimator parameters.
func DefaultEMConfig() EMConfig {
	return EMConfig{
		Convergence: 0.01,
		MaxIters:    1000,
		Threshold:   1e-4,
	}
}

// NumericalInstabilityError reports abundance mass out of tolerance
// after an abundance update. It indicates a modeling or
// floating-point bug, not a recoverable condition.
type NumericalInstabilityError struct {
	Iter int
	Sum  float64
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("iteration %d: abundances sum to %.9f, rather than 1", e.Iter, e.Sum)
}

// MonotonicityViolationError reports a decrease of the total log
// likelihood, which EM guarantees to be non-decreasing under a
// correctly specified model.
type MonotonicityViolationError struct {
	Iter       int
	Prev, Curr float64
}

func (e *MonotonicityViolationError) Error() string {
	return fmt.Sprintf("iteration %d: total log likelihood decreased from %f to %f", e.Iter, e.Prev, e.Curr)
}

// DidNotConvergeError reports that the iteration cap was hit before
// the convergence threshold was reached.
type DidNotConvergeError struct {
	Iters int
	Delta float64
}

func (e *DidNotConvergeError) Error() string {
	return fmt.Sprintf("EM did not converge within %d iterations (last increase: %f)", e.Iters, e.Delta)
}

// DegenerateReductionError reports that abundance reduction filtered
// out every reference.
type DegenerateReductionError struct {
	Threshold float64
}

func (e *DegenerateReductionError) Error() string {
	return fmt.Sprintf("no reference with abundance above threshold %g", e.Threshold)
}

// EMResult is the converged state of the estimator.
type EMResult struct {
	// abundance per Matrix.Refs index, summing to 1
	F []float64

	LogLikelihood float64
	Iters         int

	// reads contributing to the final abundance update
	Reads int
}

// emPartial carries the per-worker sums of one E step.
type emPartial struct {
	acc   []float64
	logL  float64
	reads int
}

// RunEM estimates the mixture proportions over m.Refs by
// expectation maximization. The abundance vector starts uniform over
// the full reference universe. Per-read responsibilities are computed
// in parallel, the abundance update and the invariant checks run
// single-threaded after merging the partial sums. iterCallback, when
// not nil, is invoked after every completed iteration.
func RunEM(m *Matrix, config *EMConfig, iterCallback func(iter int, logL float64)) (*EMResult, error) {
	nRefs := len(m.Refs)
	if nRefs == 0 {
		return nil, fmt.Errorf("empty reference universe")
	}
	if len(m.Entries) == 0 {
		return nil, fmt.Errorf("no reads with scorable alignments")
	}

	threads := config.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	f := make([]float64, nRefs)
	for s := range f {
		f[s] = 1 / float64(nRefs)
	}
	logF := make([]float64, nRefs)

	totalLogL := math.Inf(-1)
	var delta float64

	for iter := 1; iter <= config.MaxIters; iter++ {
		for s, v := range f {
			if v > 0 {
				logF[s] = math.Log(v)
			}
		}

		// E step, parallel across reads
		chunkSize := (len(m.Entries) + threads - 1) / threads
		parts := make(chan *emPartial, threads)
		var wg sync.WaitGroup
		for start := 0; start < len(m.Entries); start += chunkSize {
			end := start + chunkSize
			if end > len(m.Entries) {
				end = len(m.Entries)
			}

			wg.Add(1)
			go func(rows [][]MatrixEntry) {
				defer wg.Done()

				part := &emPartial{acc: make([]float64, nRefs)}
				weights := make([]float64, 0, 8)
				for _, row := range rows {
					// stabilizer: the maximum joint score of the read
					max := math.Inf(-1)
					for _, e := range row {
						if f[e.Ref] <= 0 {
							continue
						}
						if j := e.LogL + logF[e.Ref]; j > max {
							max = j
						}
					}
					if math.IsInf(max, -1) { // no scorable alignment left
						continue
					}

					weights = weights[:0]
					var sumW float64
					for _, e := range row {
						if f[e.Ref] <= 0 {
							continue
						}
						w := math.Exp(e.LogL + logF[e.Ref] - max)
						weights = append(weights, w)
						sumW += w
					}

					// responsibilities
					i := 0
					for _, e := range row {
						if f[e.Ref] <= 0 {
							continue
						}
						part.acc[e.Ref] += weights[i] / sumW
						i++
					}

					part.logL += math.Log(sumW) + max
					part.reads++
				}
				parts <- part
			}(m.Entries[start:end])
		}
		go func() {
			wg.Wait()
			close(parts)
		}()

		acc := make([]float64, nRefs)
		var logL float64
		var nReads int
		for part := range parts {
			for s, v := range part.acc {
				acc[s] += v
			}
			logL += part.logL
			nReads += part.reads
		}

		if nReads == 0 {
			return nil, &NumericalInstabilityError{Iter: iter, Sum: 0}
		}

		// M step
		for s := range f {
			f[s] = acc[s] / float64(nReads)
		}

		var sum float64
		for _, v := range f {
			sum += v
		}
		if sum < 0.999 || sum > 1.0001 {
			return nil, &NumericalInstabilityError{Iter: iter, Sum: sum}
		}

		delta = logL - totalLogL
		if delta < 0 {
			return nil, &MonotonicityViolationError{Iter: iter, Prev: totalLogL, Curr: logL}
		}
		totalLogL = logL

		if iterCallback != nil {
			iterCallback(iter, logL)
		}

		if delta < config.Convergence {
			return &EMResult{
				F:             f,
				LogLikelihood: totalLogL,
				Iters:         iter,
				Reads:         nReads,
			}, nil
		}
	}

	return nil, &DidNotConvergeError{Iters: config.MaxIters, Delta: delta}
}

// ReduceAbundance removes references with abundance <= threshold and
// renormalizes the kept ones. Dropped references get abundance 0 in
// the returned vector.
func ReduceAbundance(f []float64, threshold float64) ([]float64, error) {
	var sum float64
	for _, v := range f {
		if v > threshold {
			sum += v
		}
	}
	if sum == 0 {
		return nil, &DegenerateReductionError{Threshold: threshold}
	}

	out := make([]float64, len(f))
	for s, v := range f {
		if v > threshold {
			out[s] = v / sum
		}
	}
	return out, nil
}
