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
	"testing"
)

func TestConvertCigarStats(t *testing.T) {
	// M=90, I=2, D=1, S=5, NM=5
	raw := []int{90, 2, 1, 0, 5, 0, 0, 0, 0, 0, 5}

	stats, err := convertCigarStats("r1", raw)
	if err != nil {
		t.Fatal(err)
	}

	if stats.Substitution != 2 {
		t.Errorf("substitution: expected 2, got %d", stats.Substitution)
	}
	if stats.Match != 88 {
		t.Errorf("match: expected 88, got %d", stats.Match)
	}
	if stats.Clip != 5 {
		t.Errorf("clip: expected 5, got %d", stats.Clip)
	}
	if stats.Insertion != 2 || stats.Deletion != 1 {
		t.Errorf("insertion/deletion should pass through unchanged, got %d/%d",
			stats.Insertion, stats.Deletion)
	}
}

func TestConvertCigarStatsClampsNegativeSubstitution(t *testing.T) {
	// NM=1 < I+D=3, some aligners exclude indels from NM
	raw := []int{50, 2, 1, 0, 0, 0, 0, 0, 0, 0, 1}

	stats, err := convertCigarStats("r1", raw)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Substitution != 0 {
		t.Errorf("substitution should be clamped at 0, got %d", stats.Substitution)
	}
	if stats.Match != 50 {
		t.Errorf("match: expected 50, got %d", stats.Match)
	}
}

func TestConvertCigarStatsMalformed(t *testing.T) {
	var target *MalformedAlignmentRecordError

	_, err := convertCigarStats("r1", []int{1, 2, 3})
	if !errors.As(err, &target) {
		t.Errorf("expected MalformedAlignmentRecordError for short tally, got %v", err)
	}

	_, err = convertCigarStats("r1", []int{90, -2, 1, 0, 5, 0, 0, 0, 0, 0, 5})
	if !errors.As(err, &target) {
		t.Errorf("expected MalformedAlignmentRecordError for negative count, got %v", err)
	}

	// NM=100 > M+I+D, matches would go negative
	_, err = convertCigarStats("r1", []int{50, 0, 0, 0, 0, 0, 0, 0, 0, 0, 100})
	if !errors.As(err, &target) {
		t.Errorf("expected MalformedAlignmentRecordError for excessive edit distance, got %v", err)
	}
}

func TestAlignStatsIdentity(t *testing.T) {
	raw := []int{90, 2, 1, 0, 5, 0, 0, 0, 0, 0, 5}
	stats, err := convertCigarStats("r1", raw)
	if err != nil {
		t.Fatal(err)
	}

	// 88 matches of 88+2+2+1+5 columns
	expected := 88.0 / 98.0
	if diff := stats.Identity() - expected; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("identity: expected %f, got %f", expected, stats.Identity())
	}

	var empty AlignStats
	if empty.Identity() != 0 {
		t.Errorf("identity of an empty alignment should be 0")
	}
}
