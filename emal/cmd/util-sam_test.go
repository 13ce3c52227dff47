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
	"strings"
	"testing"
)

func TestReadAlignments(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("@HD\tVN:1.6\tSO:unsorted\n")
	sb.WriteString("@SQ\tSN:refA\tLN:200\n")
	sb.WriteString("@SQ\tSN:refB\tLN:150\n")
	sb.WriteString("r1\t0\trefA\t1\t60\t90M2I5S\t*\t0\t0\t" +
		strings.Repeat("A", 97) + "\t*\tNM:i:5\n")
	sb.WriteString("r2\t256\trefB\t10\t0\t50M\t*\t0\t0\t*\t*\tNM:i:1\n")
	sb.WriteString("r3\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*\n")

	var records []*AlignmentRecord
	refs, err := readAlignments(strings.NewReader(sb.String()), func(rec *AlignmentRecord) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 || refs[0] != "refA" || refs[1] != "refB" {
		t.Fatalf("header references: expected [refA refB], got %v", refs)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	r1 := records[0]
	if r1.Read != "r1" || r1.Ref != "refA" || !r1.Primary() {
		t.Errorf("r1: unexpected record %+v", r1)
	}
	if r1.RawStats[rawM] != 90 || r1.RawStats[rawI] != 2 || r1.RawStats[rawS] != 5 {
		t.Errorf("r1: cigar tally M=%d I=%d S=%d, expected 90/2/5",
			r1.RawStats[rawM], r1.RawStats[rawI], r1.RawStats[rawS])
	}
	if r1.RawStats[rawNM] != 5 {
		t.Errorf("r1: NM=%d, expected 5", r1.RawStats[rawNM])
	}

	r2 := records[1]
	if !r2.Secondary || r2.Primary() {
		t.Errorf("r2: secondary flag not recognized")
	}
	if r2.Ref != "refB" {
		t.Errorf("r2: expected refB, got %q", r2.Ref)
	}

	r3 := records[2]
	if r3.Ref != "" {
		t.Errorf("r3: unmapped record should have no reference, got %q", r3.Ref)
	}
}

func TestReadAlignmentsStatsRoundTrip(t *testing.T) {
	sam := "@HD\tVN:1.6\n" +
		"@SQ\tSN:refA\tLN:200\n" +
		"r1\t0\trefA\t1\t60\t90M2I1D5S\t*\t0\t0\t" +
		strings.Repeat("A", 97) + "\t*\tNM:i:5\n"

	var rec *AlignmentRecord
	_, err := readAlignments(strings.NewReader(sam), func(r *AlignmentRecord) error {
		rec = r
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := convertCigarStats(rec.Read, rec.RawStats)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Substitution != 2 || stats.Match != 88 || stats.Clip != 5 || stats.Deletion != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
