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

import "fmt"

// Indexes into the raw cigar tally, in the canonical order
// M, I, D, N, S, H, P, =, X, B, NM.
const (
	rawM = iota
	rawI
	rawD
	rawN
	rawS
	rawH
	rawP
	rawEq
	rawX
	rawB
	rawNM
)

// NumRawCounts is the expected length of a raw cigar tally.
const NumRawCounts = 11

// Operation is one category of alignment edit operations.
type Operation byte

// Operation categories. OpSubstitution is recomputed from the edit
// distance (NM tag), OpClip sums soft and hard clipping.
const (
	OpMatch        Operation = 'M'
	OpInsertion    Operation = 'I'
	OpDeletion     Operation = 'D'
	OpRefSkip      Operation = 'N'
	OpSoftClip     Operation = 'S'
	OpHardClip     Operation = 'H'
	OpPadding      Operation = 'P'
	OpExactMatch   Operation = '='
	OpSubstitution Operation = 'X'
	OpBack         Operation = 'B'
	OpClip         Operation = 'C'
)

// allOperations lists categories in output order.
var allOperations = []Operation{
	OpMatch, OpInsertion, OpDeletion, OpRefSkip, OpSoftClip, OpHardClip,
	OpPadding, OpExactMatch, OpSubstitution, OpBack, OpClip,
}

// AlignmentRecord is one alignment of a read against a reference,
// carrying the raw cigar tally. Ref is empty for unmapped records.
type AlignmentRecord struct {
	Read          string
	Ref           string
	Secondary     bool
	Supplementary bool
	RawStats      []int
}

// Primary reports whether the record is neither a secondary nor a
// supplementary placement.
func (r *AlignmentRecord) Primary() bool {
	return !r.Secondary && !r.Supplementary
}

// AlignStats holds the edit operation counts of one alignment after
// converting a raw cigar tally.
type AlignStats struct {
	Match        int // matches, substitutions excluded
	Insertion    int
	Deletion     int
	RefSkip      int
	SoftClip     int
	HardClip     int
	Padding      int
	ExactMatch   int
	Substitution int // edit distance minus indels
	Back         int
	Clip         int // soft + hard clipping
}

// MalformedAlignmentRecordError reports a raw cigar tally of wrong
// shape or with disallowed values.
type MalformedAlignmentRecordError struct {
	Read   string
	Reason string
}

func (e *MalformedAlignmentRecordError) Error() string {
	return fmt.Sprintf("malformed alignment record for read %s: %s", e.Read, e.Reason)
}

// convertCigarStats converts a raw cigar tally into AlignStats:
// substitutions = NM - insertions - deletions, matches exclude
// substitutions, clipping sums soft and hard clipping.
// Some aligners emit NM values smaller than the indel sum, the
// substitution count is clamped at zero for those records.
func convertCigarStats(read string, raw []int) (AlignStats, error) {
	var stats AlignStats

	if len(raw) != NumRawCounts {
		return stats, &MalformedAlignmentRecordError{
			Read:   read,
			Reason: fmt.Sprintf("cigar tally of length %d, expected %d", len(raw), NumRawCounts),
		}
	}
	for i, count := range raw {
		if count < 0 {
			return stats, &MalformedAlignmentRecordError{
				Read:   read,
				Reason: fmt.Sprintf("negative count (%d) at tally field %d", count, i),
			}
		}
	}

	substitution := raw[rawNM] - raw[rawI] - raw[rawD]
	if substitution < 0 {
		substitution = 0
	}
	match := raw[rawM] - substitution
	if match < 0 {
		return stats, &MalformedAlignmentRecordError{
			Read:   read,
			Reason: fmt.Sprintf("edit distance (%d) exceeds aligned length", raw[rawNM]),
		}
	}

	stats = AlignStats{
		Match:        match,
		Insertion:    raw[rawI],
		Deletion:     raw[rawD],
		RefSkip:      raw[rawN],
		SoftClip:     raw[rawS],
		HardClip:     raw[rawH],
		Padding:      raw[rawP],
		ExactMatch:   raw[rawEq],
		Substitution: substitution,
		Back:         raw[rawB],
		Clip:         raw[rawS] + raw[rawH],
	}
	return stats, nil
}

// count returns the count of one category.
func (s AlignStats) count(op Operation) int {
	switch op {
	case OpMatch:
		return s.Match
	case OpInsertion:
		return s.Insertion
	case OpDeletion:
		return s.Deletion
	case OpRefSkip:
		return s.RefSkip
	case OpSoftClip:
		return s.SoftClip
	case OpHardClip:
		return s.HardClip
	case OpPadding:
		return s.Padding
	case OpExactMatch:
		return s.ExactMatch
	case OpSubstitution:
		return s.Substitution
	case OpBack:
		return s.Back
	case OpClip:
		return s.Clip
	}
	return 0
}

// Identity is the fraction of alignment columns being matches,
// only used for reporting.
func (s AlignStats) Identity() float64 {
	total := s.Match + s.Substitution + s.Insertion + s.Deletion + s.Clip
	if total == 0 {
		return 0
	}
	return float64(s.Match) / float64(total)
}
