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
	"io"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
	"github.com/shenwei356/xopen"
)

var nmTag = sam.NewTag("NM")

// readAlignments streams SAM records from r as AlignmentRecords and
// returns the reference names declared in the header.
func readAlignments(r io.Reader, fn func(*AlignmentRecord) error) ([]string, error) {
	reader, err := sam.NewReader(r)
	if err != nil {
		return nil, err
	}

	headerRefs := reader.Header().Refs()
	refs := make([]string, len(headerRefs))
	for i, ref := range headerRefs {
		refs[i] = ref.Name()
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return refs, err
		}

		if err = fn(samRecord2AlignmentRecord(rec)); err != nil {
			return refs, err
		}
	}
	return refs, nil
}

// parseSAMFile streams one SAM file (plain or gzip-compressed, "-"
// for stdin) through fn.
func parseSAMFile(file string, fn func(*AlignmentRecord) error) ([]string, error) {
	fh, err := xopen.Ropen(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	defer fh.Close()

	refs, err := readAlignments(fh, fn)
	if err != nil {
		return refs, errors.Wrap(err, file)
	}
	return refs, nil
}

func samRecord2AlignmentRecord(rec *sam.Record) *AlignmentRecord {
	ar := &AlignmentRecord{
		Read:          rec.Name,
		Secondary:     rec.Flags&sam.Secondary > 0,
		Supplementary: rec.Flags&sam.Supplementary > 0,
		RawStats:      make([]int, NumRawCounts),
	}
	if rec.Ref != nil && rec.Flags&sam.Unmapped == 0 {
		ar.Ref = rec.Ref.Name()
	}

	for _, co := range rec.Cigar {
		switch co.Type() {
		case sam.CigarMatch:
			ar.RawStats[rawM] += co.Len()
		case sam.CigarInsertion:
			ar.RawStats[rawI] += co.Len()
		case sam.CigarDeletion:
			ar.RawStats[rawD] += co.Len()
		case sam.CigarSkipped:
			ar.RawStats[rawN] += co.Len()
		case sam.CigarSoftClipped:
			ar.RawStats[rawS] += co.Len()
		case sam.CigarHardClipped:
			ar.RawStats[rawH] += co.Len()
		case sam.CigarPadded:
			ar.RawStats[rawP] += co.Len()
		case sam.CigarEqual:
			ar.RawStats[rawEq] += co.Len()
		case sam.CigarMismatch:
			ar.RawStats[rawX] += co.Len()
		case sam.CigarBack:
			ar.RawStats[rawB] += co.Len()
		}
	}

	if aux := rec.AuxFields.Get(nmTag); aux != nil {
		ar.RawStats[rawNM] = auxInt(aux)
	}
	return ar
}

// auxInt unpacks the integer value of an optional field, the SAM
// spec allows any integer width.
func auxInt(a sam.Aux) int {
	switch v := a.Value().(type) {
	case int8:
		return int(v)
	case uint8:
		return int(v)
	case int16:
		return int(v)
	case uint16:
		return int(v)
	case int32:
		return int(v)
	case uint32:
		return int(v)
	case int:
		return v
	}
	return 0
}
