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
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	prettytable "github.com/tatsushid/go-prettytable"
)

// operationNames for the model table.
var operationNames = map[Operation]string{
	OpMatch:        "match",
	OpInsertion:    "insertion",
	OpDeletion:     "deletion",
	OpRefSkip:      "ref-skip",
	OpSoftClip:     "soft-clip",
	OpHardClip:     "hard-clip",
	OpPadding:      "padding",
	OpExactMatch:   "exact-match",
	OpSubstitution: "substitution",
	OpBack:         "back",
	OpClip:         "clip",
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Train and print the operation probability model",
	Long: `Train and print the operation probability model

The probabilities of alignment edit operations are learned from the
cigar operations and NM tags of the primary alignments, exactly as in
"emal profile". This command only prints the model, as a diagnostic
aid for judging whether the input alignments are sane.

Categories never observed in the input have no probability (rather
than probability 0) and are marked as absent, alignments containing
them are unscorable during profiling.

Examples:
  1. Pretty table:
       emal model sample.sam.gz
  2. Tab-delimited:
       emal model --tabular sample.sam.gz -o model.tsv
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		outFile := getFlagString(cmd, "out-prefix")
		tabular := getFlagBool(cmd, "tabular")

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		trainer := NewModelTrainer()
		var nRecords int64
		for _, file := range files {
			if opt.Verbose || opt.Log2File {
				log.Infof("parsing file: %s", file)
			}
			_, err := parseSAMFile(file, func(rec *AlignmentRecord) error {
				nRecords++
				return trainer.Add(rec)
			})
			checkError(err)
		}

		probs, err := trainer.Probs()
		checkError(err)

		if opt.Verbose || opt.Log2File {
			log.Infof("%s alignment records parsed, %s primary",
				humanize.Comma(nRecords), humanize.Comma(trainer.N()))
		}

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(strings.ToLower(outFile), ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		if tabular {
			outfh.WriteString("operation\tcount\tprob\tlog-prob\n")
			for _, op := range allOperations {
				prob, ok := probs[op]
				if !ok {
					outfh.WriteString(fmt.Sprintf("%s\t%d\t\t\n", operationNames[op], trainer.Count(op)))
					continue
				}
				outfh.WriteString(fmt.Sprintf("%s\t%d\t%.6e\t%.4f\n",
					operationNames[op], trainer.Count(op), prob, math.Log(prob)))
			}
			return
		}

		columns := []prettytable.Column{
			{Header: "operation"},
			{Header: "count", AlignRight: true},
			{Header: "prob", AlignRight: true},
			{Header: "log-prob", AlignRight: true},
		}
		tbl, err := prettytable.NewTable(columns...)
		checkError(err)
		tbl.Separator = "  "

		for _, op := range allOperations {
			prob, ok := probs[op]
			if !ok {
				tbl.AddRow(operationNames[op], humanize.Comma(int64(trainer.Count(op))), "absent", "")
				continue
			}
			tbl.AddRow(
				operationNames[op],
				humanize.Comma(int64(trainer.Count(op))),
				fmt.Sprintf("%.6e", prob),
				fmt.Sprintf("%.4f", math.Log(prob)),
			)
		}
		outfh.Write(tbl.Bytes())
	},
}

func init() {
	RootCmd.AddCommand(modelCmd)

	modelCmd.Flags().StringP("out-prefix", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)
	modelCmd.Flags().BoolP("tabular", "", false, "output in tab-delimited format")
}
