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
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/bio/taxdump"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/util/cliutil"
	"github.com/shenwei356/util/stats"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
	"gopkg.in/yaml.v2"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Estimate reference abundances from SAM alignments",
	Long: `Estimate reference abundances from SAM alignments

Method:
  1. The probabilities of alignment edit operations (match, mismatch,
     insertion, deletion, clipping) are learned from the cigar
     operations and NM tags of all primary alignments.
  2. Every alignment is scored under this model, and the best log
     likelihood per (read, reference) pair is kept. Alignments with
     operations never observed in the primary alignments are
     unscorable and dropped.
  3. An Expectation-Maximization mixture estimator infers the
     relative abundances of all candidate references, starting from a
     uniform composition over the whole reference universe.
  4. References below the abundance threshold (--abund-threshold) are
     removed and the kept ones renormalized.
  5. Input files are parsed twice, therefore STDIN is not supported.

Reference universe:
  By default all references declared in the SAM headers (@SQ lines)
  are candidates, including ones without any alignment. Use
  -d/--db-fasta or -r/--ref-id-list to supply the universe explicitly.

Failure semantics:
  Invariant violations (abundance mass out of [0.999, 1.0001], a
  decrease of the total log likelihood) abort the run, there is no
  partial output. Hitting -m/--max-iters before convergence aborts
  as well.

Taxonomy data (optional):
  1. Mapping reference IDs to TaxIds: -T/--taxid-map
  2. NCBI taxonomy dump files: -X/--taxdump

Output formats:
  1. emal     (-o/--out-prefix, reduced; --full-out, unreduced)
     Tab-delimited with 10 columns:
        1. ref,        Identifier of the reference sequence
        2. abundance,  Relative abundance of the reference
        3. reads,      Expected number of reads assigned by the EM posterior
        4. score,      The 90th percentile of alignment identity
        5. refname,    Reference name, optional via name mapping file
        6. taxid,      TaxId of the reference
        7. rank,       Taxonomic rank
        8. taxname,    Taxonomic name
        9. taxpath,    Complete lineage
       10. taxpathsn,  Corresponding TaxIds of taxa in the complete lineage
  2. CAMI     (-C/--cami-report, -s/--sample-id, --taxonomy-id)

Examples:
  1. Plain abundance table:
       emal profile sample.sam.gz -o sample.tsv
  2. With taxonomic lineages and a CAMI profile:
       emal profile -X taxdump/ -T taxid.map \
           sample.sam.gz -o sample.tsv -C sample.profile -s sample
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

		var err error

		outFile := getFlagString(cmd, "out-prefix")
		fullOutFile := getFlagString(cmd, "full-out")

		// ---------------------------------------------------------------
		// EM parameters, config file first, flags win

		emConfig := DefaultEMConfig()

		configFile := getFlagString(cmd, "config")
		if configFile != "" {
			configFile, err = homedir.Expand(configFile)
			checkError(err)
			var data []byte
			data, err = os.ReadFile(configFile)
			checkError(errors.Wrap(err, configFile))
			checkError(errors.Wrap(yaml.Unmarshal(data, &emConfig), configFile))
		}

		if cmd.Flags().Lookup("convergence").Changed {
			emConfig.Convergence = getFlagPositiveFloat64(cmd, "convergence")
		}
		if cmd.Flags().Lookup("max-iters").Changed {
			emConfig.MaxIters = getFlagPositiveInt(cmd, "max-iters")
		}
		if cmd.Flags().Lookup("abund-threshold").Changed {
			emConfig.Threshold = getFlagNonNegativeFloat64(cmd, "abund-threshold")
		}
		if emConfig.Convergence <= 0 {
			checkError(fmt.Errorf("value of convergence should be positive: %f", emConfig.Convergence))
		}
		if emConfig.MaxIters <= 0 {
			checkError(fmt.Errorf("value of max-iters should be positive: %d", emConfig.MaxIters))
		}
		emConfig.Threads = opt.NumCPUs

		// ---------------------------------------------------------------
		// taxonomy data

		sampleID := getFlagString(cmd, "sample-id")
		taxonomyID := getFlagString(cmd, "taxonomy-id")

		camiReportFile := getFlagString(cmd, "cami-report")
		outputCamiReport := camiReportFile != ""
		if outputCamiReport && !strings.HasSuffix(camiReportFile, ".profile") {
			camiReportFile = camiReportFile + ".profile"
		}

		taxidMappingFiles := getFlagStringSlice(cmd, "taxid-map")
		nameMappingFiles := getFlagStringSlice(cmd, "name-map")

		taxdumpDir := getFlagString(cmd, "taxdump")
		if taxdumpDir != "" {
			taxdumpDir, err = homedir.Expand(taxdumpDir)
			checkError(err)
		}

		mappingTaxids := len(taxidMappingFiles) != 0 && taxdumpDir != ""
		if outputCamiReport && !mappingTaxids {
			checkError(fmt.Errorf("TaxId mapping files (-T/--taxid-map) and taxonomy dump files (-X/--taxdump) are needed to output a CAMI report"))
		}

		showRanks := getFlagStringSlice(cmd, "show-rank")
		rankOrder := make(map[string]int, len(showRanks))
		for _i, _r := range showRanks {
			rankOrder[_r] = _i
		}
		showRanksMap := make(map[string]interface{}, len(showRanks))
		for _, _rank := range showRanks {
			showRanksMap[_rank] = struct{}{}
		}

		// ---------------------------------------------------------------
		// input files

		if opt.Verbose || opt.Log2File {
			log.Info("checking input files ...")
		}
		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		inDir := getFlagString(cmd, "in-dir")
		if inDir != "" {
			reFileStr := getFlagString(cmd, "file-regexp")
			var reFile *regexp.Regexp
			reFile, err = regexp.Compile(reFileStr)
			checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))

			var _files []string
			_files, err = getFileListFromDir(inDir, reFile, opt.NumCPUs)
			checkError(errors.Wrap(err, inDir))

			if len(files) == 1 && isStdin(files[0]) {
				files = _files
			} else {
				files = append(files, _files...)
			}
		}

		for _, file := range files {
			if isStdin(file) {
				checkError(fmt.Errorf("stdin not supported, input files are parsed twice"))
			}
		}
		if len(files) == 0 {
			checkError(fmt.Errorf("no input files given"))
		}
		if opt.Verbose || opt.Log2File {
			log.Infof("%d input file(s) given", len(files))
		}

		// ---------------------------------------------------------------
		// name and taxid mapping files

		var namesMap map[string]string
		mappingNames := len(nameMappingFiles) != 0
		if mappingNames {
			if opt.Verbose || opt.Log2File {
				log.Infof("loading name mapping file ...")
			}
			nameMappingFile := nameMappingFiles[0]
			namesMap, err = cliutil.ReadKVs(nameMappingFile, false)
			checkError(errors.Wrap(err, nameMappingFile))

			if len(nameMappingFiles) > 1 {
				for _, _nameMappingFile := range nameMappingFiles[1:] {
					_namesMap, err := cliutil.ReadKVs(_nameMappingFile, false)
					checkError(errors.Wrap(err, _nameMappingFile))
					for _k, _v := range _namesMap {
						namesMap[_k] = _v
					}
				}
			}

			if opt.Verbose || opt.Log2File {
				log.Infof("  %d pairs of reference id and name loaded", len(namesMap))
			}
		}

		var taxdb *taxdump.Taxonomy
		var taxidMap map[string]uint32
		if mappingTaxids {
			if opt.Verbose || opt.Log2File {
				log.Infof("loading TaxId mapping file ...")
			}
			taxidMappingFile := taxidMappingFiles[0]
			taxidMapStr, err := cliutil.ReadKVs(taxidMappingFile, false)
			checkError(errors.Wrap(err, taxidMappingFile))

			if len(taxidMappingFiles) > 1 {
				for _, _taxidMappingFile := range taxidMappingFiles[1:] {
					_taxidMapStr, err := cliutil.ReadKVs(_taxidMappingFile, false)
					checkError(errors.Wrap(err, _taxidMappingFile))
					for _k, _v := range _taxidMapStr {
						taxidMapStr[_k] = _v
					}
				}
			}

			taxidMap = make(map[string]uint32, len(taxidMapStr))
			for k, s := range taxidMapStr {
				t, err := strconv.Atoi(s)
				checkError(errors.Wrapf(err, "failed to parse TaxId of reference %s", k))
				taxidMap[k] = uint32(t)
			}

			if opt.Verbose || opt.Log2File {
				log.Infof("  %d pairs of reference id and TaxId loaded", len(taxidMap))
			}

			taxdb = loadTaxonomy(opt, taxdumpDir)
		}

		// ---------------------------------------------------------------
		// log

		if opt.Verbose || opt.Log2File {
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("convergence threshold: %g", emConfig.Convergence)
			log.Infof("maximal iterations: %d", emConfig.MaxIters)
			log.Infof("abundance threshold: %g", emConfig.Threshold)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
		}

		// ---------------------------------------------------------------
		// stage 1/3: training the operation probability model

		if opt.Verbose || opt.Log2File {
			log.Infof("stage 1/3: training the operation probability model from primary alignments")
		}
		timeStart1 := time.Now()

		trainer := NewModelTrainer()
		var nRecords int64

		refUniverse := make([]string, 0, 1024)
		refUniverseSet := make(map[string]interface{}, 1024)

		for _, file := range files {
			if opt.Verbose || opt.Log2File {
				log.Infof("  parsing file: %s", file)
			}

			headerRefs, err := parseSAMFile(file, func(rec *AlignmentRecord) error {
				nRecords++
				return trainer.Add(rec)
			})
			checkError(err)

			for _, ref := range headerRefs {
				if _, ok := refUniverseSet[ref]; !ok {
					refUniverseSet[ref] = struct{}{}
					refUniverse = append(refUniverse, ref)
				}
			}
		}

		probs, err := trainer.Probs()
		checkError(err)

		if opt.Verbose || opt.Log2File {
			log.Infof("  %s alignment records parsed, %s primary",
				humanize.Comma(nRecords), humanize.Comma(trainer.N()))
			log.Infof("  %d operation categories with positive probability", len(probs))
			log.Infof("stage 1/3: finished in %s", time.Since(timeStart1))
		}

		// ---------------------------------------------------------------
		// the candidate reference universe

		dbFastaFiles := getFlagStringSlice(cmd, "db-fasta")
		refIDListFile := getFlagString(cmd, "ref-id-list")
		if len(dbFastaFiles) > 0 && refIDListFile != "" {
			checkError(fmt.Errorf("flag -d/--db-fasta and -r/--ref-id-list can not be given simultaneously"))
		}

		if len(dbFastaFiles) > 0 {
			refUniverse, err = readRefIDsFromFasta(dbFastaFiles)
			checkError(err)
			if opt.Verbose || opt.Log2File {
				log.Infof("%d candidate references loaded from FASTA file(s)", len(refUniverse))
			}
		} else if refIDListFile != "" {
			refUniverse, err = readRefIDsFromList(refIDListFile, opt.NumCPUs)
			checkError(err)
			if opt.Verbose || opt.Log2File {
				log.Infof("%d candidate references loaded from id list", len(refUniverse))
			}
		} else if opt.Verbose || opt.Log2File {
			log.Infof("%d candidate references collected from SAM header(s)", len(refUniverse))
		}
		if len(refUniverse) == 0 {
			checkError(fmt.Errorf("empty candidate reference universe"))
		}

		// ---------------------------------------------------------------
		// stage 2/3: scoring alignments

		if opt.Verbose || opt.Log2File {
			log.Infof("stage 2/3: computing log likelihoods of all (read, reference) pairs")
		}
		timeStart1 = time.Now()

		builder := NewMatrixBuilder(refUniverse)
		targetStats := make(map[string]*stats.Quantiler, mapInitSize)
		var nUnscorable int64

		for _, file := range files {
			if opt.Verbose || opt.Log2File {
				log.Infof("  parsing file: %s", file)
			}

			_, err = parseSAMFile(file, func(rec *AlignmentRecord) error {
				if rec.Ref == "" { // unmapped
					return nil
				}

				ss, err := convertCigarStats(rec.Read, rec.RawStats)
				if err != nil {
					return err
				}

				score, ok := probs.Score(ss)
				if !ok { // operations unseen in training data
					nUnscorable++
					return nil
				}

				builder.Add(rec.Read, rec.Ref, score)

				q, ok := targetStats[rec.Ref]
				if !ok {
					q = stats.NewQuantiler()
					targetStats[rec.Ref] = q
				}
				q.Add(ss.Identity())
				return nil
			})
			checkError(err)
		}

		matrix := builder.Matrix()

		if nUnscorable > 0 {
			log.Warningf("%s alignments dropped for containing operations unseen in training data", humanize.Comma(nUnscorable))
		}
		if builder.UnknownRefs() > 0 {
			log.Warningf("%s alignments ignored for references outside the candidate universe", humanize.Comma(builder.UnknownRefs()))
		}
		if opt.Verbose || opt.Log2File {
			var nPairs int64
			for _, row := range matrix.Entries {
				nPairs += int64(len(row))
			}
			log.Infof("  %s (read, reference) pairs of %s reads scored",
				humanize.Comma(nPairs), humanize.Comma(int64(len(matrix.Reads))))
			log.Infof("stage 2/3: finished in %s", time.Since(timeStart1))
		}

		// ---------------------------------------------------------------
		// stage 3/3: EM

		if opt.Verbose || opt.Log2File {
			log.Infof("stage 3/3: estimating abundances by expectation maximization")
		}
		timeStart1 = time.Now()

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if opt.Verbose && !opt.Log2File {
			pbs = mpb.New(mpb.WithWidth(79), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(emConfig.MaxIters),
				mpb.BarStyle("[=>-]<+"),
				mpb.PrependDecorators(
					decor.Name("EM iterations: "),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Elapsed(decor.ET_STYLE_GO),
				),
			)
		}

		result, err := RunEM(matrix, &emConfig, func(iter int, logL float64) {
			if bar != nil {
				bar.Increment()
			}
			if opt.Log2File {
				log.Infof("  iteration %d: total log likelihood: %f", iter, logL)
			}
		})
		if bar != nil {
			if err != nil {
				bar.Abort(true)
			} else {
				bar.SetTotal(int64(result.Iters), true)
			}
			pbs.Wait()
		}
		checkError(err)

		if opt.Verbose || opt.Log2File {
			log.Infof("  converged after %d iterations, total log likelihood: %f",
				result.Iters, result.LogLikelihood)
			log.Infof("  %s of %s aligned reads had scorable alignments",
				humanize.Comma(int64(result.Reads)), humanize.Comma(int64(len(matrix.Reads))))
			log.Infof("stage 3/3: finished in %s", time.Since(timeStart1))
		}

		reduced, err := ReduceAbundance(result.F, emConfig.Threshold)
		checkError(err)

		// ---------------------------------------------------------------
		// reports

		makeTargets := func(f []float64) Targets {
			targets := make(Targets, 0, 256)
			for s, v := range f {
				if v <= 0 {
					continue
				}
				t := &Target{
					Name:      matrix.Refs[s],
					Abundance: v,
					Reads:     v * float64(result.Reads),
					StatsA:    targetStats[matrix.Refs[s]],
				}
				if t.StatsA != nil {
					t.Score = t.StatsA.Percentile(90)
				}
				targets = append(targets, t)
			}
			sorts.Quicksort(targets)
			return targets
		}

		writeReport := func(file string, targets Targets) {
			outfh, gw, w, err := outStream(file, strings.HasSuffix(strings.ToLower(file), ".gz"), opt.CompressionLevel)
			checkError(err)
			defer func() {
				outfh.Flush()
				if gw != nil {
					gw.Close()
				}
				w.Close()
			}()

			outfh.WriteString("ref\tabundance\treads\tscore\trefname\ttaxid\trank\ttaxname\ttaxpath\ttaxpathsn\n")

			var taxid uint32
			var ok bool
			for _, t := range targets {
				if mappingNames {
					t.RefName = namesMap[t.Name]
				}

				if mappingTaxids {
					if taxid, ok = taxidMap[t.Name]; !ok {
						log.Warningf("%s is not mapped to any TaxId", t.Name)
					} else {
						t.AddTaxonomy(taxdb, showRanksMap, taxid)
					}
				}

				outfh.WriteString(fmt.Sprintf("%s\t%.6f\t%.2f\t%.4f\t%s\t%d\t%s\t%s\t%s\t%s\n",
					t.Name, t.Abundance, t.Reads, t.Score,
					t.RefName,
					t.Taxid, t.Rank, t.TaxonName,
					strings.Join(t.LineageNames, ";"),
					strings.Join(t.LineageTaxids, ";")))
			}
		}

		targets := makeTargets(reduced)
		writeReport(outFile, targets)
		if opt.Verbose || opt.Log2File {
			log.Infof("profile of %d references saved to %s", len(targets), outFile)
		}

		if fullOutFile != "" {
			fullTargets := makeTargets(result.F)
			writeReport(fullOutFile, fullTargets)
			if opt.Verbose || opt.Log2File {
				log.Infof("unreduced profile of %d references saved to %s", len(fullTargets), fullOutFile)
			}
		}

		// ---------------------------------------------------------------
		// cami format
		// https://github.com/bioboxes/rfc/blob/master/data-format/profiling.mkd

		if outputCamiReport {
			profile := generateProfile(taxdb, targets)

			nodes := make([]*ProfileNode, 0, len(profile))
			for _, node := range profile {
				nodes = append(nodes, node)
			}

			sort.Slice(nodes, func(i, j int) bool {
				if rankOrder[nodes[i].Rank] < rankOrder[nodes[j].Rank] {
					return true
				}

				if rankOrder[nodes[i].Rank] == rankOrder[nodes[j].Rank] {
					return nodes[i].Percentage > nodes[j].Percentage
				}

				return false
			})

			outfh2, gw2, w2, err := outStream(camiReportFile, false, opt.CompressionLevel)
			checkError(err)
			defer func() {
				outfh2.Flush()
				if gw2 != nil {
					gw2.Close()
				}
				w2.Close()
			}()

			outfh2.WriteString(fmt.Sprintf("@SampleID:%s\n", sampleID))
			outfh2.WriteString("@Version:0.10.0\n")
			outfh2.WriteString(fmt.Sprintf("@Ranks:%s\n", strings.Join(showRanks, "|")))
			outfh2.WriteString(fmt.Sprintf("@TaxonomyID:%s\n", taxonomyID))
			outfh2.WriteString("@@TAXID\tRANK\tTAXPATH\tTAXPATHSN\tPERCENTAGE\n")

			var lineageTaxids, lineageNames string
			var ok bool
			filterByRank := len(showRanksMap) > 0
			names := make([]string, 0, 8)
			taxids := make([]string, 0, 8)
			for _, node := range nodes {
				if filterByRank {
					if _, ok = showRanksMap[taxdb.Rank(node.Taxid)]; !ok {
						continue
					}

					names = names[:0]
					taxids = taxids[:0]
					for i, taxid := range node.LineageTaxids {
						if _, ok = showRanksMap[taxdb.Rank(taxid)]; ok {
							taxids = append(taxids, strconv.Itoa(int(taxid)))
							names = append(names, node.LineageNames[i])
						}
					}
					lineageTaxids = strings.Join(taxids, "|")
					lineageNames = strings.Join(names, "|")
				} else {
					taxids = taxids[:0]
					for _, taxid := range node.LineageTaxids {
						taxids = append(taxids, strconv.Itoa(int(taxid)))
					}
					lineageTaxids = strings.Join(taxids, "|")
					lineageNames = strings.Join(node.LineageNames, "|")
				}

				outfh2.WriteString(fmt.Sprintf("%d\t%s\t%s\t%s\t%.6f\n",
					node.Taxid, node.Rank, lineageTaxids, lineageNames, node.Percentage))
			}

			if opt.Verbose || opt.Log2File {
				log.Infof("CAMI profile saved to %s", camiReportFile)
			}
		}
	},
}

// readRefIDsFromFasta collects sequence ids of the reference
// database FASTA file(s).
func readRefIDsFromFasta(files []string) ([]string, error) {
	ids := make([]string, 0, 1024)
	seen := make(map[string]interface{}, 1024)

	for _, file := range files {
		fastxReader, err := fastx.NewDefaultReader(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}

		var record *fastx.Record
		for {
			record, err = fastxReader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				return nil, errors.Wrap(err, file)
			}

			id := string(record.ID)
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// readRefIDsFromList reads reference ids from a plain text file, one
// id per line (only the first tab-delimited column is used).
func readRefIDsFromList(file string, threads int) ([]string, error) {
	fn := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			return nil, false, nil
		}
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			line = line[:i]
		}
		return line, true, nil
	}

	reader, err := breader.NewBufferedReader(file, threads, 1000, fn)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}

	ids := make([]string, 0, 1024)
	seen := make(map[string]interface{}, 1024)
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, file)
		}
		for _, data := range chunk.Data {
			id := data.(string)
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func init() {
	RootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringP("out-prefix", "o", "-", `out file ("-" for stdout, suffix .gz for gzipped out)`)
	profileCmd.Flags().StringP("full-out", "", "", `optional out file for the unreduced abundance profile`)

	profileCmd.Flags().Float64P("convergence", "c", 0.01, `exit when the increase of the total log likelihood drops below this value`)
	profileCmd.Flags().IntP("max-iters", "m", 1000, `maximal number of EM iterations`)
	profileCmd.Flags().Float64P("abund-threshold", "t", 1e-4, `references with abundance <= this value are removed before renormalization`)
	profileCmd.Flags().StringP("config", "", "", `YAML file with EM parameters (convergence, max-iters, abund-threshold), flags win`)

	profileCmd.Flags().StringSliceP("db-fasta", "d", []string{}, `reference database FASTA file(s) supplying the candidate reference universe`)
	profileCmd.Flags().StringP("ref-id-list", "r", "", `plain text file of candidate reference ids, one per line`)

	profileCmd.Flags().StringP("in-dir", "", "", `directory containing input SAM files`)
	profileCmd.Flags().StringP("file-regexp", "", `\.sam(\.gz)?$`, `regular expression for matching input files in --in-dir`)

	profileCmd.Flags().StringSliceP("taxid-map", "T", []string{}, `file(s) for mapping reference ids to TaxIds (two-column tab-delimited)`)
	profileCmd.Flags().StringSliceP("name-map", "N", []string{}, `file(s) for mapping reference ids to names (two-column tab-delimited)`)
	profileCmd.Flags().StringP("taxdump", "X", "", `directory of NCBI taxonomy dump files: nodes.dmp, names.dmp, optional merged.dmp and delnodes.dmp`)

	profileCmd.Flags().StringP("cami-report", "C", "", `save CAMI-format profile, suffix .profile is appended when missing`)
	profileCmd.Flags().StringP("sample-id", "s", "", `sample ID in the CAMI report`)
	profileCmd.Flags().StringP("taxonomy-id", "", "", `taxonomy ID in the CAMI report`)
	profileCmd.Flags().StringSliceP("show-rank", "", []string{"superkingdom", "phylum", "class", "order", "family", "genus", "species", "strain"}, `only show taxa of these ranks in the CAMI report`)
}
