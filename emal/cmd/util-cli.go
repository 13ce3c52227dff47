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
	"os"

	"github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/shenwei356/util/cliutil"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("emal")

var logFormat = logging.MustStringFormatter(`%{color}%{time:15:04:05.000} [%{level:.4s}]%{color:reset} %{message}`)
var logFormatFile = logging.MustStringFormatter(`%{time:15:04:05.000} [%{level:.4s}] %{message}`)

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, logFormat))
}

// addLog tees log messages into a file. The returned file handle
// should be closed by the caller after the command finishes.
func addLog(logfile string, verbose bool) *os.File {
	fh, err := os.Create(logfile)
	checkError(err)

	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	backendFile := logging.NewLogBackend(fh, "", 0)

	b1 := logging.NewBackendFormatter(backend, logFormat)
	b2 := logging.NewBackendFormatter(backendFile, logFormatFile)

	if verbose {
		logging.SetBackend(b1, b2)
	} else {
		logging.SetBackend(b2)
	}

	return fh
}

func checkError(err error) {
	if err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

func isStdin(file string) bool {
	return file == "-"
}

func isStdout(file string) bool {
	return file == "-"
}

func getFileListFromArgsAndFile(cmd *cobra.Command, args []string, checkFileFromArgs bool, flag string, checkFileFromFile bool) []string {
	infileList := cliutil.GetFlagString(cmd, flag)
	files := cliutil.GetFileList(args, checkFileFromArgs)
	if infileList != "" {
		_files, err := cliutil.GetFileListFromFile(infileList, checkFileFromFile)
		checkError(err)
		if len(_files) == 0 {
			log.Warningf("no files found in file list: %s", infileList)
			return files
		}

		if len(files) == 1 && isStdin(files[0]) {
			return _files
		}
		files = append(files, _files...)
	}
	return files
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	return cliutil.GetFlagBool(cmd, flag)
}

func getFlagString(cmd *cobra.Command, flag string) string {
	return cliutil.GetFlagString(cmd, flag)
}

func getFlagStringSlice(cmd *cobra.Command, flag string) []string {
	return cliutil.GetFlagStringSlice(cmd, flag)
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	return cliutil.GetFlagInt(cmd, flag)
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	return cliutil.GetFlagPositiveInt(cmd, flag)
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	return cliutil.GetFlagNonNegativeInt(cmd, flag)
}

func getFlagFloat64(cmd *cobra.Command, flag string) float64 {
	return cliutil.GetFlagFloat64(cmd, flag)
}

func getFlagPositiveFloat64(cmd *cobra.Command, flag string) float64 {
	return cliutil.GetFlagPositiveFloat64(cmd, flag)
}

func getFlagNonNegativeFloat64(cmd *cobra.Command, flag string) float64 {
	return cliutil.GetFlagNonNegativeFloat64(cmd, flag)
}
