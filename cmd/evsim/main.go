// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command evsim runs a part from the evsim library on a test bench.
//
// Usage:
//
//	evsim -bench bench.yaml [-trace] [-max-steps N]
//
// A bench file names a part and the files that drive it:
//
//	part: rom       # part name, optionally followed by a size, as in and4 or mux8
//	size: 3         # default port width (address width for memories)
//	word: 8         # word size of ROM and RAM
//	image: rom.hex  # ROM image
//	vectors: rom.vec
//	max_steps: 1000
//
// With a vectors file, evsim checks the part against every row and reports
// mismatches. Otherwise it prints the state of the part's ports.
//
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/evsim"
)

var (
	benchFile string
	trace     bool
	maxSteps  int
)

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.StringVar(&benchFile, "bench", "", "bench file `name`")
	flag.BoolVar(&trace, "trace", false, "log every part update to stderr")
	flag.IntVar(&maxSteps, "max-steps", 0, "maximum number of events per run (overrides the bench file)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s -bench bench.yaml [-trace] [-max-steps N]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nparts: %s\n", strings.Join(partNames(), " "))
	}
}

func evsimMain() int {
	flag.Parse()
	if benchFile == "" || flag.NArg() != 0 {
		flag.Usage()
		return 2
	}
	b, err := loadBench(benchFile)
	if err != nil {
		log.Println(err)
		return 1
	}
	if maxSteps > 0 {
		b.MaxSteps = maxSteps
	}

	u := evsim.NewUpdater()
	if trace {
		u.Logger = log.New(os.Stderr, "trace: ", 0)
	}
	r, err := b.run(u)
	if err != nil {
		log.Println(err)
		return 1
	}
	r.report(os.Stdout, isTerminal(int(os.Stdout.Fd())))
	if len(r.Mismatches) > 0 {
		return 1
	}
	return 0
}

func main() {
	os.Exit(evsimMain())
}
