// Command pageviz renders the x86-64 paging hierarchy embedded in a raw
// physical memory capture as a Graphviz DOT document.
//
// Usage:
//
//	pageviz [-out file.dot] <dump-file> <base-phys-addr> <pml4-offset>
//
// The base address is the physical address of byte 0 of the dump and the
// PML4 offset is the byte offset of the top level table inside the dump;
// both accept hex (0x...) or decimal values.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/nelsongillo/pageviz/dotviz"
	"github.com/nelsongillo/pageviz/mem"
	"github.com/nelsongillo/pageviz/walk"
)

var (
	outFile = flag.String("out", "paging_structure.dot", "path of the DOT file to write")
	verbose = flag.Bool("v", false, "enable debug logging")

	colorPath = color.New(color.Bold, color.FgHiGreen).SprintFunc()
	colorAddr = color.New(color.Faint).SprintfFunc()
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[pageviz] error: %s\n", err.Error())
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <dump-file> <base-phys-addr> <pml4-offset>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Example: %s memory.dump 0x1000 0x2000\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

// parseAddr parses a hex (0x-prefixed) or decimal address argument.
func parseAddr(arg string) (uint64, error) {
	value, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %v", arg, err)
	}
	return value, nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 3 {
		usage()
	}

	log.SetHandler(cli.New(os.Stderr))
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	dumpFile := flag.Arg(0)
	base, err := parseAddr(flag.Arg(1))
	if err != nil {
		exit(err)
	}
	pml4Offset, err := parseAddr(flag.Arg(2))
	if err != nil {
		exit(err)
	}

	data, err := os.ReadFile(dumpFile)
	if err != nil {
		exit(err)
	}
	log.WithFields(log.Fields{
		"size": len(data),
		"base": fmt.Sprintf("%#x", base),
	}).Debug("loaded memory dump")

	sink := dotviz.New()
	if err = walk.New(mem.NewDump(data, base), sink).Walk(pml4Offset); err != nil {
		exit(err)
	}

	if err = os.WriteFile(*outFile, []byte(sink.String()), 0644); err != nil {
		exit(err)
	}

	fmt.Printf("wrote %s (PML4 %s in %s)\n", colorPath(*outFile), colorAddr("@ %#x", base+pml4Offset), dumpFile)
}
