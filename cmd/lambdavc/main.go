// Command lambdavc is the fragment-shader-language compiler CLI.
//
// Usage:
//
//	lambdavc [-o file] <source>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lambdav/lambdav"
)

var output = flag.String("o", "test.spv", "output file")

func main() {
	flag.Usage = usage
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(2)
	}

	spirvBytes, err := lambdav.Compile(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(3)
	}

	if err := os.WriteFile(*output, spirvBytes, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", inputPath, *output, len(spirvBytes))
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lambdavc [options] <source>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}
