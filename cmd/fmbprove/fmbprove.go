// Command fmbprove is a small driver over the finite model builder and
// the bundled SAT solver, in the spirit of the teacher's bare saturday
// CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/finiteproof/fmb/internal/dimacs"
	"github.com/finiteproof/fmb/internal/fmb"
	"github.com/finiteproof/fmb/internal/fmbctx"
	"github.com/finiteproof/fmb/internal/presolver"
	"github.com/finiteproof/fmb/internal/satsolver"
	"github.com/finiteproof/fmb/internal/toyproblems"
)

func main() {
	log.SetFlags(0)

	mode := flag.String("mode", "dimacs", `"dimacs" to solve a CNF file directly, "fmb" to run the finite model builder over a built-in toy problem`)
	problem := flag.String("problem", "", "toy problem name for -mode=fmb (see -list)")
	list := flag.Bool("list", false, "list the built-in toy problems for -mode=fmb and exit")
	maxSize := flag.Int("max-size", 0, "cap the finite model builder's domain size (0: derive a safe bound from the signature)")
	spider := flag.Bool("spider", false, "machine-readable, quiet output")
	verbose := flag.Bool("v", false, "verbose mode (dimacs mode only)")
	timeout := flag.Duration("timeout", 0, "abort after this long (0: no deadline)")
	emitDIMACS := flag.Bool("emit-dimacs", false, "dump each candidate size's ground SAT instance (DIMACS CNF, to stderr) for -mode=fmb")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `fmbprove: a toy saturation/finite-model-building driver.

Usage:

  fmbprove [-mode dimacs] [-v] [input.cnf]
  fmbprove -mode fmb -problem NAME [-max-size N]
  fmbprove -mode fmb -list

In dimacs mode, fmbprove reads a single DIMACS CNF problem (stdin if no
file is given) and reports SAT/UNSAT, same as a bare SAT solver.

In fmb mode, fmbprove runs the finite model builder over one of the
built-in toy clause sets and reports either a reconstructed model or a
refutation.
`)
	}
	flag.Parse()

	if *list {
		names := toyproblems.Names()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	switch *mode {
	case "dimacs":
		runDIMACS(*verbose)
	case "fmb":
		runFMB(*problem, *maxSize, *spider, *timeout, *emitDIMACS)
	default:
		log.Fatalf("unknown -mode %q", *mode)
	}
}

func runDIMACS(verbose bool) {
	var r io.Reader = os.Stdin
	if flag.NArg() >= 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}

	clauses, err := dimacs.Parse(r)
	if err != nil {
		log.Fatalln("Error reading input file as DIMACS CNF:", err)
	}

	maxVar := 0
	for _, cls := range clauses {
		for _, lit := range cls {
			if v := lit; v > maxVar || -v > maxVar {
				if v < 0 {
					v = -v
				}
				if v > maxVar {
					maxVar = v
				}
			}
		}
	}

	inner := satsolver.NewCDCL()
	solver := presolver.New(inner)
	solver.EnsureVarCount(maxVar)
	if err := solver.AddClauses(clauses, false); err != nil {
		log.Fatalln("solver rejected input:", err)
	}
	status := solver.Solve()

	if verbose {
		fmt.Fprintf(os.Stderr, "vars: %d, clauses: %d, status: %s\n", maxVar, len(clauses), status)
	}

	if status != satsolver.StatusSAT {
		fmt.Println("UNSAT")
		return
	}
	fmt.Println("SAT")
	for i := 1; i <= maxVar; i++ {
		if i > 1 {
			fmt.Print(" ")
		}
		v := i
		if solver.Assignment(i) == satsolver.False {
			v = -v
		}
		fmt.Print(v)
	}
	fmt.Println()
}

func runFMB(problemName string, maxSize int, spider bool, timeout time.Duration, emitDIMACS bool) {
	if problemName == "" {
		log.Fatal("-mode fmb requires -problem NAME (see -list)")
	}
	clauses, ok := toyproblems.Lookup(problemName)
	if !ok {
		log.Fatalf("unknown toy problem %q (see -list)", problemName)
	}

	opts := fmbctx.DefaultOptions()
	opts.MaxModelSize = maxSize
	if spider {
		opts.Mode = fmbctx.ModeSpider
	}
	if emitDIMACS {
		opts.EmitDIMACS = true
		opts.DIMACSOut = os.Stderr
	}
	ctx := fmbctx.New(opts)
	if timeout > 0 {
		ctx = ctx.WithDeadline(fmbctx.After(time.Now().Add(timeout)))
	}

	b, err := fmb.New(ctx, clauses)
	if err != nil {
		if kind, ok := fmbctx.KindOf(err); ok {
			log.Fatalf("%s: %v", kind, err)
		}
		log.Fatal(err)
	}
	res, err := b.Run()
	if err != nil {
		if kind, ok := fmbctx.KindOf(err); ok {
			log.Fatalf("%s: %v", kind, err)
		}
		log.Fatal(err)
	}

	switch res.Status {
	case fmb.StatusSatisfiable:
		fmt.Printf("%% SZS status Satisfiable for %s : domain size %d\n", problemName, res.Size)
		fmt.Print(res.Model.Render())
	case fmb.StatusUnsatisfiable:
		fmt.Printf("%% SZS status Unsatisfiable for %s : no model up to size %d\n", problemName, res.Size)
	default:
		fmt.Printf("%% SZS status GaveUp for %s : no model found up to size %d\n", problemName, res.Size)
	}
}
