// Package dimacs implements a bit-exact DIMACS CNF codec: Parse for the
// `-mode=dimacs` CLI entry point (a bare SAT solver over an externally
// supplied instance, same as the teacher), and Write wired into
// internal/fmb's search loop as the §6 EmitDIMACS knob — each candidate
// domain size's own ground SAT instance, dumped as it is built, rather
// than a codec nothing in the pipeline calls.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Parse parses text in the DIMACS CNF format.
//
// For convenience, a few non-standard variations are accepted:
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in
//     the preamble.
//   - The problem line may be missing.
//
// Unlike a fail-fast scanner, Parse keeps going past a malformed line
// (other than the structural problem-line misplacements, which abort
// immediately since nothing downstream of them is recoverable) and
// aggregates every diagnostic it finds into one *multierror.Error, the
// same aggregate-rather-than-first-wins contract
// internal/satsolver.CDCL.AddClauses uses — a whole malformed input is
// reported in one pass instead of round-tripping the parser once per bad
// line.
func Parse(r io.Reader) ([][]int, error) {
	var problem struct {
		vars    int
		clauses int
	}
	var clauses [][]int
	var clause []int
	var errs *multierror.Error
	lineNo := 0
	s := bufio.NewScanner(r)
	for s.Scan() {
		lineNo++
		line := s.Text()
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 {
				return nil, fmt.Errorf("line %d: problem line appears after clauses", lineNo)
			}
			if problem.vars > 0 {
				return nil, fmt.Errorf("line %d: multiple problem lines", lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 {
				errs = multierror.Append(errs, fmt.Errorf("line %d: malformed problem line %q", lineNo, line))
				continue
			}
			if fields[0] != "p" {
				errs = multierror.Append(errs, fmt.Errorf("line %d: problem line starts with unexpected signifier %q", lineNo, fields[0]))
				continue
			}
			if fields[1] != "cnf" {
				errs = multierror.Append(errs, fmt.Errorf("line %d: only cnf supported; got %q", lineNo, fields[1]))
				continue
			}
			vars, err := strconv.Atoi(fields[2])
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("line %d: malformed #vars in problem line: %s", lineNo, err))
				continue
			}
			numClauses, err := strconv.Atoi(fields[3])
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("line %d: malformed #clauses in problem line: %s", lineNo, err))
				continue
			}
			if vars < 0 {
				errs = multierror.Append(errs, fmt.Errorf("line %d: invalid #vars %d", lineNo, vars))
				continue
			}
			if numClauses < 0 {
				errs = multierror.Append(errs, fmt.Errorf("line %d: invalid #clauses %d", lineNo, numClauses))
				continue
			}
			problem.vars, problem.clauses = vars, numClauses
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("line %d: invalid variable: %s", lineNo, err))
				continue
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
			} else {
				clause = append(clause, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	if problem.vars > 0 {
		vars := make(map[int]struct{})
		for _, clause := range clauses {
			for _, v := range clause {
				if v < 0 {
					v = -v
				}
				if v > problem.vars {
					errs = multierror.Append(errs, fmt.Errorf("formula contains var %d, but problem line asserts %d vars (only vars in [1, %d] expected)",
						v, problem.vars, problem.vars))
					continue
				}
				vars[v] = struct{}{}
			}
		}
		if len(vars) > problem.vars {
			errs = multierror.Append(errs, fmt.Errorf("problem line specifies %d vars, but there are %d", problem.vars, len(vars)))
		}
		if len(clauses) != problem.clauses {
			errs = multierror.Append(errs, fmt.Errorf("problem line specifies %d clauses, but there are %d", problem.clauses, len(clauses)))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return clauses, nil
}

// Write emits clauses in the classical DIMACS CNF format: a "p cnf V C"
// problem line sized from the data (V is the largest variable index seen,
// C the clause count) followed by one line per clause, each literal
// space-separated and terminated with " 0".
func Write(w io.Writer, clauses [][]int) error {
	bw := bufio.NewWriter(w)
	maxVar := 0
	for _, cls := range clauses {
		for _, lit := range cls {
			v := lit
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", maxVar, len(clauses)); err != nil {
		return err
	}
	for _, cls := range clauses {
		for _, lit := range cls {
			if _, err := fmt.Fprintf(bw, "%d ", lit); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("0\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
