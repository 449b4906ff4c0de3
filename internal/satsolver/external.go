package satsolver

import "fmt"

// External names an out-of-process SAT engine selectable via the options
// bundle's sat_solver field (§6): external_lingeling or external_minisat.
// The concrete engines are external collaborators (§1 scope) — this type
// is the contract-shaped seam a cgo binding would be wired into, modeled
// on the constructor/Solve/Assume shape common to cgo SAT bindings (the
// pack's wkschwartz-pigosat and aclements/go-z3 both follow it), without
// fabricating a binding that isn't actually available.
type External struct {
	Name string
}

// NewExternal reports that no external engine is compiled into this
// build. A real deployment replaces this with a cgo-backed Solver for the
// named engine.
func NewExternal(name string) (Solver, error) {
	return nil, fmt.Errorf("satsolver: external engine %q is not compiled into this build", name)
}
