package circuit

import (
	"fmt"
	"strings"
)

// Operation is a single gate instance of a loaded circuit.
//
// Targets lists every qubit the gate acts on in operand order, controls
// included: "cx q[0], q[2]" has Targets [0 2]. Gate matrices use the local
// convention that bit j of a local basis index is the state of Targets[j].
type Operation struct {
	Name    string
	Targets []int
	Params  []float64
	Unitary bool
}

// Arity returns the number of qubits the operation acts on.
func (o Operation) Arity() int {
	return len(o.Targets)
}

// String renders the operation the way it appeared in QASM.
func (o Operation) String() string {
	var sb strings.Builder
	sb.WriteString(o.Name)
	if len(o.Params) > 0 {
		parts := make([]string, len(o.Params))
		for i, p := range o.Params {
			parts[i] = FormatAngle(p)
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(parts, ", "))
	}
	for i, q := range o.Targets {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "q[%d]", q)
	}
	return sb.String()
}

// Circuit is an ordered gate sequence over a register of NumQubits qubits.
type Circuit struct {
	Name      string
	NumQubits int
	Ops       []Operation
}

// UnitaryCount returns how many operations take part in unitary evolution.
func (c *Circuit) UnitaryCount() int {
	n := 0
	for _, op := range c.Ops {
		if op.Unitary {
			n++
		}
	}
	return n
}

// MaxArity returns the widest unitary operation in the circuit.
func (c *Circuit) MaxArity() int {
	widest := 0
	for _, op := range c.Ops {
		if op.Unitary {
			widest = max(widest, op.Arity())
		}
	}
	return widest
}

// gateSpec describes the operand and parameter counts of a known gate.
type gateSpec struct {
	qubits int
	params int
}

// gateSpecs lists the gates the QASM loader accepts, keyed by canonical name.
var gateSpecs = map[string]gateSpec{
	"id":    {1, 0},
	"h":     {1, 0},
	"x":     {1, 0},
	"y":     {1, 0},
	"z":     {1, 0},
	"s":     {1, 0},
	"sdg":   {1, 0},
	"t":     {1, 0},
	"tdg":   {1, 0},
	"sx":    {1, 0},
	"sxdg":  {1, 0},
	"rx":    {1, 1},
	"ry":    {1, 1},
	"rz":    {1, 1},
	"p":     {1, 1},
	"u1":    {1, 1},
	"u2":    {1, 2},
	"u3":    {1, 3},
	"cx":    {2, 0},
	"cy":    {2, 0},
	"cz":    {2, 0},
	"ch":    {2, 0},
	"swap":  {2, 0},
	"crx":   {2, 1},
	"cry":   {2, 1},
	"crz":   {2, 1},
	"cp":    {2, 1},
	"ccx":   {3, 0},
	"cswap": {3, 0},
}

// gateAliases maps alternative spellings onto canonical gate names.
var gateAliases = map[string]string{
	"i":       "id",
	"cnot":    "cx",
	"u":       "u3",
	"cu1":     "cp",
	"cphase":  "cp",
	"toffoli": "ccx",
	"fredkin": "cswap",
}

// CanonicalName normalises a gate mnemonic and reports whether it is known.
func CanonicalName(name string) (string, bool) {
	name = strings.ToLower(name)
	if alias, ok := gateAliases[name]; ok {
		name = alias
	}
	_, ok := gateSpecs[name]
	return name, ok
}

// ExpectedArity reports how many qubits the named gate acts on.
func ExpectedArity(name string) (int, bool) {
	canonical, ok := CanonicalName(name)
	if !ok {
		return 0, false
	}
	return gateSpecs[canonical].qubits, true
}
