package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex    = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*(\w+)\s*==\s*(\d+)\s*\)\s*(.+)$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex = regexp.MustCompile(`^(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
)

// register is a named slice of the flat qubit index space.
type register struct {
	offset int
	size   int
}

// qasmParser turns OpenQASM 2 source into a Circuit.
type qasmParser struct {
	circuit *Circuit
	qregs   map[string]register
	cregs   map[string]int
}

// ParseQASM parses OpenQASM 2 source text.
//
// Multiple quantum registers are flattened in declaration order. A gate
// applied to a whole register broadcasts to each of its qubits.
func ParseQASM(src string) (*Circuit, error) {
	p := &qasmParser{
		circuit: &Circuit{},
		qregs:   make(map[string]register),
		cregs:   make(map[string]int),
	}

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		// A line may carry several statements.
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return nil, &ParseError{Line: lineNo, Text: stmt, Msg: err.Error()}
			}
		}
	}

	if p.circuit.NumQubits == 0 {
		return nil, &ParseError{Line: 0, Text: "", Msg: "no qreg declared"}
	}
	return p.circuit, nil
}

func (p *qasmParser) statement(stmt string) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), strings.HasPrefix(stmt, "include"):
		return nil
	case strings.HasPrefix(stmt, "qreg"):
		m := qregRegex.FindStringSubmatch(stmt)
		if m == nil {
			return fmt.Errorf("malformed qreg")
		}
		if _, dup := p.qregs[m[1]]; dup {
			return fmt.Errorf("duplicate register %s", m[1])
		}
		size, _ := strconv.Atoi(m[2])
		p.qregs[m[1]] = register{offset: p.circuit.NumQubits, size: size}
		p.circuit.NumQubits += size
		return nil
	case strings.HasPrefix(stmt, "creg"):
		m := cregRegex.FindStringSubmatch(stmt)
		if m == nil {
			return fmt.Errorf("malformed creg")
		}
		size, _ := strconv.Atoi(m[2])
		p.cregs[m[1]] = size
		return nil
	case strings.HasPrefix(stmt, "gate "), strings.HasPrefix(stmt, "opaque "):
		return fmt.Errorf("custom gate definitions are not supported")
	}

	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		return p.measure(m[1])
	}

	if m := ifRegex.FindStringSubmatch(stmt); m != nil {
		if _, ok := p.cregs[m[1]]; !ok {
			return fmt.Errorf("unknown classical register %s", m[1])
		}
		if mm := measureRegex.FindStringSubmatch(m[3]); mm != nil {
			return p.measure(mm[1])
		}
		// Classically controlled gates do not take part in unitary evolution.
		return p.gate(m[3], false)
	}

	return p.gate(stmt, true)
}

// measure appends one measurement per qubit of operand.
func (p *qasmParser) measure(operand string) error {
	qubits, err := p.operand(operand)
	if err != nil {
		return err
	}
	for _, q := range qubits {
		p.add(Operation{Name: "measure", Targets: []int{q}})
	}
	return nil
}

// gate parses "name(params) a, b, ..." and appends the resulting operations.
func (p *qasmParser) gate(stmt string, unitary bool) error {
	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("unrecognised statement")
	}
	raw := strings.ToLower(m[1])

	operands := strings.Split(m[3], ",")
	groups := make([][]int, len(operands))
	for i, o := range operands {
		qubits, err := p.operand(o)
		if err != nil {
			return err
		}
		groups[i] = qubits
	}

	switch raw {
	case "barrier":
		var all []int
		for _, g := range groups {
			all = append(all, g...)
		}
		p.add(Operation{Name: "barrier", Targets: all})
		return nil
	case "reset":
		for _, g := range groups {
			for _, q := range g {
				p.add(Operation{Name: "reset", Targets: []int{q}})
			}
		}
		return nil
	}

	name, ok := CanonicalName(raw)
	if !ok {
		return fmt.Errorf("unknown gate %s", raw)
	}
	spec := gateSpecs[name]
	if len(groups) != spec.qubits {
		return fmt.Errorf("gate %s expects %d operands, got %d", name, spec.qubits, len(groups))
	}

	var params []float64
	if strings.TrimSpace(m[2]) != "" {
		for _, expr := range strings.Split(m[2], ",") {
			v, err := ParseAngle(expr)
			if err != nil {
				return err
			}
			params = append(params, v)
		}
	}
	if len(params) != spec.params {
		return fmt.Errorf("gate %s expects %d parameters, got %d", name, spec.params, len(params))
	}

	targetSets, err := broadcast(groups)
	if err != nil {
		return err
	}
	for _, targets := range targetSets {
		if hasDuplicate(targets) {
			return fmt.Errorf("gate %s uses a qubit twice", name)
		}
		p.add(Operation{Name: name, Targets: targets, Params: params, Unitary: unitary})
	}
	return nil
}

// operand resolves "q[3]" to a single qubit and "q" to every qubit of q.
func (p *qasmParser) operand(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	m := operandRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("bad operand %q", s)
	}
	reg, ok := p.qregs[m[1]]
	if !ok {
		return nil, fmt.Errorf("unknown register %s", m[1])
	}
	if m[2] == "" {
		qubits := make([]int, reg.size)
		for i := range qubits {
			qubits[i] = reg.offset + i
		}
		return qubits, nil
	}
	idx, _ := strconv.Atoi(m[2])
	if idx >= reg.size {
		return nil, fmt.Errorf("index %d out of range for %s[%d]", idx, m[1], reg.size)
	}
	return []int{reg.offset + idx}, nil
}

func (p *qasmParser) add(op Operation) {
	p.circuit.Ops = append(p.circuit.Ops, op)
}

// broadcast expands register operands: every whole-register operand must
// have the same size, single qubits are repeated.
func broadcast(groups [][]int) ([][]int, error) {
	width := 1
	for _, g := range groups {
		if len(g) == 1 {
			continue
		}
		if width != 1 && len(g) != width {
			return nil, fmt.Errorf("register operands differ in size")
		}
		width = len(g)
	}
	out := make([][]int, width)
	for i := range out {
		targets := make([]int, len(groups))
		for j, g := range groups {
			if len(g) == 1 {
				targets[j] = g[0]
			} else {
				targets[j] = g[i]
			}
		}
		out[i] = targets
	}
	return out, nil
}

func hasDuplicate(qubits []int) bool {
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if seen[q] {
			return true
		}
		seen[q] = true
	}
	return false
}
