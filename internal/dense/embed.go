package dense

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Embed expands the 2^k×2^k matrix u acting on targets into the 2^n×2^n
// operator on the whole register.
//
// u is given in the operation's local convention (bit j of a local index is
// Targets[j]) and the register is little-endian (qubit q is bit 1<<q).
// Targets may come in any order and need not be adjacent: u is first
// re-ordered so its local bits follow ascending target order, then the
// operator is built by a Kronecker walk over a virtual qubit order in which
// the targets are adjacent, and finally the basis is mapped back onto the
// physical qubits.
func Embed(u *mat.CDense, targets []int, n int) (*mat.CDense, error) {
	k := len(targets)
	rows, cols := u.Dims()
	if k == 0 || rows != cols || rows != 1<<k {
		return nil, fmt.Errorf("%w: %d targets for a %dx%d matrix", ErrInvalidTargets, k, rows, cols)
	}
	if k > n {
		return nil, fmt.Errorf("%w: %d targets on a %d-qubit register", ErrInvalidTargets, k, n)
	}
	seen := make(map[int]bool, k)
	for _, q := range targets {
		if q < 0 || q >= n {
			return nil, fmt.Errorf("%w: qubit %d outside [0,%d)", ErrInvalidTargets, q, n)
		}
		if seen[q] {
			return nil, fmt.Errorf("%w: qubit %d repeated", ErrInvalidTargets, q)
		}
		seen[q] = true
	}

	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	canonical := canonicalize(u, targets, sorted)

	lo := sorted[0]
	acc := mat.NewCDense(1, 1, []complex128{1})
	for p := 0; p < n; p++ {
		switch {
		case p == lo:
			acc = kron(canonical, acc)
		case p > lo && p < lo+k:
			// Covered by the block spliced at lo.
		default:
			acc = kron(identity2, acc)
		}
	}

	order := virtualOrder(sorted, n)
	if isIdentityOrder(order) {
		return acc, nil
	}
	return permuteBasis(acc, order), nil
}

var identity2 = mat.NewCDense(2, 2, []complex128{1, 0, 0, 1})

// canonicalize re-orders the local basis of u from the given target order to
// ascending target order.
func canonicalize(u *mat.CDense, targets, sorted []int) *mat.CDense {
	if slices.Equal(targets, sorted) {
		return u
	}
	k := len(targets)
	// perm[j] is the position in targets of the j-th smallest target.
	perm := make([]int, k)
	for j, q := range sorted {
		perm[j] = slices.Index(targets, q)
	}
	old := func(x int) int {
		var y int
		for j := 0; j < k; j++ {
			if x&(1<<j) != 0 {
				y |= 1 << perm[j]
			}
		}
		return y
	}

	dim := 1 << k
	out := mat.NewCDense(dim, dim, nil)
	for r := 0; r < dim; r++ {
		for c := 0; c < dim; c++ {
			out.Set(r, c, u.At(old(r), old(c)))
		}
	}
	return out
}

// virtualOrder lists the physical qubit at each virtual position: qubits
// below the lowest target, then the targets, then the remaining qubits.
func virtualOrder(sorted []int, n int) []int {
	order := make([]int, 0, n)
	for q := 0; q < sorted[0]; q++ {
		order = append(order, q)
	}
	order = append(order, sorted...)
	for q := sorted[0]; q < n; q++ {
		if !slices.Contains(sorted, q) {
			order = append(order, q)
		}
	}
	return order
}

func isIdentityOrder(order []int) bool {
	for p, q := range order {
		if p != q {
			return false
		}
	}
	return true
}

// permuteBasis maps an operator written over virtual positions onto the
// physical basis: out[r][c] = a[v(r)][v(c)], where bit p of v(x) is bit
// order[p] of x.
func permuteBasis(a *mat.CDense, order []int) *mat.CDense {
	dim, _ := a.Dims()
	v := make([]int, dim)
	for x := 0; x < dim; x++ {
		var y int
		for p, q := range order {
			if x&(1<<q) != 0 {
				y |= 1 << p
			}
		}
		v[x] = y
	}

	src := a.RawCMatrix()
	out := mat.NewCDense(dim, dim, nil)
	dst := out.RawCMatrix()
	for r := 0; r < dim; r++ {
		srcRow := src.Data[v[r]*src.Stride:]
		dstRow := dst.Data[r*dst.Stride:]
		for c := 0; c < dim; c++ {
			dstRow[c] = srcRow[v[c]]
		}
	}
	return out
}

// kron returns the Kronecker product a ⊗ b. The factor a occupies the more
// significant bits of the result's indices.
func kron(a, b *mat.CDense) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	ra, rb := a.RawCMatrix(), b.RawCMatrix()

	out := mat.NewCDense(ar*br, ac*bc, nil)
	ro := out.RawCMatrix()
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			x := ra.Data[i*ra.Stride+j]
			if x == 0 {
				continue
			}
			for k := 0; k < br; k++ {
				dst := ro.Data[(i*br+k)*ro.Stride+j*bc:]
				src := rb.Data[k*rb.Stride:]
				for l := 0; l < bc; l++ {
					dst[l] = x * src[l]
				}
			}
		}
	}
	return out
}
