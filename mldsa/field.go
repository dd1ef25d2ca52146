package mldsa

// fieldElement is a coefficient modulo q kept in [0, q). Values that went
// through fieldMul are in Montgomery form.
type fieldElement uint32

// ringElement is an element of Z_q[X]/(X^256+1).
type ringElement [n]fieldElement

// nttElement is a ringElement after ntt.
type nttElement [n]fieldElement

const (
	// qNegInv is -q^-1 mod 2^32.
	qNegInv = 4236238847

	// invN is 256^-1 * 2^64 mod q: a single fieldMul by it scales by 1/256
	// and removes the 2^-32 that nttMul leaves behind.
	invN = 41978
)

// fieldReduceOnce maps a in [0, 2q) to [0, q).
func fieldReduceOnce(a uint32) fieldElement {
	x := a - q
	mask := -(x >> 31)
	return fieldElement(x + mask&q)
}

func fieldAdd(a, b fieldElement) fieldElement {
	return fieldReduceOnce(uint32(a + b))
}

func fieldSub(a, b fieldElement) fieldElement {
	return fieldReduceOnce(uint32(a + q - b))
}

// fieldReduce is Montgomery reduction of a < q*2^32, returning a*2^-32 mod q.
func fieldReduce(a uint64) fieldElement {
	m := uint32(a) * qNegInv
	return fieldReduceOnce(uint32((a + uint64(m)*q) >> 32))
}

// fieldMul returns a*b*2^-32 mod q.
func fieldMul(a, b fieldElement) fieldElement {
	return fieldReduce(uint64(a) * uint64(b))
}

// fieldFromSigned maps x in (-q, q) to [0, q).
func fieldFromSigned(x int32) fieldElement {
	return fieldElement(x + (x>>31)&q)
}

func polyAdd[T ~[n]fieldElement](a, b T) (c T) {
	for i := range a {
		c[i] = fieldAdd(a[i], b[i])
	}
	return c
}

func polySub[T ~[n]fieldElement](a, b T) (c T) {
	for i := range a {
		c[i] = fieldSub(a[i], b[i])
	}
	return c
}
