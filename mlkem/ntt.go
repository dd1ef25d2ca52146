package mlkem

// zetas[k] = 17^BitRev7(k) mod q, where 17 is a primitive 256th root of
// unity mod q.
var zetas = [128]fieldElement{
	1, 1729, 2580, 3289, 2642, 630, 1897, 848,
	1062, 1919, 193, 797, 2786, 3260, 569, 1746,
	296, 2447, 1339, 1476, 3046, 56, 2240, 1333,
	1426, 2094, 535, 2882, 2393, 2879, 1974, 821,
	289, 331, 3253, 1756, 1197, 2304, 2277, 2055,
	650, 1977, 2513, 632, 2865, 33, 1320, 1915,
	2319, 1435, 807, 452, 1438, 2868, 1534, 2402,
	2647, 2617, 1481, 648, 2474, 3110, 1227, 910,
	17, 2761, 583, 2649, 1637, 723, 2288, 1100,
	1409, 2662, 3281, 233, 756, 2156, 3015, 3050,
	1703, 1651, 2789, 1789, 1847, 952, 1461, 2687,
	939, 2308, 2437, 2388, 733, 2337, 268, 641,
	1584, 2298, 2037, 3220, 375, 2549, 2090, 1645,
	1063, 319, 2773, 757, 2099, 561, 2466, 2594,
	2804, 1092, 403, 1026, 1143, 2150, 2775, 886,
	1722, 1212, 1874, 1029, 2110, 2935, 885, 2154,
}

// invN128 is 128^-1 mod q, the scaling applied after the inverse transform.
const invN128 = 3303

// ntt performs the forward Number Theoretic Transform.
// Implements FIPS 203 Algorithm 9.
func ntt(f ringElement) nttElement {
	k := 1
	for length := 128; length >= 2; length /= 2 {
		for start := 0; start < n; start += 2 * length {
			zeta := zetas[k]
			k++
			fLo := f[start : start+length]
			fHi := f[start+length : start+2*length]
			for j := 0; j < length; j++ {
				t := fieldMul(zeta, fHi[j])
				fHi[j] = fieldSub(fLo[j], t)
				fLo[j] = fieldAdd(fLo[j], t)
			}
		}
	}
	return nttElement(f)
}

// invNTT performs the inverse Number Theoretic Transform.
// Implements FIPS 203 Algorithm 10.
func invNTT(f nttElement) ringElement {
	k := 127
	for length := 2; length <= 128; length *= 2 {
		for start := 0; start < n; start += 2 * length {
			zeta := zetas[k]
			k--
			fLo := f[start : start+length]
			fHi := f[start+length : start+2*length]
			for j := 0; j < length; j++ {
				t := fLo[j]
				fLo[j] = fieldAdd(t, fHi[j])
				fHi[j] = fieldMulSub(zeta, fHi[j], t)
			}
		}
	}
	for i := range f {
		f[i] = fieldMul(f[i], invN128)
	}
	return ringElement(f)
}

// nttMul multiplies two NTT-domain polynomials as 128 degree-one products
// modulo X^2 - gamma, where gamma alternates between zeta and -zeta.
// Implements FIPS 203 Algorithms 11 and 12.
func nttMul(f, g nttElement) nttElement {
	var h nttElement
	for i := 0; i < n; i += 4 {
		gamma := zetas[64+i/4]
		h[i], h[i+1] = baseCaseMultiply(f[i], f[i+1], g[i], g[i+1], gamma)
		h[i+2], h[i+3] = baseCaseMultiply(f[i+2], f[i+3], g[i+2], g[i+3], q-gamma)
	}
	return h
}

func baseCaseMultiply(a0, a1, b0, b1, gamma fieldElement) (c0, c1 fieldElement) {
	c0 = fieldAddMul(a0, b0, fieldMul(a1, b1), gamma)
	c1 = fieldAddMul(a0, b1, a1, b0)
	return c0, c1
}

// mulAcc returns acc + a*b in the NTT domain.
func mulAcc(acc, a, b nttElement) nttElement {
	return polyAdd(acc, nttMul(a, b))
}
