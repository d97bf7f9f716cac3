package bssrdf

import (
	"math"

	"github.com/df07/go-material-eval/pkg/core"
)

// CatmullRomWeights computes the four spline weights for evaluating a
// Catmull-Rom spline through nodes at x. The weights apply to nodes
// offset..offset+3; zero weights mark out-of-range nodes.
func CatmullRomWeights(nodes []float64, x float64) (int, [4]float64, bool) {
	var w [4]float64
	n := len(nodes)
	if n < 2 || !(x >= nodes[0] && x <= nodes[n-1]) {
		return 0, w, false
	}

	idx := core.FindInterval(n, func(i int) bool { return nodes[i] <= x })
	offset := idx - 1
	x0, x1 := nodes[idx], nodes[idx+1]

	t := (x - x0) / (x1 - x0)
	t2, t3 := t*t, t*t*t

	w[1] = 2*t3 - 3*t2 + 1
	w[2] = -2*t3 + 3*t2

	if idx > 0 {
		w0 := (t3 - 2*t2 + t) * (x1 - x0) / (x1 - nodes[idx-1])
		w[0] = -w0
		w[2] += w0
	} else {
		w0 := t3 - 2*t2 + t
		w[0] = 0
		w[1] -= w0
		w[2] += w0
	}

	if idx+2 < n {
		w3 := (t3 - t2) * (x1 - x0) / (nodes[idx+2] - x0)
		w[1] -= w3
		w[3] = w3
	} else {
		w3 := t3 - t2
		w[1] -= w3
		w[2] += w3
		w[3] = 0
	}
	return offset, w, true
}

// IntegrateCatmullRom integrates the spline through (x, values), writing the
// running integral at each node into cdf and returning the total
func IntegrateCatmullRom(x, values, cdf []float64) float64 {
	n := len(x)
	sum := 0.0
	cdf[0] = 0
	for i := 0; i < n-1; i++ {
		x0, x1 := x[i], x[i+1]
		f0, f1 := values[i], values[i+1]
		width := x1 - x0

		d0, d1 := splineDerivatives(x, values, i, f0, f1, width)
		sum += ((d0-d1)*(1.0/12.0) + (f0+f1)*.5) * width
		cdf[i+1] = sum
	}
	return sum
}

func splineDerivatives(x, values []float64, i int, f0, f1, width float64) (float64, float64) {
	n := len(x)
	d0, d1 := f1-f0, f1-f0
	if i > 0 {
		d0 = width * (f1 - values[i-1]) / (x[i+1] - x[i-1])
	}
	if i+2 < n {
		d1 = width * (values[i+2] - f0) / (x[i+2] - x[i])
	}
	return d0, d1
}

// InvertCatmullRom finds x such that the monotonic spline through (x, values) equals u
func InvertCatmullRom(x, values []float64, u float64) float64 {
	n := len(values)
	if !(u > values[0]) {
		return x[0]
	}
	if !(u < values[n-1]) {
		return x[n-1]
	}

	i := core.FindInterval(n, func(i int) bool { return values[i] <= u })
	x0, x1 := x[i], x[i+1]
	f0, f1 := values[i], values[i+1]
	width := x1 - x0
	d0, d1 := splineDerivatives(x, values, i, f0, f1, width)

	// Newton-bisection on the cubic segment
	a, b, t := 0.0, 1.0, .5
	for {
		if !(t > a && t < b) {
			t = 0.5 * (a + b)
		}
		fhat := evaluatePolynomial(t, f0, d0, -2*d0-d1+3*(f1-f0), d0+d1+2*(f0-f1))
		dfhat := evaluatePolynomial(t, d0, 2*(-2*d0-d1+3*(f1-f0)), 3*(d0+d1+2*(f0-f1)))

		if math.Abs(fhat-u) < 1e-6 || b-a < 1e-6 {
			break
		}
		if fhat-u < 0 {
			a = t
		} else {
			b = t
		}
		t -= (fhat - u) / dfhat
	}
	return x0 + t*width
}

// SampleCatmullRom2D samples the second dimension of a 2D spline-tabulated
// function at first-dimension value alpha. It returns the sample, the
// function value there and its density.
func SampleCatmullRom2D(nodes1, nodes2, values, cdf []float64, alpha, u float64) (float64, float64, float64) {
	offset, weights, ok := CatmullRomWeights(nodes1, alpha)
	if !ok {
		return 0, 0, 0
	}
	size2 := len(nodes2)

	interpolate := func(array []float64, idx int) float64 {
		value := 0.0
		for i := 0; i < 4; i++ {
			if weights[i] != 0 {
				value += array[(offset+i)*size2+idx] * weights[i]
			}
		}
		return value
	}

	maximum := interpolate(cdf, size2-1)
	if maximum <= 0 {
		return 0, 0, 0
	}
	u *= maximum
	idx := core.FindInterval(size2, func(i int) bool { return interpolate(cdf, i) <= u })

	f0, f1 := interpolate(values, idx), interpolate(values, idx+1)
	x0, x1 := nodes2[idx], nodes2[idx+1]
	width := x1 - x0

	d0, d1 := f1-f0, f1-f0
	if idx > 0 {
		d0 = width * (f1 - interpolate(values, idx-1)) / (x1 - nodes2[idx-1])
	}
	if idx+2 < size2 {
		d1 = width * (interpolate(values, idx+2) - f0) / (nodes2[idx+2] - x0)
	}

	u = (u - interpolate(cdf, idx)) / width

	var t float64
	if f0 != f1 {
		t = (f0 - core.SafeSqrt(math.Max(0, f0*f0+2*u*(f1-f0)))) / (f0 - f1)
	} else {
		t = u / f0
	}

	a, b := 0.0, 1.0
	var fhatIntegral, fhat float64
	for {
		if !(t >= a && t <= b) {
			t = 0.5 * (a + b)
		}
		fhatIntegral = t * (f0 + t*(.5*d0+t*((1.0/3.0)*(-2*d0-d1)+f1-f0+t*(.25*(d0+d1)+.5*(f0-f1)))))
		fhat = f0 + t*(d0+t*(-2*d0-d1+3*(f1-f0)+t*(d0+d1+2*(f0-f1))))

		if math.Abs(fhatIntegral-u) < 1e-6 || b-a < 1e-6 {
			break
		}
		if fhatIntegral-u < 0 {
			a = t
		} else {
			b = t
		}
		t -= (fhatIntegral - u) / fhat
	}
	return x0 + width*t, fhat, fhat / maximum
}

func evaluatePolynomial(t float64, c ...float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*t + c[i]
	}
	return result
}
