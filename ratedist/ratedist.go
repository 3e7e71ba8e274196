/*
Package ratedist discretizes gamma and lognormal distributions into a
fixed number of equal-probability-mass rate categories, used for both
the among-site base-rate categories (μ1..μk) and the per-ORF dN/dS (ω)
classes.

Each category's value is the mean of the distribution restricted to its
bin, not merely the bin's midpoint quantile, following the standard
"discretized gamma" construction used to model rate heterogeneity. For
both distributions that conditional mean has a closed form in terms of
the distribution's own CDF (gamma) or the standard normal CDF
(lognormal), computed here with gonum's gamma CDF and math.Erfc
respectively rather than numerical quadrature.
*/
package ratedist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// GammaCategories returns n representative values from a Gamma(shape,
// rate=shape) distribution (mean 1, the conventional parameterization
// for a multiplicative rate-heterogeneity factor): [0,1) is partitioned
// into n equal-probability intervals via the quantile function, and
// each category's value is n times the integral of x·pdf(x) over its
// interval, the last interval running to +∞.
func GammaCategories(shape float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	base := distuv.Gamma{Alpha: shape, Beta: shape}
	// x*f(x; a, b) = (a/b)*f(x; a+1, b), so the partial expectation
	// integral reduces to a CDF of the shape+1 distribution.
	shifted := distuv.Gamma{Alpha: shape + 1, Beta: shape}
	const mean = 1.0 // Gamma(shape, rate=shape) always has mean shape/rate == 1

	quantiles := make([]float64, n)
	for i := 0; i < n; i++ {
		quantiles[i] = base.Quantile(float64(i) / float64(n))
	}

	categories := make([]float64, n)
	for i := 0; i < n-1; i++ {
		categories[i] = float64(n) * mean * (shifted.CDF(quantiles[i+1]) - shifted.CDF(quantiles[i]))
	}
	categories[n-1] = float64(n) * mean * (1 - shifted.CDF(quantiles[n-1]))
	return categories
}

// LognormalCategories returns n representative values from a
// LogNormal distribution parameterized per spec: shape parameter s =
// shape, scale = exp(shape²/2) (distuv.LogNormal's Mu is the log of
// that scale), using the same equal-probability-bin-mean construction
// as GammaCategories.
func LognormalCategories(shape float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	sigma := shape
	mu := 0.5 * shape * shape // scale = exp(mu) = exp(shape^2/2), per spec
	dist := distuv.LogNormal{Mu: mu, Sigma: sigma}
	mean := math.Exp(mu + sigma*sigma/2)

	quantiles := make([]float64, n)
	for i := 0; i < n; i++ {
		quantiles[i] = dist.Quantile(float64(i) / float64(n))
	}

	partialExpectation := func(q float64) float64 {
		if q <= 0 {
			return 0
		}
		z := (math.Log(q) - mu - sigma*sigma) / sigma
		return mean * standardNormalCDF(z)
	}

	categories := make([]float64, n)
	for i := 0; i < n-1; i++ {
		categories[i] = float64(n) * (partialExpectation(quantiles[i+1]) - partialExpectation(quantiles[i]))
	}
	categories[n-1] = float64(n) * (mean - partialExpectation(quantiles[n-1]))
	return categories
}

func standardNormalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
