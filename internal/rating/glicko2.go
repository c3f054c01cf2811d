// internal/rating/glicko2.go
package rating

import "math"

const (
	// glickoScale converts between the 1500-based scale and Glicko-2's internal scale.
	glickoScale = 173.7178
	// BaseElo is the starting rating.
	BaseElo = 1500.0
	// BaseRD is the starting rating deviation.
	BaseRD = 350.0
	// BaseSigma is the starting volatility.
	BaseSigma = 0.06
	// tau constrains volatility changes.
	tau = 0.5
	// epsilon is the convergence tolerance of the volatility iteration.
	epsilon = 0.000001
)

// Rating is a Glicko-2 rating in internal units.
type Rating struct {
	Mu    float64
	Phi   float64
	Sigma float64
}

// New converts a 1500-based rating and deviation into a Rating.
func New(elo, rd, sigma float64) Rating {
	return Rating{
		Mu:    (elo - BaseElo) / glickoScale,
		Phi:   rd / glickoScale,
		Sigma: sigma,
	}
}

// Default is an unrated participant.
func Default() Rating {
	return New(BaseElo, BaseRD, BaseSigma)
}

// Elo returns the rating on the 1500-based scale.
func (r Rating) Elo() float64 {
	return r.Mu*glickoScale + BaseElo
}

// RD returns the rating deviation on the 1500-based scale.
func (r Rating) RD() float64 {
	return r.Phi * glickoScale
}

// Update applies one rating period against opp with score in [0, 1].
func Update(r, opp Rating, score float64) Rating {
	gOpp := g(opp.Phi)
	e := expected(r.Mu, opp.Mu, opp.Phi)

	v := 1.0 / (gOpp * gOpp * e * (1 - e))
	delta := v * gOpp * (score - e)

	sigma := volatility(r, v, delta)
	phiStar := math.Sqrt(r.Phi*r.Phi + sigma*sigma)
	phi := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	return Rating{
		Mu:    r.Mu + phi*phi*gOpp*(score-e),
		Phi:   phi,
		Sigma: sigma,
	}
}

// volatility finds the new sigma with the Illinois variant of regula falsi.
func volatility(r Rating, v, delta float64) float64 {
	a := math.Log(r.Sigma * r.Sigma)
	fn := func(x float64) float64 {
		ex := math.Exp(x)
		d := r.Phi*r.Phi + v + ex
		return ex*(delta*delta-r.Phi*r.Phi-v-ex)/(2*d*d) - (x-a)/(tau*tau)
	}

	A := a
	var B float64
	if delta*delta > r.Phi*r.Phi+v {
		B = math.Log(delta*delta - r.Phi*r.Phi - v)
	} else {
		k := 1.0
		for fn(a-k*tau) < 0 {
			k++
		}
		B = a - k*tau
	}

	fA, fB := fn(A), fn(B)
	for i := 0; i < 100 && math.Abs(B-A) > epsilon; i++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := fn(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}

func g(phi float64) float64 {
	return 1.0 / math.Sqrt(1.0+3.0*phi*phi/(math.Pi*math.Pi))
}

func expected(mu, muOpp, phiOpp float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phiOpp)*(mu-muOpp)))
}
