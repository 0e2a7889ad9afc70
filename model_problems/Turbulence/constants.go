package Turbulence

import "math"

// EPS guards the axisymmetric terms on the symmetry axis
const EPS = 1.e-16

type SAConstants struct {
	Cb1, Cb2, Sigma, Kappa float64
	Cw1, Cw2, Cw3, Cv1     float64
	Ct3, Ct4, Cr1          float64
	// Derived
	K2, Cb2Sigma, Cw3_6, Cv1_3 float64
}

func NewSAConstants() (c SAConstants) {
	c = SAConstants{
		Cb1:   0.1355,
		Cb2:   0.622,
		Sigma: 2. / 3.,
		Kappa: 0.41,
		Cw2:   0.3,
		Cw3:   2.0,
		Cv1:   7.1,
		Ct3:   1.2,
		Ct4:   0.5,
		Cr1:   0.5,
	}
	c.K2 = c.Kappa * c.Kappa
	c.Cw1 = c.Cb1/c.K2 + (1+c.Cb2)/c.Sigma
	c.Cb2Sigma = c.Cb2 / c.Sigma
	c.Cw3_6 = math.Pow(c.Cw3, 6)
	c.Cv1_3 = math.Pow(c.Cv1, 3)
	return
}

// Fv1 is the SA viscous damping function at Ji = nu_tilde/nu
func (c *SAConstants) Fv1(Ji float64) float64 {
	Ji3 := Ji * Ji * Ji
	return Ji3 / (Ji3 + c.Cv1_3)
}

type SSTConstants struct {
	SigmaK1, SigmaK2, SigmaW1, SigmaW2 float64
	Beta1, Beta2, BetaStar, A1, Kappa  float64
	Alfa1, Alfa2                       float64
}

func NewSSTConstants() (c SSTConstants) {
	c = SSTConstants{
		SigmaK1:  0.85,
		SigmaK2:  1.0,
		SigmaW1:  0.5,
		SigmaW2:  0.856,
		Beta1:    0.075,
		Beta2:    0.0828,
		BetaStar: 0.09,
		A1:       0.31,
		Kappa:    0.41,
	}
	c.Alfa1 = c.Beta1/c.BetaStar - c.SigmaW1*c.Kappa*c.Kappa/math.Sqrt(c.BetaStar)
	c.Alfa2 = c.Beta2/c.BetaStar - c.SigmaW2*c.Kappa*c.Kappa/math.Sqrt(c.BetaStar)
	return
}

func blend(F1, a, b float64) float64 { return F1*a + (1-F1)*b }
