package Turbulence

import (
	"math"

	"github.com/notargets/gorans/utils"
)

// SASource is the Spalart-Allmaras source term family. The unknown is nu_tilde.
type SASource struct {
	C   SAConstants
	Opt SourceOptions
	// Variant selection
	Negative, Compressible, Edwards bool
}

func (sa *SASource) NVar() int { return 1 }

// Fw returns g, fw and dfw/dnu given r and dr/dnu. r saturates at 10.
func (c *SAConstants) Fw(r, dr float64) (g, fw, dfw float64) {
	if r >= 10 {
		r, dr = 10, 0
	}
	var (
		r5 = utils.POW(r, 5)
		dg = dr * (1 + c.Cw2*(6*r5-1))
	)
	g = r + c.Cw2*(r5*r-r)
	g6 := utils.POW(g, 6)
	glim := math.Pow((1+c.Cw3_6)/(g6+c.Cw3_6), 1./6.)
	fw = g * glim
	dfw = dg * glim * (1 - g6/(g6+c.Cw3_6))
	return
}

func (sa *SASource) ComputeResidual(ps *PointState) (res utils.BlockVec, jac utils.Block) {
	var (
		c      = &sa.C
		nuT    = ps.TurbVar[0]
		rhoV   = ps.Density * ps.Volume
		dist   = ps.Dist
		P, D   float64 // production and destruction per unit rho*V
		dP, dD float64
	)
	if dist <= 1.e-10 {
		return
	}
	var (
		nu = ps.LamVisc / ps.Density
		d2 = dist * dist
	)
	switch {
	case sa.Edwards:
		P, D, dP, dD = sa.edwardsTerms(ps, nu, d2)
	case sa.Negative && nuT <= 0:
		Omega := sa.vorticity(ps)
		P = c.Cb1 * (1 - c.Ct3) * Omega * nuT
		D = -c.Cw1 * nuT * nuT / d2
		dP = c.Cb1 * (1 - c.Ct3) * Omega
		dD = -2 * c.Cw1 * nuT / d2
	default:
		P, D, dP, dD = sa.standardTerms(ps, nu, d2)
	}
	cb2 := c.Cb2Sigma * utils.SquaredNorm(ps.NDim, &ps.TurbGrad[0])
	res[0] = (P - D + cb2) * rhoV
	jac[0][0] = (dP - dD) * rhoV

	if sa.Compressible && ps.SoundSpeed2 > 0 {
		const c5 = 3.5
		var aux float64
		for i := 0; i < ps.NDim; i++ {
			for j := 0; j < ps.NDim; j++ {
				aux += ps.VelGrad[i][j] * ps.VelGrad[i][j]
			}
		}
		res[0] -= c5 * nuT * nuT / ps.SoundSpeed2 * aux * rhoV
		jac[0][0] -= 2 * c5 * nuT / ps.SoundSpeed2 * aux * rhoV
	}

	if sa.Opt.Axisymmetric && ps.Coord[1] > EPS {
		yinv := 1. / ps.Coord[1]
		dnudy := ps.TurbGrad[0][1]
		res[0] += yinv * rhoV * (nu + nuT) * dnudy / c.Sigma
		jac[0][0] += yinv * rhoV * dnudy / c.Sigma
	}
	return
}

func (sa *SASource) vorticity(ps *PointState) (Omega float64) {
	if sa.Opt.UseStrainMagnitude {
		Omega = ps.StrainMag
	} else {
		Omega = utils.Norm(utils.MaxNDim, &ps.Vorticity)
	}
	if sa.Opt.RotatingFrame {
		Omega += 2 * math.Min(0, ps.StrainMag-Omega)
	}
	return
}

func (sa *SASource) standardTerms(ps *PointState, nu, d2 float64) (P, D, dP, dD float64) {
	var (
		c       = &sa.C
		nuT     = ps.TurbVar[0]
		Ji      = nuT / nu
		Ji2     = Ji * Ji
		Ji3     = Ji2 * Ji
		fv1     = c.Fv1(Ji)
		dfv1    = 3 * Ji2 * c.Cv1_3 / (nu * utils.POW(Ji3+c.Cv1_3, 2))
		fv2     = 1 - Ji/(1+Ji*fv1)
		dfv2    = -(1/nu - Ji2*dfv1) / utils.POW(1+Ji*fv1, 2)
		ft2     = c.Ct3 * math.Exp(-c.Ct4*Ji2)
		dft2    = ft2 * (-2 * c.Ct4 * Ji) / nu
		invK2d2 = 1. / (c.K2 * d2)
		Shat    = sa.vorticity(ps) + nuT*fv2*invK2d2
		dShat   = (fv2 + nuT*dfv2) * invK2d2
		r, dr   float64
		fw, dfw float64
	)
	if Shat < 1.e-10 {
		Shat, dShat = 1.e-10, 0
	}
	r = nuT / Shat * invK2d2
	dr = (Shat - nuT*dShat) / (Shat * Shat) * invK2d2
	_, fw, dfw = c.Fw(r, dr)

	P = c.Cb1 * (1 - ft2) * Shat * nuT
	dP = c.Cb1 * (-dft2*Shat*nuT + (1-ft2)*(dShat*nuT+Shat))

	D = (c.Cw1*fw - c.Cb1/c.K2*ft2) * nuT * nuT / d2
	dD = (c.Cw1*dfw-c.Cb1/c.K2*dft2)*nuT*nuT/d2 + (c.Cw1*fw-c.Cb1/c.K2*ft2)*2*nuT/d2
	return
}

// edwardsTerms uses the strain based Omega of Edwards and Chandra, no ft2
func (sa *SASource) edwardsTerms(ps *PointState, nu, d2 float64) (P, D, dP, dD float64) {
	var (
		c    = &sa.C
		nuT  = ps.TurbVar[0]
		Sbar float64
		div  = ps.divergence()
	)
	for i := 0; i < ps.NDim; i++ {
		for j := 0; j < ps.NDim; j++ {
			Sbar += (ps.VelGrad[j][i] + ps.VelGrad[i][j]) * ps.VelGrad[j][i]
		}
	}
	Sbar -= 2. / 3. * div * div
	var (
		Omega   = math.Sqrt(math.Max(Sbar, 0))
		Ji      = nuT / nu
		Ji3     = Ji * Ji * Ji
		fv1     = c.Fv1(Ji)
		dfv1    = 3 * Ji * Ji * c.Cv1_3 / (nu * utils.POW(Ji3+c.Cv1_3, 2))
		invJi   float64
		dinvJi  float64
		invK2d2 = 1. / (c.K2 * d2)
	)
	if Ji > 1.e-16 {
		invJi, dinvJi = 1./Ji, -1./(Ji*Ji*nu)
	} else {
		invJi = 1.e16
	}
	Shat := Omega * (invJi + fv1)
	dShat := Omega * (dinvJi + dfv1)
	if Shat < 1.e-10 {
		Shat, dShat = 1.e-10, 0
	}
	var (
		x   = nuT / Shat * invK2d2
		dx  = (Shat - nuT*dShat) / (Shat * Shat) * invK2d2
		th  = math.Tanh(x)
		th1 = math.Tanh(1)
		r   = th / th1
		dr  = (1 - th*th) / th1 * dx
	)
	_, fw, dfw := c.Fw(r, dr)

	P = c.Cb1 * Shat * nuT
	dP = c.Cb1 * (dShat*nuT + Shat)
	D = c.Cw1 * fw * nuT * nuT / d2
	dD = c.Cw1 * (dfw*nuT*nuT + 2*fw*nuT) / d2
	return
}

// EddyViscosity is rho*nu_tilde*fv1, zero for a negative working variable
func (c *SAConstants) EddyViscosity(rho, mu, nuT float64) float64 {
	if nuT <= 0 {
		return 0
	}
	return rho * nuT * c.Fv1(nuT*rho/mu)
}
