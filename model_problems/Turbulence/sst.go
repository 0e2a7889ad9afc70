package Turbulence

import (
	"math"

	"github.com/notargets/gorans/utils"
)

// SSTSource is the Menter SST k-omega source. The unknowns are rho*k and rho*omega.
type SSTSource struct {
	C          SSTConstants
	Opt        SourceOptions
	Sustaining bool
}

func (sst *SSTSource) NVar() int { return 2 }

func (sst *SSTSource) ComputeResidual(ps *PointState) (res utils.BlockVec, jac utils.Block) {
	var (
		c        = &sst.C
		rho      = ps.Density
		k, omega = ps.TurbVar[0], ps.TurbVar[1]
		F1       = ps.F1
		V        = ps.Volume
		alfa     = blend(F1, c.Alfa1, c.Alfa2)
		beta     = blend(F1, c.Beta1, c.Beta2)
		S        = ps.StrainMag
		div      = ps.divergence()
	)
	// Production, limited against unbounded growth near stagnation
	pk := ps.EddyVisc*S*S - 2./3.*rho*k*div
	pk = math.Min(pk, 20*c.BetaStar*rho*omega*k)
	pk = math.Max(pk, 0)

	zeta := math.Max(omega, S*ps.F2/c.A1)
	pw := S*S - 2./3.*zeta*div
	pw = math.Max(pw, 0) * alfa * rho

	if sst.Sustaining {
		pk += c.BetaStar * rho * sst.Opt.AmbientK * sst.Opt.AmbientOmega
		pw += beta * rho * sst.Opt.AmbientOmega * sst.Opt.AmbientOmega
	}

	var (
		dk  = c.BetaStar * rho * omega * k
		dw  = beta * rho * omega * omega
		cdw = (1 - F1) * ps.CDkw
	)
	res[0] = (pk - dk) * V
	res[1] = (pw - dw + cdw) * V

	// Only the destruction terms are linearized
	jac[0][0] = -c.BetaStar * omega * V
	jac[0][1] = -c.BetaStar * k * V
	jac[1][0] = 0
	jac[1][1] = -2 * beta * omega * V

	if sst.Opt.Axisymmetric && ps.Coord[1] > EPS {
		var (
			yinv   = 1. / ps.Coord[1]
			v      = ps.Velocity[1]
			rhov   = rho * v
			sigK   = blend(F1, c.SigmaK1, c.SigmaK2)
			sigW   = blend(F1, c.SigmaW1, c.SigmaW2)
			pkAxi  = math.Max(0, 2./3.*rhov*k*(2./zeta*(yinv*v-ps.VelGrad[1][1]-ps.VelGrad[0][0])-1))
			pwAxi  float64
			cdkAxi = rhov*k - (ps.LamVisc+sigK*ps.EddyVisc)*ps.TurbGrad[0][1]
			cdwAxi = rhov*omega - (ps.LamVisc+sigW*ps.EddyVisc)*ps.TurbGrad[1][1]
		)
		if k > 0 {
			pwAxi = alfa * zeta / k * pkAxi
		}
		res[0] += yinv * V * (pkAxi - cdkAxi)
		res[1] += yinv * V * (pwAxi - cdwAxi)
	}
	return
}

// Blending computes the SST blending functions F1, F2 and the cross diffusion CDkw
func (c *SSTConstants) Blending(nDim int, rho, mu, k, omega, dist float64, gradK, gradOmega *utils.Vec3) (F1, F2, CDkw float64) {
	CDkw = math.Max(2*rho*c.SigmaW2/omega*utils.Dot(nDim, gradK, gradOmega), 1.e-20)
	var (
		arg2A = math.Sqrt(math.Max(k, 0)) / (c.BetaStar * omega * dist)
		arg2B = 500 * mu / (rho * dist * dist * omega)
		arg1  = math.Min(math.Max(arg2A, arg2B), 4*rho*c.SigmaW2*k/(CDkw*dist*dist))
		arg2  = math.Max(2*arg2A, arg2B)
	)
	F1 = math.Tanh(utils.POW(arg1, 4))
	F2 = math.Tanh(arg2 * arg2)
	return
}

// EddyViscosity is the SST eddy viscosity with the Bradshaw limiter
func (c *SSTConstants) EddyViscosity(rho, k, omega, strainMag, F2 float64) float64 {
	return rho * c.A1 * k / math.Max(c.A1*omega, strainMag*F2)
}
