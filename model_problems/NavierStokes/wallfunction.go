package NavierStokes

import (
	"math"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

/*
	Compressible law of the wall of Nichols and Nelson, AIAA J. v32 n6 2004.
	White and Christoph's outer law with heat transfer and compressibility is
	blended with the viscous sublayer through Spalding's formula, and the wall
	temperature follows the Crocco-Busemann relation unless it is prescribed.
*/
type WallFunction struct {
	Kappa, B  float64
	Recovery  float64 // Pr_lam^(1/3)
	Cp, R     float64
	Relax     float64
	MaxIter   int
	MinYPlus  float64
	Tolerance float64
}

func NewWallFunction(gm *GasModel, kappa, B, relax, minYPlus float64, maxIter int) *WallFunction {
	return &WallFunction{
		Kappa:     kappa,
		B:         B,
		Recovery:  math.Pow(gm.PrandtlLam, 1./3.),
		Cp:        gm.Cp,
		R:         gm.R,
		Relax:     relax,
		MaxIter:   maxIter,
		MinYPlus:  minYPlus,
		Tolerance: 1.e-12,
	}
}

// WallFunctionInput is the state at a wall vertex and its normal neighbor
type WallFunctionInput struct {
	VelTang, WallDist     float64
	PWall, TNormal, TWall float64
	LamViscWall           float64
	LamViscNormal         float64
	ConductivityWall      float64
	HeatFlux              float64
	WallShearStress       float64 // Starting guess
	Isothermal            bool
}

type WallFunctionResult struct {
	YPlus, EddyVisc, UTau float64
	TWall, DensityWall    float64
	TauWall               float64
	Iterations            int
	Skipped, Converged    bool
}

// Solve runs the damped Newton iteration on the friction velocity. A vertex with
// a starting y+ below MinYPlus is skipped. A vertex that exhausts MaxIter gets
// the fallback values y+ = 30, eddy viscosity = 1 and U_tau = 1.
func (wf *WallFunction) Solve(in *WallFunctionInput) (r WallFunctionResult) {
	var (
		kappa   = wf.Kappa
		expKB   = math.Exp(-kappa * wf.B)
		TWall   = in.TWall
		rhoWall = in.PWall / (wf.R * TWall)
		muW     = in.LamViscWall
		d       = in.WallDist
		V       = in.VelTang
		uTau    = math.Max(1.e-6, math.Sqrt(in.WallShearStress/rhoWall))
		yPlus   = 0.99 * wf.MinYPlus
		eddy    float64
		diff    = 1.
	)
	if rhoWall*uTau*d/muW < wf.MinYPlus {
		r.Skipped = true
		return
	}
	r.Converged = true
	for math.Abs(diff) > wf.Tolerance {
		var (
			uPlus = V / uTau
			Gam   = wf.Recovery * uTau * uTau / (2 * wf.Cp * TWall)
			Beta  = in.HeatFlux * muW / (rhoWall * TWall * in.ConductivityWall * uTau)
			Q     = math.Sqrt(Beta*Beta + 4*Gam)
			Phi   = math.Asin(-Beta / Q)
		)
		if !in.Isothermal {
			// A non positive denominator keeps the previous wall temperature
			if denum := 1 + Beta*uPlus - Gam*uPlus*uPlus; denum > EPS {
				TWall = in.TNormal / denum
			}
		}
		rhoWall = in.PWall / (wf.R * TWall)

		var (
			sqGam      = math.Sqrt(Gam)
			arg        = (2*Gam*uPlus - Beta) / Q
			yPlusWhite = math.Exp(kappa/sqGam*(math.Asin(arg)-Phi)) * expKB
			kUp        = kappa * uPlus
		)
		yPlus = uPlus + yPlusWhite - expKB*(1+kUp+0.5*kUp*kUp+kUp*kUp*kUp/6)

		dypwDyp := 2 * yPlusWhite * (kappa * sqGam / Q) * math.Sqrt(1-arg*arg)
		eddy = muW * (1 + dypwDyp - kappa*expKB*(1+kUp+kUp*kUp/2) - in.LamViscNormal/muW)
		eddy = math.Max(1.e-6, eddy)

		diff = rhoWall*uTau*d/muW - yPlus
		var (
			vk       = V * kappa / uTau
			gradDiff = rhoWall*d/muW + V/(uTau*uTau) +
				kappa/(uTau*sqGam)*math.Asin(uPlus*sqGam)*yPlusWhite -
				expKB*(0.5*vk*vk*vk+vk*vk+vk)/uTau
		)
		uTau -= wf.Relax * diff / gradDiff

		r.Iterations++
		if r.Iterations > wf.MaxIter {
			r.Converged = false
			yPlus, eddy, uTau = 30, 1, 1
			break
		}
	}
	r.YPlus, r.EddyVisc, r.UTau = yPlus, eddy, uTau
	r.TWall, r.DensityWall = TWall, rhoWall
	r.TauWall = (1 / rhoWall) * utils.POW(yPlus*muW/d, 2)
	return
}

// EPS guards divisions in the wall treatment
const EPS = 1.e-16

// WallFunctionCounters is the outcome of one wall function pass summed over all partitions
type WallFunctionCounters struct {
	NotConverged, SmallYPlus int
}

// SetTauWallWF solves the wall function on every viscous wall marker using the
// standard treatment and stores the wall shear stress at the wall points
func (ns *NSSolver) SetTauWallWF() (counters WallFunctionCounters) {
	var (
		ip           = ns.Params
		nDim         = ns.NDim
		fn           = ns.Nodes
		notConverged atomic.Uint64
		smallYPlus   atomic.Uint64
		wf           = NewWallFunction(ns.Gas, ip.WallModelKappa, ip.WallModelB, ip.WallModelRelax,
			ip.WallModelMinYPl, ip.WallModelMaxIter)
	)
	for iMarker, ms := range ns.Markers {
		if ms == nil || !ms.Kind.IsViscousWall() || ms.WallFunction != types.WF_Standard {
			continue
		}
		var qw float64
		if ms.Kind == types.BC_HeatFlux {
			qw = ms.HeatFlux / ip.HeatFluxRef
		}
		isothermal := ms.Kind == types.BC_Isothermal
		ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
			var (
				pointNormal = ns.Geom.NormalNeighbor(iMarker, iVertex)
				unit, _     = utils.UnitNormal(nDim, ns.Geom.VertexNormal(iMarker, iVertex))
				vel         = fn.Velocity[pointNormal]
				velNormal   = utils.Dot(nDim, &vel, &unit)
				velTang     utils.Vec3
			)
			for d := 0; d < nDim; d++ {
				velTang[d] = vel[d] - velNormal*unit[d]
			}
			var (
				muW        = fn.LamVisc[iPoint]
				tau        = ComputeStressTensor(nDim, &fn.GradVel[iPoint], muW)
				tauTangent = utils.TangentProjection(nDim, &tau, &unit)
				in         = WallFunctionInput{
					VelTang:          utils.Norm(nDim, &velTang),
					WallDist:         ns.wallDistance(iPoint, pointNormal),
					PWall:            fn.Pressure[pointNormal],
					TNormal:          fn.Temperature[pointNormal],
					TWall:            fn.Temperature[iPoint],
					LamViscWall:      muW,
					LamViscNormal:    fn.LamVisc[pointNormal],
					ConductivityWall: fn.ThermalCond[iPoint],
					HeatFlux:         qw,
					WallShearStress:  utils.Norm(nDim, &tauTangent),
					Isothermal:       isothermal,
				}
			)
			r := wf.Solve(&in)
			if r.Skipped {
				smallYPlus.Inc()
				return
			}
			if !r.Converged {
				notConverged.Inc()
			}
			if !isothermal {
				fn.Temperature[iPoint] = r.TWall
			}
			ms.YPlus[iVertex] = r.YPlus
			ms.EddyViscWall[iVertex] = r.EddyVisc
			ms.UTau[iVertex] = r.UTau
			fn.TauWall[iPoint] = r.TauWall
		})
	}
	counters.NotConverged = int(notConverged.Load())
	counters.SmallYPlus = int(smallYPlus.Load())
	if ns.Comm != types.COMM_Full {
		return
	}
	global := ns.Reducer.AllReduceSum([]float64{float64(counters.NotConverged), float64(counters.SmallYPlus)})
	counters.NotConverged, counters.SmallYPlus = int(global[0]), int(global[1])
	if ns.Reducer.Rank() == 0 {
		log := ns.Log.WithFields(logrus.Fields{
			"notConverged": counters.NotConverged,
			"smallYPlus":   counters.SmallYPlus,
		})
		if counters.NotConverged > 0 {
			log.Warnf("computation of wall coefficients (y+) did not converge in %d points", counters.NotConverged)
		}
		if counters.SmallYPlus > 0 {
			log.Warnf("y+ < %g in %d points, the wall model is not active there", ip.WallModelMinYPl, counters.SmallYPlus)
		}
	}
	return
}
