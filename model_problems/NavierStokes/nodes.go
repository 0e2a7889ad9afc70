package NavierStokes

import (
	"math"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

/*
	FlowNodes holds the point state of the flow solver.
	Compressible unknowns are (rho, rho*u, rho*v, [rho*w], rho*E).
	Incompressible unknowns are (P, u, v, [w], T) at constant density.
*/
type FlowNodes struct {
	NPoint, NDim, NVar int
	Regime             types.FLOW_REGIME
	Solution           []utils.BlockVec
	SolutionOld        []utils.BlockVec
	// Per equation flag, false removes the equation from the truncation error
	ResTruncError [][utils.MaxNVar]bool
	// Primitive variables
	Density, Pressure, Temperature []float64
	Enthalpy, SoundSpeed2          []float64
	Velocity                       []utils.Vec3
	LamVisc, EddyVisc              []float64
	ThermalCond, SpecificHeatCp    []float64 // Laminar conductivity
	// Gradients, GradVel[iPoint][i][j] = du_i/dx_j
	GradVel      [][utils.MaxNDim]utils.Vec3
	GradT, GradP []utils.Vec3
	Vorticity    []utils.Vec3
	StrainMag    []float64
	// Per point caches written by the wall treatment
	TauWall        []float64
	DESLengthScale []float64
}

func NewFlowNodes(nPoint, nDim int, regime types.FLOW_REGIME) (fn *FlowNodes) {
	fn = &FlowNodes{
		NPoint:         nPoint,
		NDim:           nDim,
		NVar:           nDim + 2,
		Regime:         regime,
		Solution:       make([]utils.BlockVec, nPoint),
		SolutionOld:    make([]utils.BlockVec, nPoint),
		ResTruncError:  make([][utils.MaxNVar]bool, nPoint),
		Density:        make([]float64, nPoint),
		Pressure:       make([]float64, nPoint),
		Temperature:    make([]float64, nPoint),
		Enthalpy:       make([]float64, nPoint),
		SoundSpeed2:    make([]float64, nPoint),
		Velocity:       make([]utils.Vec3, nPoint),
		LamVisc:        make([]float64, nPoint),
		EddyVisc:       make([]float64, nPoint),
		ThermalCond:    make([]float64, nPoint),
		SpecificHeatCp: make([]float64, nPoint),
		GradVel:        make([][utils.MaxNDim]utils.Vec3, nPoint),
		GradT:          make([]utils.Vec3, nPoint),
		GradP:          make([]utils.Vec3, nPoint),
		Vorticity:      make([]utils.Vec3, nPoint),
		StrainMag:      make([]float64, nPoint),
		TauWall:        make([]float64, nPoint),
		DESLengthScale: make([]float64, nPoint),
	}
	for i := 0; i < nPoint; i++ {
		fn.TauWall[i] = -1
		for iVar := 0; iVar < fn.NVar; iVar++ {
			fn.ResTruncError[i][iVar] = true
		}
	}
	return
}

// SetConservative loads the unknowns at a point from pressure, temperature and
// velocity, then copies them to the old solution
func (fn *FlowNodes) SetConservative(gm *GasModel, iPoint int, P, T float64, vel *utils.Vec3, turbKE float64) {
	var (
		nDim = fn.NDim
		U    = &fn.Solution[iPoint]
	)
	switch fn.Regime {
	case types.Compressible:
		rho := P / (gm.R * T)
		U[0] = rho
		for d := 0; d < nDim; d++ {
			U[d+1] = rho * vel[d]
		}
		U[nDim+1] = P/(gm.Gamma-1) + rho*(0.5*utils.SquaredNorm(nDim, vel)+turbKE)
	case types.Incompressible:
		U[0] = P
		for d := 0; d < nDim; d++ {
			U[d+1] = vel[d]
		}
		U[nDim+1] = T
	}
	fn.SolutionOld[iPoint] = fn.Solution[iPoint]
}

// SetPrimVar recomputes the primitive variables from the unknowns. A non
// physical state is replaced by the old solution and false is returned.
func (fn *FlowNodes) SetPrimVar(gm *GasModel, iPoint int, eddyVisc, turbKE float64) (physical bool) {
	fn.EddyVisc[iPoint] = eddyVisc
	if physical = fn.setPrimVar(gm, iPoint, turbKE); !physical {
		fn.Solution[iPoint] = fn.SolutionOld[iPoint]
		fn.setPrimVar(gm, iPoint, turbKE)
	}
	var (
		T  = fn.Temperature[iPoint]
		mu = gm.LaminarViscosity(T)
	)
	fn.LamVisc[iPoint] = mu
	fn.ThermalCond[iPoint] = gm.ThermalConductivity(mu, 0)
	fn.SpecificHeatCp[iPoint] = gm.Cp
	return
}

func (fn *FlowNodes) setPrimVar(gm *GasModel, iPoint int, turbKE float64) bool {
	var (
		nDim = fn.NDim
		U    = &fn.Solution[iPoint]
		vel  = &fn.Velocity[iPoint]
	)
	switch fn.Regime {
	case types.Compressible:
		rho := U[0]
		for d := 0; d < nDim; d++ {
			vel[d] = U[d+1] / rho
		}
		var (
			e = U[nDim+1]/rho - 0.5*utils.SquaredNorm(nDim, vel) - turbKE
			T = e * (gm.Gamma - 1) / gm.R
			P = rho * gm.R * T
		)
		fn.Density[iPoint] = rho
		fn.Temperature[iPoint] = T
		fn.Pressure[iPoint] = P
		fn.SoundSpeed2[iPoint] = gm.Gamma * P / rho
		fn.Enthalpy[iPoint] = (U[nDim+1] + P) / rho
		return rho > 0 && P > 0 && T > 0 && utils.IsFinite(e)
	default:
		for d := 0; d < nDim; d++ {
			vel[d] = U[d+1]
		}
		T := U[nDim+1]
		fn.Density[iPoint] = gm.DensityInc
		fn.Pressure[iPoint] = U[0]
		fn.Temperature[iPoint] = T
		fn.Enthalpy[iPoint] = gm.Cp * T
		fn.SoundSpeed2[iPoint] = 0
		return T > 0 && gm.DensityInc > 0
	}
}

// SetVelocityOld stores the wall velocity in the old solution
func (fn *FlowNodes) SetVelocityOld(iPoint int, vel *utils.Vec3) {
	for d := 0; d < fn.NDim; d++ {
		if fn.Regime == types.Compressible {
			fn.SolutionOld[iPoint][d+1] = vel[d] * fn.Solution[iPoint][0]
		} else {
			fn.SolutionOld[iPoint][d+1] = vel[d]
		}
	}
}

func (fn *FlowNodes) SetVelResTruncErrorZero(iPoint int) {
	for d := 0; d < fn.NDim; d++ {
		fn.ResTruncError[iPoint][d+1] = false
	}
}

func (fn *FlowNodes) SetEnergyResTruncErrorZero(iPoint int) {
	fn.ResTruncError[iPoint][fn.NDim+1] = false
}

// SetVorticityStrain computes the vorticity vector and the trace free strain rate magnitude from GradVel
func (fn *FlowNodes) SetVorticityStrain(iPoint int) {
	var (
		g    = &fn.GradVel[iPoint]
		nDim = fn.NDim
		w    = &fn.Vorticity[iPoint]
		div  float64
		s2   float64
	)
	w[2] = g[1][0] - g[0][1]
	if nDim == 3 {
		w[0] = g[2][1] - g[1][2]
		w[1] = g[0][2] - g[2][0]
	}
	for d := 0; d < nDim; d++ {
		div += g[d][d]
	}
	for d := 0; d < nDim; d++ {
		s2 += utils.POW(g[d][d]-div/3, 2)
	}
	if nDim == 2 {
		s2 += utils.POW(div/3, 2)
	}
	s2 += 2 * utils.POW(0.5*(g[0][1]+g[1][0]), 2)
	if nDim == 3 {
		s2 += 2 * utils.POW(0.5*(g[0][2]+g[2][0]), 2)
		s2 += 2 * utils.POW(0.5*(g[1][2]+g[2][1]), 2)
	}
	fn.StrainMag[iPoint] = math.Sqrt(2 * s2)
}
