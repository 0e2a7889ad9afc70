package NavierStokes

import (
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// ViscousWallBCs applies the wall boundary condition of every configured viscous wall marker
func (ns *NSSolver) ViscousWallBCs() {
	for iMarker, ms := range ns.Markers {
		if ms == nil || !ms.Kind.IsViscousWall() {
			continue
		}
		switch ns.Regime {
		case types.Compressible:
			switch ms.Kind {
			case types.BC_HeatFlux, types.BC_HeatTransfer:
				ns.BCHeatFluxWall(iMarker)
			case types.BC_Isothermal:
				ns.BCIsothermalWall(iMarker, false)
			case types.BC_CHTInterface:
				ns.BCIsothermalWall(iMarker, true)
			}
		case types.Incompressible:
			switch ms.Kind {
			case types.BC_CHTInterface:
				ns.BCConjugateHeatInc(iMarker)
			default:
				ns.BCWallInc(iMarker)
			}
		}
	}
}

// setNoSlip imposes the wall velocity strongly: the old velocity becomes the
// grid velocity and the momentum residual is removed
func (ns *NSSolver) setNoSlip(iPoint int) {
	if ns.DynamicGrid {
		ns.Nodes.SetVelocityOld(iPoint, ns.Geom.GridVel(iPoint))
	} else {
		ns.Nodes.SetVelocityOld(iPoint, &utils.Vec3{})
	}
	for d := 0; d < ns.NDim; d++ {
		ns.LinSysRes.Set(iPoint, d+1, 0)
	}
	ns.Nodes.SetVelResTruncErrorZero(iPoint)
}

func (ns *NSSolver) deleteMomentumRows(iPoint int) {
	for iVar := 1; iVar <= ns.NDim; iVar++ {
		ns.Jacobian.DeleteValsRowi(iPoint*ns.NVar + iVar)
	}
}

// BCHeatFluxWall imposes a prescribed heat flux, or the flux of a heat transfer
// coefficient against the local wall temperature, weakly on the energy equation
func (ns *NSSolver) BCHeatFluxWall(iMarker int) {
	var (
		ms           = ns.Markers[iMarker]
		ip           = ns.Params
		nDim         = ns.NDim
		heatTransfer bool
		wallHeatFlux float64
		htc, tInf    float64
	)
	switch ms.Kind {
	case types.BC_HeatFlux:
		wallHeatFlux = ms.HeatFlux / ip.HeatFluxRef
	case types.BC_HeatTransfer:
		heatTransfer = true
		htc = ms.HTC * ip.TemperatureRef / ip.HeatFluxRef
		tInf = ms.TInfinity / ip.TemperatureRef
	default:
		panic("Unknown type of boundary condition")
	}
	withJac := ns.Implicit && (ns.DynamicGrid || heatTransfer)
	ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
		var (
			fn           = ns.Nodes
			qw           = wallHeatFlux
			unit, area   = utils.UnitNormal(nDim, ns.Geom.VertexNormal(iMarker, iVertex))
			jacBlock     utils.Block
			jac          *utils.Block
			resConv      float64
			resVisc      float64
			gamma, gasR  = ns.Gas.Gamma, ns.Gas.R
			rho          = fn.Density[iPoint]
			pointNormal  = ns.Geom.NormalNeighbor(iMarker, iVertex)
			energyOffset = nDim + 1
		)
		if heatTransfer {
			qw = htc * (tInf - fn.Temperature[iPoint])
		}
		if withJac {
			jac = &jacBlock
		}
		resVisc = qw * area

		ns.setNoSlip(iPoint)

		if ns.DynamicGrid {
			ns.addDynamicGridContribution(iPoint, pointNormal, &unit, area, ns.Geom.GridVel(iPoint),
				jac, &resConv, &resVisc)
		}
		ns.LinSysRes.AddVal(iPoint, energyOffset, resConv-resVisc)

		if !ns.Implicit {
			return
		}
		if heatTransfer {
			// T = (gamma-1)/R*(rhoE/rho - 0.5*|rho v|^2/rho^2)
			var (
				oneOnRho = 1. / rho
				oneOnCv  = (gamma - 1) / gasR
				dTdrho   = oneOnRho * (-tInf + oneOnCv*0.5*utils.SquaredNorm(nDim, &fn.Velocity[iPoint]))
				dTdrhoe  = oneOnCv * oneOnRho
			)
			jac[energyOffset][0] += htc * dTdrho * area
			for d := 0; d < nDim; d++ {
				jac[energyOffset][d+1] -= htc * dTdrhoe * fn.Velocity[iPoint][d] * area
			}
			jac[energyOffset][energyOffset] += htc * dTdrhoe * area
		}
		if withJac {
			ns.Jacobian.AddBlock2Diag(iPoint, jac)
		}
		ns.deleteMomentumRows(iPoint)
	})
}

// BCIsothermalWall imposes the wall temperature weakly through the normal
// temperature gradient. A conjugate interface takes the wall temperature from
// the coupling with the solid side.
func (ns *NSSolver) BCIsothermalWall(iMarker int, cht bool) {
	var (
		ms    = ns.Markers[iMarker]
		ip    = ns.Params
		nDim  = ns.NDim
		twall float64
	)
	if !cht {
		twall = ms.Temperature / ip.TemperatureRef
	}
	ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
		var (
			fn          = ns.Nodes
			gamma, gasR = ns.Gas.Gamma, ns.Gas.R
			unit, area  = utils.UnitNormal(nDim, ns.Geom.VertexNormal(iMarker, iVertex))
			pointNormal = ns.Geom.NormalNeighbor(iMarker, iVertex)
			dist        = ns.wallDistance(iPoint, pointNormal)
			k           = ns.Gas.ThermalConductivity(fn.LamVisc[iPoint], fn.EddyVisc[iPoint])
			tHere       = fn.Temperature[pointNormal]
			tw          = twall
			jacBlock    utils.Block
			jac         *utils.Block
			resConv     float64
		)
		ns.setNoSlip(iPoint)

		if cht {
			tw = ns.chtWallTemperature(ms, iVertex, k, dist, tHere)
		}
		dTdn := -(tHere - tw) / dist
		resVisc := k * dTdn * area

		if ns.Implicit {
			jac = &jacBlock
			var (
				rho    = fn.Density[iPoint]
				vel2   = utils.SquaredNorm(nDim, &fn.Velocity[iPoint])
				dTdrho = 1. / rho * (-tw + (gamma-1)/gasR*(vel2/2))
			)
			jac[nDim+1][0] = k / dist * dTdrho * area
			jac[nDim+1][nDim+1] = k / dist * (gamma - 1) / (gasR * rho) * area
		}

		if ns.DynamicGrid {
			ns.addDynamicGridContribution(iPoint, pointNormal, &unit, area, ns.Geom.GridVel(iPoint),
				jac, &resConv, &resVisc)
		}
		ns.LinSysRes.AddVal(iPoint, nDim+1, resConv-resVisc)

		if ns.Implicit {
			ns.Jacobian.AddBlock2Diag(iPoint, jac)
			ns.deleteMomentumRows(iPoint)
		}
	})
}

// chtWallTemperature couples the fluid side temperature with the conjugate side data of a vertex
func (ns *NSSolver) chtWallTemperature(ms *MarkerState, iVertex int, k, dist, tHere float64) (twall float64) {
	tConjugate := ms.Conjugate[iVertex][0] / ns.Params.TemperatureRef
	switch {
	case ns.Coupling.IsAveraged():
		var (
			hfHere      = k * ns.Params.ViscosityRef / dist
			hfConjugate = ms.Conjugate[iVertex][2]
		)
		twall = (tHere*hfHere + tConjugate*hfConjugate) / (hfHere + hfConjugate)
	case ns.Coupling.IsDirect():
		twall = tConjugate
	default:
		panic("Unknown CHT coupling method.")
	}
	return
}

// SetConjugateHeatVariable stores the solid side temperature, heat flux and heat flux factor of a CHT vertex
func (ns *NSSolver) SetConjugateHeatVariable(iMarker, iVertex int, temperature, heatFlux, hfFactor float64) {
	ns.Markers[iMarker].Conjugate[iVertex] = [3]float64{temperature, heatFlux, hfFactor}
}
