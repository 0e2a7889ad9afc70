package NavierStokes

import (
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// BCWallInc is the incompressible no-slip wall with a prescribed heat flux or temperature
func (ns *NSSolver) BCWallInc(iMarker int) {
	var (
		ms                  = ns.Markers[iMarker]
		ip                  = ns.Params
		nDim                = ns.NDim
		wallHeatFlux, twall float64
		periodic            = ip.StreamwisePeriodic
		periodicFactor      float64
		translation         utils.Vec3
	)
	switch ms.Kind {
	case types.BC_HeatFlux:
		wallHeatFlux = ms.HeatFlux / ip.HeatFluxRef
	case types.BC_Isothermal:
		twall = ms.Temperature / ip.TemperatureRef
	default:
		panic("Unknown type of boundary condition")
	}
	if ms.WallFunction != types.WF_None {
		panic("Wall function treatment not implemented yet")
	}
	if periodic != nil && periodic.Temperature {
		copy(translation[:], periodic.Translation[:nDim])
		periodicFactor = periodic.IntegratedHeatFlow /
			(periodic.MassFlow * ns.Gas.Cp * utils.SquaredNorm(nDim, &translation))
	}
	ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
		var (
			fn     = ns.Nodes
			normal = ns.Geom.VertexNormal(iMarker, iVertex)
			area   = utils.Norm(nDim, normal)
		)
		ns.setNoSlip(iPoint)
		if ns.Implicit {
			ns.deleteMomentumRows(iPoint)
		}
		if !ns.Energy {
			return
		}
		k := ns.Gas.ThermalConductivity(fn.LamVisc[iPoint], fn.EddyVisc[iPoint])
		if ms.Kind == types.BC_HeatFlux {
			ns.LinSysRes.AddVal(iPoint, nDim+1, -wallHeatFlux*area)
			if periodicFactor != 0 {
				ns.LinSysRes.AddVal(iPoint, nDim+1, periodicFactor*k*utils.Dot(nDim, &translation, normal))
			}
			return
		}
		var (
			pointNormal = ns.Geom.NormalNeighbor(iMarker, iVertex)
			edge        = utils.DistanceVector(nDim, ns.Geom.Coord(iPoint), ns.Geom.Coord(pointNormal))
			dist2       = utils.SquaredNorm(nDim, &edge)
			dTdn        = -(fn.Temperature[pointNormal] - twall) / utils.Norm(nDim, &edge)
		)
		ns.LinSysRes.AddVal(iPoint, nDim+1, -k*dTdn*area)
		if ns.Implicit {
			var projVector float64
			if dist2 > 0 {
				projVector = utils.Dot(nDim, &edge, normal) / dist2
			}
			ns.Jacobian.AddVal2Diag(iPoint, nDim+1, k*projVector)
		}
	})
}

// BCConjugateHeatInc imposes the coupled wall temperature strongly on the incompressible energy equation
func (ns *NSSolver) BCConjugateHeatInc(iMarker int) {
	var (
		ms   = ns.Markers[iMarker]
		nDim = ns.NDim
	)
	if ms.WallFunction != types.WF_None {
		panic("Wall function treatment not implemented yet")
	}
	ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
		fn := ns.Nodes
		ns.setNoSlip(iPoint)
		if ns.Implicit {
			ns.deleteMomentumRows(iPoint)
			if ns.Energy {
				ns.Jacobian.DeleteValsRowi(iPoint*ns.NVar + nDim + 1)
			}
		}
		if !ns.Energy {
			return
		}
		var (
			pointNormal = ns.Geom.NormalNeighbor(iMarker, iVertex)
			dist        = ns.wallDistance(iPoint, pointNormal)
			k           = ns.Gas.ThermalConductivity(fn.LamVisc[iPoint], fn.EddyVisc[iPoint])
			twall       = ns.chtWallTemperature(ms, iVertex, k, dist, fn.Temperature[pointNormal])
		)
		ns.LinSysRes.Set(iPoint, nDim+1, 0)
		fn.SolutionOld[iPoint][nDim+1] = twall
		fn.SetEnergyResTruncErrorZero(iPoint)
	})
}
