package NavierStokes

import (
	"math"
	"sort"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// FrictionForces computes the skin friction vector at every viscous wall vertex.
// Where the wall function has set a wall shear stress the tangential stress is
// rescaled to it.
func (ns *NSSolver) FrictionForces() {
	var (
		nDim   = ns.NDim
		fn     = ns.Nodes
		factor = 1. / (0.5 * ns.Params.DensityInf * utils.SquaredNorm(nDim, &ns.VelocityInf))
	)
	for iMarker, ms := range ns.Markers {
		if ms == nil || !ms.Kind.IsViscousWall() {
			continue
		}
		ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
			var (
				unit, _    = utils.UnitNormal(nDim, ns.Geom.VertexNormal(iMarker, iVertex))
				tau        = ComputeStressTensor(nDim, &fn.GradVel[iPoint], fn.LamVisc[iPoint])
				tauTangent = utils.TangentProjection(nDim, &tau, &unit)
			)
			if ms.WallFunction != types.WF_None && fn.TauWall[iPoint] > 0 {
				if mag := utils.Norm(nDim, &tauTangent); mag > 0 {
					scale := fn.TauWall[iPoint] / mag
					for d := 0; d < nDim; d++ {
						tauTangent[d] *= scale
					}
				}
			}
			for d := 0; d < nDim; d++ {
				ms.CSkinFriction[iVertex][d] = tauTangent[d] * factor
			}
		})
	}
}

// BuffetMonitoring evaluates the buffet sensor on every viscous wall and
// integrates it over the monitored markers. The totals are summed over all partitions.
func (ns *NSSolver) BuffetMonitoring() {
	var (
		ip       = ns.Params
		nDim     = ns.NDim
		k, lam   = ip.BuffetK, ip.BuffetLambda
		sRef     = ip.RefArea
		velMagFS = utils.Norm(nDim, &ns.VelocityInf)
	)
	ns.TotalBuffetMetric = 0
	for i := range ns.SurfaceBuffetMetric {
		ns.SurfaceBuffetMetric[i] = 0
	}
	for iMarker, ms := range ns.Markers {
		if ms == nil {
			continue
		}
		ms.BuffetMetric = 0
		if !ms.Kind.IsViscousWall() {
			continue
		}
		// The integral is accumulated serially in vertex order for reproducibility
		for iVertex := range ms.BuffetSensor {
			iPoint := ns.Geom.VertexNode(iMarker, iVertex)
			if !ns.Geom.IsDomain(iPoint) {
				continue
			}
			var (
				cf    = &ms.CSkinFriction[iVertex]
				denom = utils.Norm(nDim, cf) * velMagFS
				cfDot float64
			)
			if denom > 0 {
				cfDot = utils.Dot(nDim, cf, &ns.VelocityInf) / denom
			}
			sensor := 1. / (1. + math.Exp(2*k*(cfDot+lam)))
			ms.BuffetSensor[iVertex] = sensor
			if ms.Monitoring {
				area := utils.Norm(nDim, ns.Geom.VertexNormal(iMarker, iVertex))
				ms.BuffetMetric += sensor * area / sRef
			}
		}
		if ms.Monitoring {
			ns.TotalBuffetMetric += ms.BuffetMetric
			if i := sort.SearchStrings(ns.Monitored, ms.Tag); i < len(ns.Monitored) && ns.Monitored[i] == ms.Tag {
				ns.SurfaceBuffetMetric[i] = ms.BuffetMetric
			}
		}
	}
	local := append([]float64{ns.TotalBuffetMetric}, ns.SurfaceBuffetMetric...)
	global := ns.Reducer.AllReduceSum(local)
	ns.TotalBuffetMetric = global[0]
	copy(ns.SurfaceBuffetMetric, global[1:])
}

// EvaluateObjFunc adds the weighted buffet metric of each monitored surface to the combined objective
func (ns *NSSolver) EvaluateObjFunc() {
	ns.TotalComboObj = 0
	for i, tag := range ns.Monitored {
		iMarker, _ := ns.Geom.MarkerIndex(tag)
		ns.TotalComboObj += ns.Markers[iMarker].ObjectiveWeight * ns.SurfaceBuffetMetric[i]
	}
}
