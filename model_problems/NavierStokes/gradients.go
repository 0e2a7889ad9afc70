package NavierStokes

import (
	"github.com/notargets/gorans/geometry"
	"github.com/notargets/gorans/utils"
)

// BoundaryNormalSums returns, per point, the sum of its outward boundary vertex
// normals over every marker. Points off the boundary get a zero vector.
func BoundaryNormalSums(geom geometry.Geometry) (bnSum []utils.Vec3) {
	bnSum = make([]utils.Vec3, geom.NPoint())
	for iMarker := 0; iMarker < geom.NMarker(); iMarker++ {
		for iVertex := 0; iVertex < geom.NVertex(iMarker); iVertex++ {
			var (
				iPoint = geom.VertexNode(iMarker, iVertex)
				normal = geom.VertexNormal(iMarker, iVertex)
			)
			for d := 0; d < geom.NDim(); d++ {
				bnSum[iPoint][d] += normal[d]
			}
		}
	}
	return
}

// GreenGauss computes the dual cell gradient of nVar point fields. Each point
// gathers over its own edges so the partitions write disjoint points.
func GreenGauss(geom geometry.Geometry, bnSum []utils.Vec3, pm *utils.PartitionMap, nVar int,
	field func(iPoint, iVar int) float64, grad func(iPoint, iVar int) *utils.Vec3) {
	nDim := geom.NDim()
	pm.ParallelFor(func(bucket, kMin, kMax int) {
		for iPoint := kMin; iPoint < kMax; iPoint++ {
			oov := 1. / geom.Volume(iPoint)
			for iVar := 0; iVar < nVar; iVar++ {
				var (
					phiI = field(iPoint, iVar)
					g    utils.Vec3
				)
				for _, iEdge := range geom.PointEdges(iPoint) {
					var (
						i, j   = geom.EdgeNodes(iEdge)
						normal = geom.EdgeNormal(iEdge)
						sign   = 1.
					)
					if j == iPoint {
						sign, j = -1., i
					}
					phiF := 0.5 * (phiI + field(j, iVar))
					for d := 0; d < nDim; d++ {
						g[d] += sign * phiF * normal[d]
					}
				}
				for d := 0; d < nDim; d++ {
					g[d] = (g[d] + phiI*bnSum[iPoint][d]) * oov
				}
				*grad(iPoint, iVar) = g
			}
		}
	})
}

// SetPrimitiveGradient computes the velocity, temperature and pressure
// gradients followed by vorticity and strain magnitude
func (ns *NSSolver) SetPrimitiveGradient() {
	var (
		fn   = ns.Nodes
		nDim = ns.NDim
	)
	// Variable order is u, v, [w], T, P
	GreenGauss(ns.Geom, ns.boundaryNormalSum, ns.Partitions, nDim+2,
		func(iPoint, iVar int) float64 {
			switch {
			case iVar < nDim:
				return fn.Velocity[iPoint][iVar]
			case iVar == nDim:
				return fn.Temperature[iPoint]
			default:
				return fn.Pressure[iPoint]
			}
		},
		func(iPoint, iVar int) *utils.Vec3 {
			switch {
			case iVar < nDim:
				return &fn.GradVel[iPoint][iVar]
			case iVar == nDim:
				return &fn.GradT[iPoint]
			default:
				return &fn.GradP[iPoint]
			}
		})
	ns.Partitions.ParallelFor(func(bucket, kMin, kMax int) {
		for iPoint := kMin; iPoint < kMax; iPoint++ {
			fn.SetVorticityStrain(iPoint)
		}
	})
}
