package NavierStokes

import (
	"github.com/notargets/gorans/utils"
)

func (ns *NSSolver) SetParallelDegree(ProcLimit, Kmax int) {
	ns.ParallelDegree = utils.ParallelDegree(ProcLimit, Kmax)
	ns.Partitions = utils.NewPartitionMap(ns.ParallelDegree, Kmax)
}

// PartitionVertices splits the vertex list of every marker into buckets. Each
// vertex of a marker is a distinct point, so buckets never share a point.
func (ns *NSSolver) PartitionVertices() {
	for iMarker := range ns.VertexPartitions {
		nVertex := ns.Geom.NVertex(iMarker)
		if nVertex == 0 {
			continue
		}
		ns.VertexPartitions[iMarker] = utils.NewPartitionMap(
			utils.ParallelDegree(ns.Params.ProcLimit, nVertex), nVertex)
	}
}

// vertexLoop runs f over the domain vertices of a marker in parallel. The
// bucket index lets f keep per goroutine accumulators.
func (ns *NSSolver) vertexLoop(iMarker int, f func(bucket, iVertex, iPoint int)) {
	pm := ns.VertexPartitions[iMarker]
	if pm == nil {
		return
	}
	pm.ParallelFor(func(bucket, kMin, kMax int) {
		for iVertex := kMin; iVertex < kMax; iVertex++ {
			iPoint := ns.Geom.VertexNode(iMarker, iVertex)
			if !ns.Geom.IsDomain(iPoint) {
				continue
			}
			f(bucket, iVertex, iPoint)
		}
	})
}

// pointLoop runs f over every domain point in parallel
func (ns *NSSolver) pointLoop(f func(bucket, iPoint int)) {
	ns.Partitions.ParallelFor(func(bucket, kMin, kMax int) {
		for iPoint := kMin; iPoint < kMax; iPoint++ {
			if !ns.Geom.IsDomain(iPoint) {
				continue
			}
			f(bucket, iPoint)
		}
	})
}
