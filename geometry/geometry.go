package geometry

import (
	"github.com/notargets/gorans/utils"
)

// Geometry is the read only mesh contract consumed by the assembly kernels.
// Boundary vertex normals point out of the domain and carry the dual face area
// as their magnitude. Edge normals point from the first to the second node.
type Geometry interface {
	NDim() int
	NPoint() int
	Coord(iPoint int) *utils.Vec3
	Volume(iPoint int) float64
	// IsDomain is false for halo points owned by another partition
	IsDomain(iPoint int) bool
	GridVel(iPoint int) *utils.Vec3
	WallDistance(iPoint int) float64
	Neighbors(iPoint int) []int

	NEdge() int
	EdgeNodes(iEdge int) (iPoint, jPoint int)
	EdgeNormal(iEdge int) *utils.Vec3
	PointEdges(iPoint int) []int

	NMarker() int
	MarkerTag(iMarker int) string
	MarkerIndex(tag string) (iMarker int, ok bool)
	NVertex(iMarker int) int
	VertexNode(iMarker, iVertex int) int
	VertexNormal(iMarker, iVertex int) *utils.Vec3
	// NormalNeighbor is the interior neighbor best aligned with the inward normal
	NormalNeighbor(iMarker, iVertex int) int
}
