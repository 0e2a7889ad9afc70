package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gorans/readfiles"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

type marker struct {
	tag            string
	nodes          []int
	normals        []utils.Vec3
	normalNeighbor []int
}

// DualMesh is a vertex centered median dual built over a 2D triangulation
type DualMesh struct {
	coords     []utils.Vec3
	volumes    []float64
	domain     []bool
	gridVel    []utils.Vec3
	wallDist   []float64
	neighbors  [][]int
	edges      [][2]int
	edgeNormal []utils.Vec3
	pointEdges [][]int
	markers    []marker
	markerIdx  map[string]int
}

// NewDualMesh builds the median dual of an SU2 triangulation. Triangles are
// accepted in either orientation.
func NewDualMesh(mesh *readfiles.SU2Mesh) (dm *DualMesh, err error) {
	var (
		np = mesh.NPoint()
	)
	dm = &DualMesh{
		coords:     make([]utils.Vec3, np),
		volumes:    make([]float64, np),
		domain:     make([]bool, np),
		gridVel:    make([]utils.Vec3, np),
		wallDist:   make([]float64, np),
		neighbors:  make([][]int, np),
		pointEdges: make([][]int, np),
		markerIdx:  make(map[string]int),
	}
	for i := 0; i < np; i++ {
		dm.coords[i] = utils.Vec3{mesh.VX[i], mesh.VY[i], 0}
		dm.domain[i] = true
		dm.wallDist[i] = math.Inf(1)
	}
	var (
		edgeIndex = make(map[types.EdgeKey]int)
		// Third vertex of a triangle adjacent to each edge, used to orient boundary normals
		edgeOpposite = make(map[types.EdgeKey]int)
	)
	for k, tri := range mesh.Triangles {
		for _, v := range tri {
			if v < 0 || v >= np {
				return nil, fmt.Errorf("triangle %d references vertex %d outside [0,%d)", k, v, np)
			}
		}
		var (
			a, b, c = &dm.coords[tri[0]], &dm.coords[tri[1]], &dm.coords[tri[2]]
			area    = 0.5 * math.Abs((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1]))
			cent    = utils.Vec3{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3}
		)
		if area == 0 {
			return nil, fmt.Errorf("triangle %d is degenerate", k)
		}
		for n := 0; n < 3; n++ {
			dm.volumes[tri[n]] += area / 3
		}
		for n := 0; n < 3; n++ {
			var (
				i, j = tri[n], tri[(n+1)%3]
				key  = types.NewEdgeKey([2]int{i, j})
			)
			edgeOpposite[key] = tri[(n+2)%3]
			iEdge, ok := edgeIndex[key]
			if !ok {
				iEdge = len(dm.edges)
				edgeIndex[key] = iEdge
				dm.edges = append(dm.edges, key.GetVertices(false))
				dm.edgeNormal = append(dm.edgeNormal, utils.Vec3{})
			}
			var (
				ii, jj = dm.edges[iEdge][0], dm.edges[iEdge][1]
				pi, pj = &dm.coords[ii], &dm.coords[jj]
				mid    = utils.Vec3{0.5 * (pi[0] + pj[0]), 0.5 * (pi[1] + pj[1])}
				// Dual face segment from the edge midpoint to the centroid
				nx, ny = cent[1] - mid[1], -(cent[0] - mid[0])
			)
			if nx*(pj[0]-pi[0])+ny*(pj[1]-pi[1]) < 0 {
				nx, ny = -nx, -ny
			}
			dm.edgeNormal[iEdge][0] += nx
			dm.edgeNormal[iEdge][1] += ny
		}
	}
	for iEdge, e := range dm.edges {
		dm.pointEdges[e[0]] = append(dm.pointEdges[e[0]], iEdge)
		dm.pointEdges[e[1]] = append(dm.pointEdges[e[1]], iEdge)
		dm.neighbors[e[0]] = append(dm.neighbors[e[0]], e[1])
		dm.neighbors[e[1]] = append(dm.neighbors[e[1]], e[0])
	}
	for i := range dm.neighbors {
		sort.Ints(dm.neighbors[i])
	}
	for _, tag := range mesh.MarkerOrder {
		var (
			m       = marker{tag: tag}
			vertIdx = make(map[int]int)
		)
		for _, seg := range mesh.Markers[tag] {
			var (
				v     = seg.GetVertices()
				key   = seg.GetKey()
				opp   int
				found bool
			)
			if opp, found = edgeOpposite[key]; !found {
				return nil, fmt.Errorf("marker %s segment %v is not a triangle edge", tag, v)
			}
			var (
				p0, p1 = &dm.coords[v[0]], &dm.coords[v[1]]
				pc     = &dm.coords[opp]
				// Segment normal with magnitude equal to its length
				nx, ny = p1[1] - p0[1], -(p1[0] - p0[0])
				mx, my = 0.5 * (p0[0] + p1[0]), 0.5 * (p0[1] + p1[1])
			)
			if nx*(pc[0]-mx)+ny*(pc[1]-my) > 0 {
				nx, ny = -nx, -ny
			}
			for _, node := range v {
				iv, ok := vertIdx[node]
				if !ok {
					iv = len(m.nodes)
					vertIdx[node] = iv
					m.nodes = append(m.nodes, node)
					m.normals = append(m.normals, utils.Vec3{})
				}
				m.normals[iv][0] += 0.5 * nx
				m.normals[iv][1] += 0.5 * ny
			}
		}
		m.normalNeighbor = make([]int, len(m.nodes))
		dm.markerIdx[tag] = len(dm.markers)
		dm.markers = append(dm.markers, m)
	}
	boundary := make([]bool, np)
	for _, m := range dm.markers {
		for _, iPoint := range m.nodes {
			boundary[iPoint] = true
		}
	}
	for iMarker := range dm.markers {
		dm.findNormalNeighbors(iMarker, boundary)
	}
	return
}

// findNormalNeighbors picks, for each vertex, the neighbor whose direction has the largest cosine with the
// inward normal. Interior neighbors are preferred, a boundary neighbor is used only when there is no other.
func (dm *DualMesh) findNormalNeighbors(iMarker int, boundary []bool) {
	m := &dm.markers[iMarker]
	for iv, iPoint := range m.nodes {
		var (
			best   = -1
			cosMax = -2.
			nrm    = utils.Norm(2, &m.normals[iv])
		)
		for _, interiorOnly := range []bool{true, false} {
			for _, jPoint := range dm.neighbors[iPoint] {
				if interiorOnly && boundary[jPoint] {
					continue
				}
				d := utils.DistanceVector(2, &dm.coords[iPoint], &dm.coords[jPoint])
				cosA := -utils.Dot(2, &d, &m.normals[iv]) / (utils.Norm(2, &d) * nrm)
				if cosA >= cosMax {
					best, cosMax = jPoint, cosA
				}
			}
			if best != -1 {
				break
			}
		}
		m.normalNeighbor[iv] = best
	}
}

// ComputeWallDistance sets the distance of every point to the nearest segment of the given markers
func (dm *DualMesh) ComputeWallDistance(mesh *readfiles.SU2Mesh, wallTags []string) {
	var segs [][2]int
	for _, tag := range wallTags {
		for _, seg := range mesh.Markers[tag] {
			segs = append(segs, seg.GetVertices())
		}
	}
	for i := range dm.coords {
		dMin := math.Inf(1)
		for _, s := range segs {
			if d := pointSegmentDistance(&dm.coords[i], &dm.coords[s[0]], &dm.coords[s[1]]); d < dMin {
				dMin = d
			}
		}
		dm.wallDist[i] = dMin
	}
}

func pointSegmentDistance(p, a, b *utils.Vec3) float64 {
	var (
		ab = utils.DistanceVector(2, a, b)
		ap = utils.DistanceVector(2, a, p)
		l2 = utils.SquaredNorm(2, &ab)
		t  float64
	)
	if l2 > 0 {
		t = math.Max(0, math.Min(1, utils.Dot(2, &ap, &ab)/l2))
	}
	proj := utils.Vec3{a[0] + t*ab[0], a[1] + t*ab[1]}
	return utils.Distance(2, p, &proj)
}

func (dm *DualMesh) SetDomain(iPoint int, isDomain bool)      { dm.domain[iPoint] = isDomain }
func (dm *DualMesh) SetGridVel(iPoint int, gridVel utils.Vec3) { dm.gridVel[iPoint] = gridVel }
func (dm *DualMesh) SetWallDistance(iPoint int, d float64)     { dm.wallDist[iPoint] = d }

func (dm *DualMesh) NDim() int                        { return 2 }
func (dm *DualMesh) NPoint() int                      { return len(dm.coords) }
func (dm *DualMesh) Coord(iPoint int) *utils.Vec3     { return &dm.coords[iPoint] }
func (dm *DualMesh) Volume(iPoint int) float64        { return dm.volumes[iPoint] }
func (dm *DualMesh) IsDomain(iPoint int) bool         { return dm.domain[iPoint] }
func (dm *DualMesh) GridVel(iPoint int) *utils.Vec3   { return &dm.gridVel[iPoint] }
func (dm *DualMesh) WallDistance(iPoint int) float64  { return dm.wallDist[iPoint] }
func (dm *DualMesh) Neighbors(iPoint int) []int       { return dm.neighbors[iPoint] }
func (dm *DualMesh) NEdge() int                       { return len(dm.edges) }
func (dm *DualMesh) EdgeNormal(iEdge int) *utils.Vec3 { return &dm.edgeNormal[iEdge] }
func (dm *DualMesh) PointEdges(iPoint int) []int      { return dm.pointEdges[iPoint] }
func (dm *DualMesh) NMarker() int                     { return len(dm.markers) }
func (dm *DualMesh) MarkerTag(iMarker int) string     { return dm.markers[iMarker].tag }
func (dm *DualMesh) NVertex(iMarker int) int          { return len(dm.markers[iMarker].nodes) }

func (dm *DualMesh) EdgeNodes(iEdge int) (iPoint, jPoint int) {
	return dm.edges[iEdge][0], dm.edges[iEdge][1]
}

func (dm *DualMesh) MarkerIndex(tag string) (iMarker int, ok bool) {
	iMarker, ok = dm.markerIdx[tag]
	return
}

func (dm *DualMesh) VertexNode(iMarker, iVertex int) int {
	return dm.markers[iMarker].nodes[iVertex]
}

func (dm *DualMesh) VertexNormal(iMarker, iVertex int) *utils.Vec3 {
	return &dm.markers[iMarker].normals[iVertex]
}

func (dm *DualMesh) NormalNeighbor(iMarker, iVertex int) int {
	return dm.markers[iMarker].normalNeighbor[iVertex]
}

// EdgePairs lists the node pairs of every edge, the sparsity pattern of the Jacobian
func (dm *DualMesh) EdgePairs() [][2]int { return dm.edges }
