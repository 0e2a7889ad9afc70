package NavierStokes

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/geometry"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// MarkerState is the configuration and the per vertex results of one mesh marker
type MarkerState struct {
	InputParameters.MarkerParameters
	Index int // Marker index in the geometry
	// Wall function cache, also used to warm start a restart
	YPlus, EddyViscWall, UTau []float64
	CSkinFriction             []utils.Vec3
	BuffetSensor              []float64
	BuffetMetric              float64
	// Conjugate side data per vertex: temperature, heat flux, heat flux factor
	Conjugate [][3]float64
}

func newMarkerState(mp InputParameters.MarkerParameters, iMarker, nVertex int) (ms *MarkerState) {
	ms = &MarkerState{
		MarkerParameters: mp,
		Index:            iMarker,
		YPlus:            make([]float64, nVertex),
		EddyViscWall:     make([]float64, nVertex),
		UTau:             make([]float64, nVertex),
		CSkinFriction:    make([]utils.Vec3, nVertex),
		BuffetSensor:     make([]float64, nVertex),
		Conjugate:        make([][3]float64, nVertex),
	}
	for iVertex := range ms.Conjugate {
		ms.Conjugate[iVertex] = [3]float64{mp.ConjugateTemperature, 0, mp.ConjugateHFFactor}
	}
	return
}

type NSSolver struct {
	Geom     geometry.Geometry
	Params   *InputParameters.RANSParameters
	Gas      *GasModel
	Regime   types.FLOW_REGIME
	Model    types.TURB_MODEL
	Coupling types.CHT_COUPLING
	Comm     types.COMM_LEVEL
	// Implicit assembles the Jacobian, Energy is false only for incompressible flow without temperature
	Implicit, DynamicGrid, Energy bool
	NDim, NVar                    int
	VelocityInf                   utils.Vec3
	Nodes                         *FlowNodes
	Turb                          *TurbSolver // Nil for laminar flow
	LinSysRes                     *utils.BlockVector
	Jacobian                      *utils.BlockSparse
	// Markers is indexed by the geometry marker index, unconfigured markers are nil
	Markers           []*MarkerState
	Monitored         []string // Tags of the monitored markers in sorted order
	ParallelDegree    int
	Partitions        *utils.PartitionMap   // Points
	VertexPartitions  []*utils.PartitionMap // Vertices of each marker
	Reducer           utils.Reducer
	Log               logrus.FieldLogger
	boundaryNormalSum []utils.Vec3
	// Integrated surface results, identical on every partition after a reduction
	TotalBuffetMetric   float64
	SurfaceBuffetMetric []float64 // Aligned with Monitored
	TotalComboObj       float64
}

// NewNSSolver validates the input deck against the mesh and allocates the flow
// and turbulence state. A nil reducer runs a single partition.
func NewNSSolver(geom geometry.Geometry, ip *InputParameters.RANSParameters, reducer utils.Reducer) (ns *NSSolver, err error) {
	if err = ip.Validate(); err != nil {
		err = fmt.Errorf("invalid input deck: %w", err)
		return
	}
	if reducer == nil {
		reducer = utils.LocalReducer{}
	}
	nDim := geom.NDim()
	ns = &NSSolver{
		Geom:        geom,
		Params:      ip,
		Gas:         NewGasModel(ip),
		Implicit:    !ip.Explicit,
		DynamicGrid: ip.DynamicGrid,
		NDim:        nDim,
		NVar:        nDim + 2,
		Reducer:     reducer,
		Log:         logrus.StandardLogger(),
	}
	// Enumerations were checked by Validate
	ns.Regime, _ = types.NewFlowRegime(ip.FlowRegime)
	ns.Model, _ = types.NewTurbModel(ip.TurbulenceModel)
	ns.Coupling, _ = types.NewCHTCoupling(ip.CHTCoupling)
	ns.Comm, _ = types.NewCommLevel(ip.CommLevel)
	ns.Energy = ns.Regime == types.Compressible || !ip.NoEnergyEquation
	copy(ns.VelocityInf[:], ip.VelocityInf[:nDim])

	ns.Markers = make([]*MarkerState, geom.NMarker())
	ns.VertexPartitions = make([]*utils.PartitionMap, geom.NMarker())
	for _, tag := range ip.MarkerTags() {
		iMarker, ok := geom.MarkerIndex(tag)
		if !ok {
			err = multierr.Append(err, fmt.Errorf("marker [%s] not found in mesh", tag))
			continue
		}
		mp, _ := ip.GetMarker(tag)
		ns.Markers[iMarker] = newMarkerState(mp, iMarker, geom.NVertex(iMarker))
		if mp.Monitoring {
			ns.Monitored = append(ns.Monitored, tag)
		}
	}
	if err != nil {
		return nil, err
	}
	ns.SurfaceBuffetMetric = make([]float64, len(ns.Monitored))

	ns.SetParallelDegree(ip.ProcLimit, geom.NPoint())
	ns.PartitionVertices()
	ns.boundaryNormalSum = BoundaryNormalSums(geom)

	var (
		nPoint = geom.NPoint()
		pairs  = make([][2]int, geom.NEdge())
	)
	for iEdge := range pairs {
		pairs[iEdge][0], pairs[iEdge][1] = geom.EdgeNodes(iEdge)
	}
	ns.Nodes = NewFlowNodes(nPoint, nDim, ns.Regime)
	ns.LinSysRes = utils.NewBlockVector(nPoint, ns.NVar)
	ns.Jacobian = utils.NewBlockSparse(nPoint, ns.NVar, pairs)

	if ns.Model != types.TURB_None {
		if ns.Turb, err = NewTurbSolver(ns, pairs); err != nil {
			return nil, err
		}
	}
	ns.InitializeFreestream()
	return
}

// SetLogger replaces the diagnostic logger
func (ns *NSSolver) SetLogger(log logrus.FieldLogger) { ns.Log = log }

// InitializeFreestream sets every point to the freestream state
func (ns *NSSolver) InitializeFreestream() {
	var (
		ip     = ns.Params
		turbKE float64
	)
	if ns.Turb != nil {
		ns.Turb.InitializeFreestream()
		turbKE = ns.Turb.FreestreamKE()
	}
	for iPoint := 0; iPoint < ns.Geom.NPoint(); iPoint++ {
		ns.Nodes.SetConservative(ns.Gas, iPoint, ip.PressureInf, ip.TemperatureInf, &ns.VelocityInf, turbKE)
	}
}

// InitializeWallProfile scales the freestream velocity linearly with the wall
// distance inside a layer of the given thickness, giving the wall treatment a
// nonzero shear on the first pass
func (ns *NSSolver) InitializeWallProfile(thickness float64) {
	ns.InitializeFreestream()
	if thickness <= 0 {
		return
	}
	var (
		ip     = ns.Params
		turbKE float64
	)
	if ns.Turb != nil {
		turbKE = ns.Turb.FreestreamKE()
	}
	for iPoint := 0; iPoint < ns.Geom.NPoint(); iPoint++ {
		scale := ns.Geom.WallDistance(iPoint) / thickness
		if scale >= 1 {
			continue
		}
		var vel utils.Vec3
		for d := 0; d < ns.NDim; d++ {
			vel[d] = scale * ns.VelocityInf[d]
		}
		ns.Nodes.SetConservative(ns.Gas, iPoint, ip.PressureInf, ip.TemperatureInf, &vel, turbKE)
	}
}

// ClearLinearSystem zeroes the residual and the Jacobian values, keeping the sparsity pattern
func (ns *NSSolver) ClearLinearSystem() {
	ns.LinSysRes.SetValZero()
	ns.Jacobian.SetValZero()
	if ns.Turb != nil {
		ns.Turb.LinSysRes.SetValZero()
		ns.Turb.Jacobian.SetValZero()
	}
}

// SetPrimitiveVariables updates the primitive state of every point and returns the
// number of non physical points summed over all partitions
func (ns *NSSolver) SetPrimitiveVariables() (nonPhysical int) {
	counts := make([]int, ns.Partitions.ParallelDegree)
	ns.Partitions.ParallelFor(func(bucket, kMin, kMax int) {
		for iPoint := kMin; iPoint < kMax; iPoint++ {
			var eddyVisc, turbKE float64
			if ns.Turb != nil {
				eddyVisc = ns.Turb.MuT[iPoint]
				if ns.Model.IsSST() {
					turbKE = ns.Turb.Solution[iPoint][0]
				}
			}
			if !ns.Nodes.SetPrimVar(ns.Gas, iPoint, eddyVisc, turbKE) {
				counts[bucket]++
			}
		}
	})
	var local int
	for _, c := range counts {
		local += c
	}
	global := ns.Reducer.AllReduceSum([]float64{float64(local)})
	nonPhysical = int(global[0])
	if nonPhysical > 0 && ns.Comm == types.COMM_Full && ns.Reducer.Rank() == 0 {
		ns.Log.WithFields(logrus.Fields{"nonPhysical": nonPhysical}).
			Warn("non physical points restored from the previous solution")
	}
	return
}

// wallDistance is the distance from a wall vertex to its normal neighbor
func (ns *NSSolver) wallDistance(iPoint, pointNormal int) float64 {
	return utils.Distance(ns.NDim, ns.Geom.Coord(iPoint), ns.Geom.Coord(pointNormal))
}
