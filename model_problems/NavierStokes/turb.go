package NavierStokes

import (
	"fmt"
	"math"

	"github.com/notargets/gorans/model_problems/Turbulence"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// TurbSolver holds the turbulence state. SA stores nu_tilde, SST stores k and
// omega while its equations are written for rho*k and rho*omega.
type TurbSolver struct {
	ns        *NSSolver
	Model     types.TURB_MODEL
	NVar      int
	Source    Turbulence.SourceKernel
	Diffusion Turbulence.DiffusionKernel
	SA        Turbulence.SAConstants
	SST       Turbulence.SSTConstants
	// Point state
	Solution, SolutionOld []utils.BlockVec
	Grad                  [][2]utils.Vec3
	MuT                   []float64
	F1, F2, CDkw          []float64
	SolutionInf           utils.BlockVec
	// Linear system of the turbulence equations
	LinSysRes *utils.BlockVector
	Jacobian  *utils.BlockSparse
	// Edge flux buffers, written per edge and gathered per point
	EdgePartitions     *utils.PartitionMap
	edgeFlux           []utils.BlockVec
	edgeJacI, edgeJacJ []utils.Block
}

func NewTurbSolver(ns *NSSolver, pairs [][2]int) (ts *TurbSolver, err error) {
	var (
		ip     = ns.Params
		nPoint = ns.Geom.NPoint()
		nEdge  = ns.Geom.NEdge()
		opt    = Turbulence.SourceOptions{
			Axisymmetric:       ip.Axisymmetric,
			RotatingFrame:      ip.RotatingFrame,
			UseStrainMagnitude: ip.SAStrainMagnitude,
			AmbientK:           ip.SSTAmbientK,
			AmbientOmega:       ip.SSTAmbientOmega,
		}
	)
	ts = &TurbSolver{
		ns:          ns,
		Model:       ns.Model,
		NVar:        ns.Model.NVar(),
		SA:          Turbulence.NewSAConstants(),
		SST:         Turbulence.NewSSTConstants(),
		Solution:    make([]utils.BlockVec, nPoint),
		SolutionOld: make([]utils.BlockVec, nPoint),
		Grad:        make([][2]utils.Vec3, nPoint),
		MuT:         make([]float64, nPoint),
		F1:          make([]float64, nPoint),
		F2:          make([]float64, nPoint),
		CDkw:        make([]float64, nPoint),
		edgeFlux:    make([]utils.BlockVec, nEdge),
		edgeJacI:    make([]utils.Block, nEdge),
		edgeJacJ:    make([]utils.Block, nEdge),
	}
	if ts.Source, err = Turbulence.NewSourceKernel(ns.Model, opt); err != nil {
		return nil, fmt.Errorf("turbulence setup: %w", err)
	}
	if ts.Diffusion, err = Turbulence.NewDiffusionKernel(ns.Model); err != nil {
		return nil, fmt.Errorf("turbulence setup: %w", err)
	}
	ts.LinSysRes = utils.NewBlockVector(nPoint, ts.NVar)
	ts.Jacobian = utils.NewBlockSparse(nPoint, ts.NVar, pairs)
	if nEdge > 0 {
		ts.EdgePartitions = utils.NewPartitionMap(utils.ParallelDegree(ip.ProcLimit, nEdge), nEdge)
	}

	var (
		rhoInf = ip.DensityInf
		muInf  = ip.ViscosityInf
	)
	if ts.Model.IsSA() {
		ts.SolutionInf[0] = 3 * muInf / rhoInf
	} else {
		var (
			vel2 = utils.SquaredNorm(ns.NDim, &ns.VelocityInf)
			I    = ip.TurbulenceIntensity
			kInf = 1.5 * vel2 * I * I
		)
		ts.SolutionInf[0] = kInf
		ts.SolutionInf[1] = rhoInf * kInf / (muInf * ip.TurbViscRatio)
	}
	return
}

func (ts *TurbSolver) InitializeFreestream() {
	ip := ts.ns.Params
	for iPoint := range ts.Solution {
		ts.Solution[iPoint] = ts.SolutionInf
		ts.SolutionOld[iPoint] = ts.SolutionInf
		if ts.Model.IsSA() {
			ts.MuT[iPoint] = ts.SA.EddyViscosity(ip.DensityInf, ip.ViscosityInf, ts.SolutionInf[0])
		} else if ts.SolutionInf[1] > 0 {
			ts.MuT[iPoint] = ip.DensityInf * ts.SolutionInf[0] / ts.SolutionInf[1]
		}
	}
}

// FreestreamKE is the turbulent kinetic energy carried in the flow energy
func (ts *TurbSolver) FreestreamKE() float64 {
	if ts.Model.IsSST() {
		return ts.SolutionInf[0]
	}
	return 0
}

// Preprocessing computes the turbulence gradients, the SST blending functions
// and the eddy viscosity, which is copied into the flow state
func (ts *TurbSolver) Preprocessing() {
	var (
		ns   = ts.ns
		fn   = ns.Nodes
		nDim = ns.NDim
	)
	GreenGauss(ns.Geom, ns.boundaryNormalSum, ns.Partitions, ts.NVar,
		func(iPoint, iVar int) float64 { return ts.Solution[iPoint][iVar] },
		func(iPoint, iVar int) *utils.Vec3 { return &ts.Grad[iPoint][iVar] })
	ns.Partitions.ParallelFor(func(bucket, kMin, kMax int) {
		for iPoint := kMin; iPoint < kMax; iPoint++ {
			var (
				rho = fn.Density[iPoint]
				mu  = fn.LamVisc[iPoint]
			)
			if ts.Model.IsSA() {
				ts.MuT[iPoint] = ts.SA.EddyViscosity(rho, mu, ts.Solution[iPoint][0])
			} else {
				var (
					k, omega = ts.Solution[iPoint][0], ts.Solution[iPoint][1]
					dist     = ns.Geom.WallDistance(iPoint)
				)
				ts.F1[iPoint], ts.F2[iPoint], ts.CDkw[iPoint] = ts.SST.Blending(nDim, rho, mu, k, omega,
					math.Max(dist, 1.e-20), &ts.Grad[iPoint][0], &ts.Grad[iPoint][1])
				ts.MuT[iPoint] = ts.SST.EddyViscosity(rho, k, omega, fn.StrainMag[iPoint], ts.F2[iPoint])
			}
			fn.EddyVisc[iPoint] = ts.MuT[iPoint]
		}
	})
}

func (ts *TurbSolver) pointState(iPoint int) (ps Turbulence.PointState) {
	var (
		ns = ts.ns
		fn = ns.Nodes
	)
	ps = Turbulence.PointState{
		NDim:        ns.NDim,
		Coord:       *ns.Geom.Coord(iPoint),
		Volume:      ns.Geom.Volume(iPoint),
		Dist:        ns.Geom.WallDistance(iPoint),
		Density:     fn.Density[iPoint],
		LamVisc:     fn.LamVisc[iPoint],
		EddyVisc:    ts.MuT[iPoint],
		SoundSpeed2: fn.SoundSpeed2[iPoint],
		Velocity:    fn.Velocity[iPoint],
		VelGrad:     fn.GradVel[iPoint],
		Vorticity:   fn.Vorticity[iPoint],
		StrainMag:   fn.StrainMag[iPoint],
		TurbVar:     [2]float64{ts.Solution[iPoint][0], ts.Solution[iPoint][1]},
		TurbGrad:    ts.Grad[iPoint],
		F1:          ts.F1[iPoint],
		F2:          ts.F2[iPoint],
		CDkw:        ts.CDkw[iPoint],
	}
	return
}

// SourceResidual subtracts the volume source of every domain point from the residual
func (ts *TurbSolver) SourceResidual() {
	ns := ts.ns
	ns.pointLoop(func(bucket, iPoint int) {
		ps := ts.pointState(iPoint)
		res, jac := ts.Source.ComputeResidual(&ps)
		ts.LinSysRes.SubtractBlock(iPoint, &res)
		if ns.Implicit {
			ts.Jacobian.SubtractBlock2Diag(iPoint, &jac)
		}
	})
}

// ViscousResidual evaluates the diffusion flux of every edge into the edge
// buffers, then each point gathers the fluxes of its own edges
func (ts *TurbSolver) ViscousResidual() {
	var (
		ns   = ts.ns
		fn   = ns.Nodes
		geom = ns.Geom
	)
	if ts.EdgePartitions == nil {
		return
	}
	ts.EdgePartitions.ParallelFor(func(bucket, kMin, kMax int) {
		for iEdge := kMin; iEdge < kMax; iEdge++ {
			i, j := geom.EdgeNodes(iEdge)
			es := Turbulence.EdgeState{
				NDim:      ns.NDim,
				Normal:    *geom.EdgeNormal(iEdge),
				CoordI:    *geom.Coord(i),
				CoordJ:    *geom.Coord(j),
				DensityI:  fn.Density[i],
				DensityJ:  fn.Density[j],
				LamViscI:  fn.LamVisc[i],
				LamViscJ:  fn.LamVisc[j],
				EddyViscI: ts.MuT[i],
				EddyViscJ: ts.MuT[j],
				TurbVarI:  [2]float64{ts.Solution[i][0], ts.Solution[i][1]},
				TurbVarJ:  [2]float64{ts.Solution[j][0], ts.Solution[j][1]},
				TurbGradI: ts.Grad[i],
				TurbGradJ: ts.Grad[j],
				F1I:       ts.F1[i],
				F1J:       ts.F1[j],
			}
			ts.edgeFlux[iEdge], ts.edgeJacI[iEdge], ts.edgeJacJ[iEdge] = ts.Diffusion.ComputeFlux(&es)
		}
	})
	ns.pointLoop(func(bucket, iPoint int) {
		for _, iEdge := range geom.PointEdges(iPoint) {
			var (
				i, j = geom.EdgeNodes(iEdge)
				flux = &ts.edgeFlux[iEdge]
			)
			if iPoint == i {
				ts.LinSysRes.SubtractBlock(i, flux)
				if ns.Implicit {
					ts.Jacobian.SubtractBlock(i, i, &ts.edgeJacI[iEdge])
					ts.Jacobian.SubtractBlock(i, j, &ts.edgeJacJ[iEdge])
				}
				continue
			}
			ts.LinSysRes.AddBlock(j, flux)
			if ns.Implicit {
				ts.Jacobian.AddBlock(j, i, &ts.edgeJacI[iEdge])
				ts.Jacobian.AddBlock(j, j, &ts.edgeJacJ[iEdge])
			}
		}
	})
}

// WallBCs imposes the low Reynolds number wall values strongly on every viscous wall
func (ts *TurbSolver) WallBCs() {
	ns := ts.ns
	for iMarker, ms := range ns.Markers {
		if ms == nil || !ms.Kind.IsViscousWall() {
			continue
		}
		ns.vertexLoop(iMarker, func(bucket, iVertex, iPoint int) {
			sol := &ts.Solution[iPoint]
			if ts.Model.IsSA() {
				sol[0] = 0
			} else {
				var (
					pointNormal = ns.Geom.NormalNeighbor(iMarker, iVertex)
					dist        = ns.wallDistance(iPoint, pointNormal)
					rho         = ns.Nodes.Density[pointNormal]
					mu          = ns.Nodes.LamVisc[pointNormal]
				)
				sol[0] = 0
				sol[1] = 60 * mu / (rho * ts.SST.Beta1 * dist * dist)
			}
			ts.SolutionOld[iPoint] = *sol
			ts.strongRow(iPoint)
		})
	}
}

// ImposeFixedValues holds the SST variables at their freestream values
// upstream of the plane coord.unit(V_inf) = FixedTurbulenceMaxProj
func (ts *TurbSolver) ImposeFixedValues() {
	var (
		ns = ts.ns
		ip = ns.Params
	)
	if !ip.FixedTurbulence || !ts.Model.IsSST() {
		return
	}
	var (
		unitVel utils.Vec3
		velMag  = utils.Norm(ns.NDim, &ns.VelocityInf)
	)
	if velMag == 0 {
		panic("Far-field velocity is zero, cannot fix turbulence quantities to inflow values.")
	}
	for d := 0; d < ns.NDim; d++ {
		unitVel[d] = ns.VelocityInf[d] / velMag
	}
	ns.pointLoop(func(bucket, iPoint int) {
		if utils.Dot(ns.NDim, ns.Geom.Coord(iPoint), &unitVel) >= ip.FixedTurbulenceMaxProj {
			return
		}
		ts.Solution[iPoint] = ts.SolutionInf
		ts.SolutionOld[iPoint] = ts.SolutionInf
		ts.strongRow(iPoint)
	})
}

// strongRow removes the residual of a point and replaces its Jacobian rows with identity rows
func (ts *TurbSolver) strongRow(iPoint int) {
	ts.LinSysRes.SetBlockZero(iPoint)
	if !ts.ns.Implicit {
		return
	}
	for iVar := 0; iVar < ts.NVar; iVar++ {
		ts.Jacobian.DeleteValsRowi(iPoint*ts.NVar + iVar)
	}
}
