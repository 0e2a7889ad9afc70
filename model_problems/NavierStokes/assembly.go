package NavierStokes

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/notargets/gorans/types"
)

// Diagnostics is the outcome of one assembly pass. Every counter and integral
// has been reduced over all partitions.
type Diagnostics struct {
	NonPhysical  int
	WallFunction WallFunctionCounters
	// Residual RMS per equation of the flow and turbulence systems
	ResidualRMS     []float64
	TurbResidualRMS []float64
	BuffetMetric    float64
	ComboObjective  float64
}

// Assemble updates the primitive state and gradients, then builds the viscous
// wall and turbulence contributions of the residual and Jacobian
func (ns *NSSolver) Assemble() (diag Diagnostics) {
	ns.ClearLinearSystem()

	diag.NonPhysical = ns.SetPrimitiveVariables()
	ns.SetPrimitiveGradient()
	diag.WallFunction = ns.SetTauWallWF()

	if ts := ns.Turb; ts != nil {
		ts.Preprocessing()
	}

	ns.ViscousWallBCs()

	if ts := ns.Turb; ts != nil {
		ts.SourceResidual()
		ts.ViscousResidual()
		ts.WallBCs()
		ts.ImposeFixedValues()
	}

	ns.FrictionForces()
	ns.BuffetMonitoring()
	ns.EvaluateObjFunc()
	diag.BuffetMetric = ns.TotalBuffetMetric
	diag.ComboObjective = ns.TotalComboObj

	diag.ResidualRMS = ns.residualRMS(ns.LinSysRes.Data(), ns.NVar)
	if ns.Turb != nil {
		diag.TurbResidualRMS = ns.residualRMS(ns.Turb.LinSysRes.Data(), ns.Turb.NVar)
	}

	if ns.Comm != types.COMM_None && ns.Reducer.Rank() == 0 {
		ns.Log.WithFields(logrus.Fields{
			"nonPhysical":  diag.NonPhysical,
			"buffetMetric": diag.BuffetMetric,
			"comboObj":     diag.ComboObjective,
		}).Debugf("assembly residual RMS %v", diag.ResidualRMS)
	}
	return
}

// residualRMS is the root mean square of each equation over the domain points of every partition
func (ns *NSSolver) residualRMS(data []float64, nVar int) (rms []float64) {
	local := make([]float64, nVar+1)
	for iPoint := 0; iPoint < ns.Geom.NPoint(); iPoint++ {
		if !ns.Geom.IsDomain(iPoint) {
			continue
		}
		for iVar := 0; iVar < nVar; iVar++ {
			r := data[iPoint*nVar+iVar]
			local[iVar] += r * r
		}
		local[nVar]++
	}
	global := ns.Reducer.AllReduceSum(local)
	rms = make([]float64, nVar)
	if global[nVar] == 0 {
		return
	}
	for iVar := range rms {
		rms[iVar] = math.Sqrt(global[iVar] / global[nVar])
	}
	return
}
