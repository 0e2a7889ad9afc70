package NavierStokes

import (
	"github.com/notargets/gorans/utils"
)

// addDynamicGridContribution adds the pressure work and the work of the viscous
// stress on a moving wall to the energy equation. unitNormal points into the
// fluid. jac is nil for explicit integration.
func (ns *NSSolver) addDynamicGridContribution(iPoint, pointNormal int, unitNormal *utils.Vec3, area float64,
	gridVel *utils.Vec3, jac *utils.Block, resConv, resVisc *float64) {
	var (
		nDim        = ns.NDim
		fn          = ns.Nodes
		gamma       = ns.Gas.Gamma
		projGridVel = area * utils.Dot(nDim, gridVel, unitNormal)
		rho         = fn.Density[iPoint]
		muTotal     = fn.LamVisc[iPoint] + fn.EddyVisc[iPoint]
		tau         = ComputeStressTensor(nDim, &fn.GradVel[iPoint], muTotal)
		tauVel      utils.Vec3
	)
	for i := 0; i < nDim; i++ {
		tauVel[i] = utils.Dot(nDim, &tau[i], gridVel)
	}
	*resConv += fn.Pressure[iPoint] * projGridVel
	*resVisc += utils.Dot(nDim, &tauVel, unitNormal) * area

	if jac == nil {
		return
	}
	// Pressure work
	row := &jac[nDim+1]
	row[0] += 0.5 * (gamma - 1) * utils.SquaredNorm(nDim, gridVel) * projGridVel
	for j := 0; j < nDim; j++ {
		row[j+1] -= (gamma - 1) * gridVel[j] * projGridVel
	}
	row[nDim+1] += (gamma - 1) * projGridVel

	// Shear stress work, thin layer approximation across the first cell
	var (
		dist   = ns.wallDistance(iPoint, pointNormal)
		factor = muTotal * area / (rho * dist)
		n      = unitNormal
		vg     = gridVel
	)
	if nDim == 2 {
		var (
			thetax = 1 + n[0]*n[0]/3
			thetay = 1 + n[1]*n[1]/3
			etaz   = n[0] * n[1] / 3
			pix    = vg[0]*thetax + vg[1]*etaz
			piy    = vg[0]*etaz + vg[1]*thetay
		)
		row[0] += factor * (-pix*vg[0] + piy*vg[1])
		row[1] += factor * pix
		row[2] += factor * piy
		return
	}
	var (
		thetax = 1 + n[0]*n[0]/3
		thetay = 1 + n[1]*n[1]/3
		thetaz = 1 + n[2]*n[2]/3
		etaz   = n[0] * n[1] / 3
		etax   = n[1] * n[2] / 3
		etay   = n[0] * n[2] / 3
		pix    = vg[0]*thetax + vg[1]*etaz + vg[2]*etay
		piy    = vg[0]*etaz + vg[1]*thetay + vg[2]*etax
		piz    = vg[0]*etay + vg[1]*etax + vg[2]*thetaz
	)
	row[0] += factor * (-pix*vg[0] + piy*vg[1] + piz*vg[2])
	row[1] += factor * pix
	row[2] += factor * piy
	row[3] += factor * piz
}
