package Turbulence

import (
	"fmt"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// EdgeState is the two point snapshot read by a diffusion flux. Normal is the
// area weighted dual face normal oriented from point i to point j.
type EdgeState struct {
	NDim                 int
	Normal               utils.Vec3
	CoordI, CoordJ       utils.Vec3
	DensityI, DensityJ   float64
	LamViscI, LamViscJ   float64
	EddyViscI, EddyViscJ float64
	TurbVarI, TurbVarJ   [2]float64
	TurbGradI, TurbGradJ [2]utils.Vec3
	F1I, F1J             float64
}

// DiffusionKernel computes the viscous flux of the turbulence equations across
// one dual face and its Jacobians with respect to the unknowns at i and j
type DiffusionKernel interface {
	ComputeFlux(es *EdgeState) (flux utils.BlockVec, jacI, jacJ utils.Block)
}

func NewDiffusionKernel(model types.TURB_MODEL) (dk DiffusionKernel, err error) {
	switch {
	case model.IsSA():
		dk = &SADiffusion{C: NewSAConstants(), Negative: model == types.TURB_SA_Neg}
	case model.IsSST():
		dk = &SSTDiffusion{C: NewSSTConstants()}
	default:
		err = fmt.Errorf("no diffusion kernel for turbulence model %s", model)
	}
	return
}

// projectedMeanGradient is the face normal projection of the averaged
// gradient, corrected along the edge with the direct difference
func projectedMeanGradient(nVar int, es *EdgeState) (proj [2]float64, projVector float64) {
	var (
		nDim  = es.NDim
		edge  = utils.DistanceVector(nDim, &es.CoordI, &es.CoordJ)
		dist2 = utils.SquaredNorm(nDim, &edge)
	)
	projVector = utils.Dot(nDim, &edge, &es.Normal) / dist2
	for iVar := 0; iVar < nVar; iVar++ {
		var mean utils.Vec3
		for d := 0; d < nDim; d++ {
			mean[d] = 0.5 * (es.TurbGradI[iVar][d] + es.TurbGradJ[iVar][d])
		}
		corr := utils.Dot(nDim, &mean, &edge) - (es.TurbVarJ[iVar] - es.TurbVarI[iVar])
		proj[iVar] = utils.Dot(nDim, &mean, &es.Normal) - corr*projVector
	}
	return
}

type SADiffusion struct {
	C        SAConstants
	Negative bool
}

// ComputeFlux diffuses nu_tilde with the dynamic diffusivity mu_lam + rho*nu_tilde,
// consistent with the density weighted source terms
func (sd *SADiffusion) ComputeFlux(es *EdgeState) (flux utils.BlockVec, jacI, jacJ utils.Block) {
	const cn1 = 16.
	var (
		sigma            = sd.C.Sigma
		rhoIJ            = 0.5 * (es.DensityI + es.DensityJ)
		muLam            = 0.5 * (es.LamViscI + es.LamViscJ)
		nuTij            = 0.5 * (es.TurbVarI[0] + es.TurbVarJ[0])
		diff             = muLam + rhoIJ*nuTij
		proj, projVector = projectedMeanGradient(1, es)
	)
	if sd.Negative && nuTij < 0 {
		Xi := rhoIJ * nuTij / muLam
		Xi3 := Xi * Xi * Xi
		fn := (cn1 + Xi3) / (cn1 - Xi3)
		diff = muLam + fn*rhoIJ*nuTij
	}
	flux[0] = diff * proj[0] / sigma
	jacI[0][0] = (0.5*rhoIJ*proj[0] - diff*projVector) / sigma
	jacJ[0][0] = (0.5*rhoIJ*proj[0] + diff*projVector) / sigma
	return
}

type SSTDiffusion struct {
	C SSTConstants
}

func (sd *SSTDiffusion) ComputeFlux(es *EdgeState) (flux utils.BlockVec, jacI, jacJ utils.Block) {
	var (
		c                = &sd.C
		sigKI            = blend(es.F1I, c.SigmaK1, c.SigmaK2)
		sigKJ            = blend(es.F1J, c.SigmaK1, c.SigmaK2)
		sigWI            = blend(es.F1I, c.SigmaW1, c.SigmaW2)
		sigWJ            = blend(es.F1J, c.SigmaW1, c.SigmaW2)
		muLam            = 0.5 * (es.LamViscI + es.LamViscJ)
		diffK            = muLam + 0.5*(es.EddyViscI*sigKI+es.EddyViscJ*sigKJ)
		diffW            = muLam + 0.5*(es.EddyViscI*sigWI+es.EddyViscJ*sigWJ)
		proj, projVector = projectedMeanGradient(2, es)
	)
	flux[0] = diffK * proj[0]
	flux[1] = diffW * proj[1]
	jacI[0][0] = -diffK * projVector / es.DensityI
	jacI[1][1] = -diffW * projVector / es.DensityI
	jacJ[0][0] = diffK * projVector / es.DensityJ
	jacJ[1][1] = diffW * projVector / es.DensityJ
	return
}
