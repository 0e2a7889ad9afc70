package Turbulence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

func samplePointState(Omega, dist, nuT float64) (ps *PointState) {
	ps = &PointState{
		NDim:        2,
		Coord:       utils.Vec3{0.3, 0.02, 0},
		Volume:      2.e-6,
		Dist:        dist,
		Density:     1.2,
		LamVisc:     1.8e-5,
		SoundSpeed2: 340. * 340.,
		Velocity:    utils.Vec3{40, 1.5, 0},
		StrainMag:   1.1 * Omega,
	}
	// Shear dominated velocity gradient consistent with the vorticity
	ps.VelGrad[0] = utils.Vec3{0.05 * Omega, Omega, 0}
	ps.VelGrad[1] = utils.Vec3{0.02 * Omega, -0.03 * Omega, 0}
	ps.Vorticity = utils.Vec3{0, 0, ps.VelGrad[1][0] - ps.VelGrad[0][1]}
	ps.TurbVar[0] = nuT
	ps.TurbGrad[0] = utils.Vec3{0.1 * nuT, 3 * nuT, 0}
	return
}

func fdJacobian(sk SourceKernel, ps *PointState, iVar, jVar int, h float64) float64 {
	p, m := *ps, *ps
	p.TurbVar[jVar] += h
	m.TurbVar[jVar] -= h
	rp, _ := sk.ComputeResidual(&p)
	rm, _ := sk.ComputeResidual(&m)
	return (rp[iVar] - rm[iVar]) / (2 * h)
}

func TestSAJacobian(t *testing.T) {
	var (
		nu     = 1.8e-5 / 1.2
		models = []types.TURB_MODEL{types.TURB_SA, types.TURB_SA_Neg, types.TURB_SA_COMP,
			types.TURB_SA_E, types.TURB_SA_E_COMP}
		opts = []SourceOptions{{}, {Axisymmetric: true}, {RotatingFrame: true}, {UseStrainMagnitude: true}}
	)
	for _, model := range models {
		for _, opt := range opts {
			sk, err := NewSourceKernel(model, opt)
			require.NoError(t, err)
			assert.Equal(t, 1, sk.NVar())
			for _, Omega := range []float64{50, 1000, 2.e4} {
				for _, dist := range []float64{1.e-4, 3.e-3, 0.05} {
					for _, Ji := range []float64{0.3, 2.5, 40, 300} {
						ps := samplePointState(Omega, dist, Ji*nu)
						res, jac := sk.ComputeResidual(ps)
						h := 1.e-5 * ps.TurbVar[0]
						fd := fdJacobian(sk, ps, 0, 0, h)
						tol := 1.e-6 * (math.Abs(jac[0][0]) + math.Abs(res[0]/ps.TurbVar[0]))
						assert.InDeltaf(t, fd, jac[0][0], tol, "model %s opt %+v Omega %g dist %g Ji %g",
							model, opt, Omega, dist, Ji)
					}
				}
			}
		}
	}
	{ // Negative branch of SA-Neg
		sk, _ := NewSourceKernel(types.TURB_SA_Neg, SourceOptions{})
		for _, Ji := range []float64{-0.1, -3, -50} {
			ps := samplePointState(800, 1.e-3, Ji*nu)
			res, jac := sk.ComputeResidual(ps)
			fd := fdJacobian(sk, ps, 0, 0, 1.e-5*math.Abs(ps.TurbVar[0]))
			tol := 1.e-6 * (math.Abs(jac[0][0]) + math.Abs(res[0]/ps.TurbVar[0]))
			assert.InDelta(t, fd, jac[0][0], tol)
			// Vorticity magnitude is 0.98*Omega for the sample gradient
			c := NewSAConstants()
			assert.InDelta(t, (c.Cb1*(1-c.Ct3)*0.98*800+2*c.Cw1*ps.TurbVar[0]/1.e-6)*ps.Density*ps.Volume, jac[0][0],
				1.e-12*math.Abs(jac[0][0]))
		}
	}
}

func TestSAProperties(t *testing.T) {
	c := NewSAConstants()
	{ // Constants
		assert.InDelta(t, 0.1355/(0.41*0.41)+1.622/(2./3.), c.Cw1, 1.e-14)
		assert.Equal(t, 64., c.Cw3_6)
	}
	{ // fw saturates at r = 10
		g10, fw10, _ := c.Fw(10, 1)
		for _, r := range []float64{10, 10.5, 42, 1.e6} {
			g, fw, dfw := c.Fw(r, 1)
			assert.Equal(t, g10, g)
			assert.Equal(t, fw10, fw)
			assert.Equal(t, 0., dfw)
		}
		var prev float64
		for _, r := range []float64{0.01, 0.1, 0.5, 1, 2} {
			_, fw, dfw := c.Fw(r, 1)
			assert.Greater(t, fw, prev)
			assert.Greater(t, dfw, 0.)
			assert.Less(t, fw, fw10)
			prev = fw
		}
		// The limiter saturates in floating point well before r = 10
		for _, r := range []float64{5, 9.99} {
			_, fw, dfw := c.Fw(r, 1)
			assert.GreaterOrEqual(t, fw, prev)
			assert.GreaterOrEqual(t, dfw, 0.)
			assert.InDelta(t, fw10, fw, 1.e-12)
			prev = fw
		}
		assert.InDelta(t, 1., func() float64 { _, fw, _ := c.Fw(1, 0); return fw }(), 1.e-14)
	}
	{ // Idempotent, no hidden state
		for _, model := range []types.TURB_MODEL{types.TURB_SA, types.TURB_SA_E_COMP, types.TURB_SST} {
			sk, _ := NewSourceKernel(model, SourceOptions{Axisymmetric: true})
			ps := samplePointState(600, 2.e-3, 1.e-4)
			ps.TurbVar = [2]float64{0.5, 300}
			ps.EddyVisc, ps.F1, ps.F2, ps.CDkw = 2.e-4, 0.4, 0.7, 1.e-3
			r1, j1 := sk.ComputeResidual(ps)
			r2, j2 := sk.ComputeResidual(ps)
			assert.Equal(t, r1, r2)
			assert.Equal(t, j1, j2)
		}
	}
	{ // Points on the wall contribute nothing
		sk, _ := NewSourceKernel(types.TURB_SA, SourceOptions{})
		ps := samplePointState(600, 0, 1.e-4)
		res, jac := sk.ComputeResidual(ps)
		assert.Equal(t, utils.BlockVec{}, res)
		assert.Equal(t, utils.Block{}, jac)
	}
	{ // Axisymmetric term is skipped on the axis
		skA, _ := NewSourceKernel(types.TURB_SA, SourceOptions{Axisymmetric: true})
		sk, _ := NewSourceKernel(types.TURB_SA, SourceOptions{})
		ps := samplePointState(600, 2.e-3, 1.e-4)
		ps.Coord[1] = 0
		r1, j1 := skA.ComputeResidual(ps)
		r2, j2 := sk.ComputeResidual(ps)
		assert.Equal(t, r2, r1)
		assert.Equal(t, j2, j1)
	}
	{ // Eddy viscosity
		assert.Equal(t, 0., c.EddyViscosity(1.2, 1.8e-5, -1.e-4))
		nuT := 1.5e-4
		assert.InDelta(t, 1.2*nuT*c.Fv1(10), c.EddyViscosity(1.2, 1.8e-5, nuT), 1.e-18)
	}
	{ // Unknown model
		_, err := NewSourceKernel(types.TURB_None, SourceOptions{})
		assert.Error(t, err)
		_, err = NewDiffusionKernel(types.TURB_None)
		assert.Error(t, err)
	}
}

func TestSST(t *testing.T) {
	c := NewSSTConstants()
	sstState := func() (ps *PointState) {
		ps = &PointState{NDim: 2, Coord: utils.Vec3{0.1, 0.01, 0}, Volume: 1.e-5, Dist: 1.e-3, Density: 1.1,
			LamVisc: 1.8e-5, EddyVisc: 1.e-3}
		ps.TurbVar = [2]float64{0.2, 500}
		ps.F1, ps.F2, ps.CDkw = 0.6, 0.9, 2.e-3
		return
	}
	{ // Without strain only destruction and cross diffusion remain, linearized exactly
		sk, err := NewSourceKernel(types.TURB_SST, SourceOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, sk.NVar())
		ps := sstState()
		res, jac := sk.ComputeResidual(ps)
		beta := 0.6*c.Beta1 + 0.4*c.Beta2
		assert.InDelta(t, -c.BetaStar*1.1*500*0.2*1.e-5, res[0], 1.e-15)
		assert.InDelta(t, (-beta*1.1*500*500+0.4*2.e-3)*1.e-5, res[1], 1.e-13)
		// Unknowns are rho*k and rho*omega
		for jVar := 0; jVar < 2; jVar++ {
			h := 1.e-6 * ps.TurbVar[jVar]
			for iVar := 0; iVar < 2; iVar++ {
				fd := fdJacobian(sk, ps, iVar, jVar, h) / ps.Density
				assert.InDelta(t, jac[iVar][jVar], fd, 1.e-6*math.Max(math.Abs(jac[iVar][jVar]), 1.e-8))
			}
		}
	}
	{ // Production limiter
		sk, _ := NewSourceKernel(types.TURB_SST, SourceOptions{})
		ps := sstState()
		ps.StrainMag, ps.EddyVisc = 1.e5, 1.
		res, _ := sk.ComputeResidual(ps)
		assert.InDelta(t, 19*c.BetaStar*1.1*500*0.2*1.e-5, res[0], 1.e-12)
	}
	{ // Sustaining terms
		sk, _ := NewSourceKernel(types.TURB_SST_SUST, SourceOptions{AmbientK: 0.2, AmbientOmega: 500})
		ps := sstState()
		ps.CDkw = 0
		ps.F1 = 1
		res, _ := sk.ComputeResidual(ps)
		assert.InDelta(t, 0., res[0], 1.e-15)
		assert.InDelta(t, 0., res[1], 1.e-12)
	}
	{ // Blending
		F1, F2, CDkw := c.Blending(2, 1.2, 1.8e-5, 0.01, 1.e4, 1.e-5, &utils.Vec3{1, 0, 0}, &utils.Vec3{-1, 0, 0})
		assert.Equal(t, 1.e-20, CDkw)
		assert.InDelta(t, 1., F1, 1.e-12)
		assert.InDelta(t, 1., F2, 1.e-12)
		F1, F2, _ = c.Blending(2, 1.2, 1.8e-5, 0.01, 10, 500, &utils.Vec3{1, 0, 0}, &utils.Vec3{1, 0, 0})
		assert.Less(t, F1, 1.e-6)
		assert.Less(t, F2, 1.e-6)
	}
	{ // Eddy viscosity limiter
		assert.InDelta(t, 1.2*0.2/500, c.EddyViscosity(1.2, 0.2, 500, 0, 1), 1.e-15)
		assert.InDelta(t, 1.2*c.A1*0.2/1.e5, c.EddyViscosity(1.2, 0.2, 500, 1.e5, 1), 1.e-15)
	}
	{ // Axisymmetric source on and off the axis
		skA, _ := NewSourceKernel(types.TURB_SST, SourceOptions{Axisymmetric: true})
		sk, _ := NewSourceKernel(types.TURB_SST, SourceOptions{})
		ps := sstState()
		ps.Velocity = utils.Vec3{30, 2, 0}
		ps.TurbGrad[0] = utils.Vec3{0, 4, 0}
		r0, _ := sk.ComputeResidual(ps)
		rA, _ := skA.ComputeResidual(ps)
		sigK := 0.6*c.SigmaK1 + 0.4*c.SigmaK2
		cdk := 1.1*2*0.2 - (1.8e-5+sigK*1.e-3)*4
		// With zero velocity gradients and zeta = omega the production is 2/3*rhov*k*(2/omega*v/y - 1)
		pk := math.Max(0, 2./3.*1.1*2*0.2*(2./500*(2/0.01)-1))
		assert.InDelta(t, r0[0]+1./0.01*1.e-5*(pk-cdk), rA[0], 1.e-14)
		ps.Coord[1] = 0
		rA, _ = skA.ComputeResidual(ps)
		assert.Equal(t, r0, rA)
	}
}

func TestDiffusion(t *testing.T) {
	edgeState := func() (es *EdgeState) {
		es = &EdgeState{
			NDim:      2,
			Normal:    utils.Vec3{0.3, 0.1, 0},
			CoordI:    utils.Vec3{0, 0, 0},
			CoordJ:    utils.Vec3{0.5, 0.2, 0},
			DensityI:  1.2,
			DensityJ:  1.1,
			LamViscI:  1.8e-5,
			LamViscJ:  1.9e-5,
			EddyViscI: 1.e-4,
			EddyViscJ: 3.e-4,
			F1I:       0.2,
			F1J:       0.9,
		}
		// Linear field T = 2x - y + 1 for the first variable, 3y for the second
		field := func(x *utils.Vec3) [2]float64 { return [2]float64{2*x[0] - x[1] + 1, 3 * x[1]} }
		es.TurbVarI, es.TurbVarJ = field(&es.CoordI), field(&es.CoordJ)
		es.TurbGradI = [2]utils.Vec3{{2, -1, 0}, {0, 3, 0}}
		es.TurbGradJ = es.TurbGradI
		return
	}
	{ // A linear field gives the exact normal gradient
		es := edgeState()
		proj, projVector := projectedMeanGradient(2, es)
		assert.InDelta(t, 2*0.3-0.1, proj[0], 1.e-15)
		assert.InDelta(t, 0.3, proj[1], 1.e-15)
		assert.InDelta(t, (0.5*0.3+0.2*0.1)/(0.25+0.04), projVector, 1.e-15)
	}
	{ // SA flux and Jacobians against finite differences
		dk, err := NewDiffusionKernel(types.TURB_SA)
		require.NoError(t, err)
		es := edgeState()
		es.TurbVarI[0], es.TurbVarJ[0] = 1.e-4, 3.e-4
		flux, jacI, jacJ := dk.ComputeFlux(es)
		assert.NotZero(t, flux[0])
		h := 1.e-9
		p, m := *es, *es
		p.TurbVarI[0] += h
		m.TurbVarI[0] -= h
		fp, _, _ := dk.ComputeFlux(&p)
		fm, _, _ := dk.ComputeFlux(&m)
		assert.InDelta(t, (fp[0]-fm[0])/(2*h), jacI[0][0], 1.e-6*math.Abs(jacI[0][0]))
		p, m = *es, *es
		p.TurbVarJ[0] += h
		m.TurbVarJ[0] -= h
		fp, _, _ = dk.ComputeFlux(&p)
		fm, _, _ = dk.ComputeFlux(&m)
		assert.InDelta(t, (fp[0]-fm[0])/(2*h), jacJ[0][0], 1.e-6*math.Abs(jacJ[0][0]))
	}
	{ // SA diffusion scales with density like the source terms
		dk, _ := NewDiffusionKernel(types.TURB_SA)
		sk, _ := NewSourceKernel(types.TURB_SA, SourceOptions{})
		es := edgeState()
		es.DensityI, es.DensityJ = 1, 1
		es.TurbVarI[0], es.TurbVarJ[0] = 1.e-4, 3.e-4
		ps := samplePointState(600, 2.e-3, 1.e-4)
		ps.Density = 1
		ps.LamVisc = 1.8e-5
		f1, jI1, jJ1 := dk.ComputeFlux(es)
		s1, _ := sk.ComputeResidual(ps)
		// Same kinematic viscosities at twice the density
		es.DensityI, es.DensityJ = 2, 2
		es.LamViscI, es.LamViscJ = 2*es.LamViscI, 2*es.LamViscJ
		ps.Density, ps.LamVisc = 2, 2*ps.LamVisc
		f2, jI2, jJ2 := dk.ComputeFlux(es)
		s2, _ := sk.ComputeResidual(ps)
		assert.InDelta(t, 2*s1[0], s2[0], 1.e-12*math.Abs(s2[0]))
		assert.InDelta(t, 2*f1[0], f2[0], 1.e-12*math.Abs(f2[0]))
		assert.InDelta(t, 2*jI1[0][0], jI2[0][0], 1.e-12*math.Abs(jI2[0][0]))
		assert.InDelta(t, 2*jJ1[0][0], jJ2[0][0], 1.e-12*math.Abs(jJ2[0][0]))
		es.DensityI, es.DensityJ = 1, 1
		proj, _ := projectedMeanGradient(1, es)
		assert.InDelta(t, (1.85e-5+2.e-4)*proj[0]/NewSAConstants().Sigma, f1[0], 1.e-15)
	}
	{ // SA-Neg modifies the diffusivity only for a negative average
		dk, _ := NewDiffusionKernel(types.TURB_SA)
		dkN, _ := NewDiffusionKernel(types.TURB_SA_Neg)
		es := edgeState()
		es.TurbVarI[0], es.TurbVarJ[0] = 1.e-4, 3.e-4
		f1, _, _ := dk.ComputeFlux(es)
		f2, _, _ := dkN.ComputeFlux(es)
		assert.Equal(t, f1, f2)
		es.TurbVarI[0], es.TurbVarJ[0] = -1.e-4, -3.e-4
		f1, _, _ = dk.ComputeFlux(es)
		f2, _, _ = dkN.ComputeFlux(es)
		assert.NotEqual(t, f1[0], f2[0])
	}
	{ // SST flux uses the blended diffusivities
		dk, _ := NewDiffusionKernel(types.TURB_SST)
		es := edgeState()
		flux, jacI, jacJ := dk.ComputeFlux(es)
		c := NewSSTConstants()
		muLam := 0.5 * (1.8e-5 + 1.9e-5)
		diffK := muLam + 0.5*(1.e-4*blend(0.2, c.SigmaK1, c.SigmaK2)+3.e-4*blend(0.9, c.SigmaK1, c.SigmaK2))
		assert.InDelta(t, diffK*0.5, flux[0], 1.e-15)
		assert.Less(t, jacI[0][0], 0.)
		assert.Greater(t, jacJ[1][1], 0.)
		assert.Equal(t, 0., jacI[0][1])
	}
}
