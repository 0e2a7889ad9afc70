package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxNDim is the largest spatial dimension handled by the kernels
const MaxNDim = 3

type Vec3 = [MaxNDim]float64

func Dot(nDim int, a, b *Vec3) float64 { return floats.Dot(a[:nDim], b[:nDim]) }

func SquaredNorm(nDim int, a *Vec3) float64 { return floats.Dot(a[:nDim], a[:nDim]) }

func Norm(nDim int, a *Vec3) float64 { return floats.Norm(a[:nDim], 2) }

func Distance(nDim int, a, b *Vec3) float64 { return floats.Distance(a[:nDim], b[:nDim], 2) }

// DistanceVector returns b-a
func DistanceVector(nDim int, a, b *Vec3) (d Vec3) {
	for i := 0; i < nDim; i++ {
		d[i] = b[i] - a[i]
	}
	return
}

// TangentProjection removes the component of tau.n along n
func TangentProjection(nDim int, tau *[MaxNDim]Vec3, unitNormal *Vec3) (tangent Vec3) {
	for i := 0; i < nDim; i++ {
		tangent[i] = Dot(nDim, &tau[i], unitNormal)
	}
	proj := Dot(nDim, &tangent, unitNormal)
	for i := 0; i < nDim; i++ {
		tangent[i] -= proj * unitNormal[i]
	}
	return
}

// UnitNormal returns -normal/|normal| and |normal|, boundary normals point out of the domain
func UnitNormal(nDim int, normal *Vec3) (unit Vec3, area float64) {
	area = Norm(nDim, normal)
	for i := 0; i < nDim; i++ {
		unit[i] = -normal[i] / area
	}
	return
}

func IsFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
