package ibl

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction is a unit length vector in the normal aligned frame, z is 'up'.
type Direction = mgl32.Vec3

// Normal is the macro surface normal the lookup table is defined around.
var Normal = Direction{0, 0, 1}

type IntegrationInputs struct {
	NdotV     float32
	Roughness float32
	Samples   int
}

// IntegrationResult holds the scale (A) and bias (B) applied to F0 at render time.
// Values are not clamped, grazing angles may leave them slightly out of [0,1].
type IntegrationResult struct {
	A, B float32
}

// ImportanceSampleGGX maps a sequence point to a half vector around n,
// distributed according to the GGX normal distribution.
func ImportanceSampleGGX(xi SamplePoint, roughness float32, n Direction) Direction {
	a := roughness * roughness

	phi := 2.0 * math32.Pi * xi.U
	cosTheta := math32.Sqrt((1.0 - xi.V) / (1.0 + (a*a-1.0)*xi.V))
	sinTheta := math32.Sqrt(1.0 - cosTheta*cosTheta)

	// from spherical coordinates to cartesian coordinates
	hx := math32.Cos(phi) * sinTheta
	hy := math32.Sin(phi) * sinTheta
	hz := cosTheta

	// from tangent-space vector to world-space sample vector
	up := Direction{0, 0, 1}
	if math32.Abs(n.Z()) >= 0.999 {
		up = Direction{1, 0, 0}
	}
	tangent := up.Cross(n).Normalize()
	bitangent := n.Cross(tangent)

	return tangent.Mul(hx).Add(bitangent.Mul(hy)).Add(n.Mul(hz)).Normalize()
}

// GeometrySchlickGGX uses the direct lighting remapping k = roughness²/2.
func GeometrySchlickGGX(ndotv, roughness float32) float32 {
	k := (roughness * roughness) / 2.0

	return ndotv / (ndotv*(1.0-k) + k)
}

func GeometrySmith(nov, nol, roughness float32) float32 {
	return GeometrySchlickGGX(nov, roughness) * GeometrySchlickGGX(nol, roughness)
}

// IntegrateBrdf estimates the split-sum scale and bias for one (NdotV, roughness) pair.
// Samples with NoL <= 0 add nothing but still count towards the sample total.
func IntegrateBrdf(in IntegrationInputs) IntegrationResult {
	if in.Samples < 1 {
		panic("ibl: sample count must be positive")
	}

	ndotv := clamp01(in.NdotV)
	roughness := clamp01(in.Roughness)
	v := Direction{math32.Sqrt(1.0 - ndotv*ndotv), 0, ndotv}

	count := uint32(in.Samples)
	sum := accumulateBrdf(v, roughness, 0, count, count)

	return IntegrationResult{
		A: sum.A / float32(count),
		B: sum.B / float32(count),
	}
}

// accumulateBrdf folds the samples [from, to) of an n point sequence into unnormalized sums.
func accumulateBrdf(v Direction, roughness float32, from, to, n uint32) IntegrationResult {
	var sum IntegrationResult
	nov := math32.Max(Normal.Dot(v), 0.0)

	for i := from; i < to; i++ {
		xi := Hammersley(i, n)
		h := ImportanceSampleGGX(xi, roughness, Normal)
		vdoth := v.Dot(h)
		l := h.Mul(2.0 * vdoth).Sub(v).Normalize()

		nol := math32.Max(l.Z(), 0.0)
		noh := math32.Max(h.Z(), 0.0)
		voh := math32.Max(vdoth, 0.0)

		if nol > 0 {
			g := GeometrySmith(nov, nol, roughness)

			gVis := (g * voh) / (noh * nov)
			fc := math32.Pow(1.0-voh, 5.0)

			sum.A += (1.0 - fc) * gVis
			sum.B += fc * gVis
		}
	}

	return sum
}

func clamp01(v float32) float32 {
	return math32.Min(math32.Max(v, 0.0), 1.0)
}
