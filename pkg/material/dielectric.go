package material

import (
	"math"
	"math/rand"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	var refractionRatio float64
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex // Ray is entering the material (from air to glass)
	} else {
		refractionRatio = d.RefractiveIndex // Ray is exiting the material (from glass to air)
	}

	unitDirection := rayIn.Direction.UnitVector()
	direction := scatterDirection(unitDirection, hit.Normal, refractionRatio, random.Float64())

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: core.White, // Clear glass absorbs nothing
	}, true
}

// scatterDirection picks reflection or refraction for a unit direction.
// u is a uniform draw in [0, 1) compared against the Schlick reflectance.
func scatterDirection(unitDirection, normal core.Vec3, refractionRatio, u float64) core.Vec3 {
	cosTheta := math.Min(unitDirection.Negate().Dot(normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	if CannotRefract(refractionRatio, sinTheta) || Reflectance(cosTheta, refractionRatio) > u {
		return core.Reflect(unitDirection, normal)
	}
	return core.Refract(unitDirection, normal, refractionRatio)
}

// CannotRefract reports total internal reflection: Snell's law has no solution
func CannotRefract(refractionRatio, sinTheta float64) bool {
	return refractionRatio*sinTheta > 1.0
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
