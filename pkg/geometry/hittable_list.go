package geometry

import "github.com/df07/go-sphere-raytracer/pkg/core"

// HittableList is an ordered collection of hittables searched linearly
type HittableList struct {
	Objects []core.Hittable
}

// NewHittableList creates a list holding the given objects
func NewHittableList(objects ...core.Hittable) *HittableList {
	list := &HittableList{}
	list.Add(objects...)
	return list
}

// Add appends objects to the list
func (l *HittableList) Add(objects ...core.Hittable) {
	l.Objects = append(l.Objects, objects...)
}

// Clear removes every object
func (l *HittableList) Clear() {
	l.Objects = nil
}

// Len returns the number of objects
func (l *HittableList) Len() int {
	return len(l.Objects)
}

// Hit returns the closest hit among all objects within rayT.
// Each hit narrows the search range so farther candidates are pruned.
func (l *HittableList) Hit(ray core.Ray, rayT core.Interval) (core.HitRecord, bool) {
	var closest core.HitRecord
	hitAnything := false
	closestSoFar := rayT.Max

	for _, object := range l.Objects {
		if hit, ok := object.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}
