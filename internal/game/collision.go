package game

// SpheresOverlap checks if two spheres touch. The test is strict so that
// entities exactly one combined radius apart do not collide.
func SpheresOverlap(a Vec3, ra float64, b Vec3, rb float64) bool {
	radSum := ra + rb
	return a.DistSq(b) < radSum*radSum
}

// OutOfBounds reports whether p left the cube of half-extent bound
func OutOfBounds(p Vec3, bound float64) bool {
	return p.MaxAbs() > bound
}
