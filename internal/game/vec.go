package game

import "math"

// Vec3 is a point or direction in world space (Y up)
type Vec3 struct {
	X float64 `msgpack:"x" json:"x" yaml:"x"`
	Y float64 `msgpack:"y" json:"y" yaml:"y"`
	Z float64 `msgpack:"z" json:"z" yaml:"z"`
}

// Up is the vertical axis
var Up = Vec3{0, 1, 0}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LenSq() float64 { return a.Dot(a) }

func (a Vec3) Len() float64 { return math.Sqrt(a.LenSq()) }

// DistSq returns the squared distance between two points
func (a Vec3) DistSq(b Vec3) float64 { return a.Sub(b).LenSq() }

// Normalize returns the unit vector, or the zero vector if a has no length
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// RotateAround rotates a around a unit axis by angle radians (Rodrigues)
func (a Vec3) RotateAround(axis Vec3, angle float64) Vec3 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return a.Scale(cos).
		Add(axis.Cross(a).Scale(sin)).
		Add(axis.Scale(axis.Dot(a) * (1 - cos)))
}

// MaxAbs returns the largest absolute component
func (a Vec3) MaxAbs() float64 {
	return math.Max(math.Abs(a.X), math.Max(math.Abs(a.Y), math.Abs(a.Z)))
}

// AngleBetween returns the unsigned angle between two directions
func AngleBetween(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Acos(Clamp(a.Dot(b)/(la*lb), -1, 1))
}
