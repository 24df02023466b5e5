package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := math32.Sin(halfAngle)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(halfAngle),
	}
}

// quatFromAxes builds a quaternion from the three normalized basis
// vectors of a rotation matrix. The branch taken keeps the largest
// component out of the divisor, so near-degenerate rotations such as
// 270 degree turns stay numerically stable.
func quatFromAxes(xAxis, yAxis, zAxis Vec3) Quat {
	m00, m01, m02 := xAxis.X, xAxis.Y, xAxis.Z
	m10, m11, m12 := yAxis.X, yAxis.Y, yAxis.Z
	m20, m21, m22 := zAxis.X, zAxis.Y, zAxis.Z

	if m22 <= 0 {
		// x^2 + y^2 >= z^2 + w^2
		dif10 := m11 - m00
		omm22 := 1 - m22
		if dif10 <= 0 {
			// x^2 >= y^2
			fourXSq := omm22 - dif10
			inv4x := 0.5 / math32.Sqrt(fourXSq)
			return Quat{
				X: fourXSq * inv4x,
				Y: (m01 + m10) * inv4x,
				Z: (m02 + m20) * inv4x,
				W: (m12 - m21) * inv4x,
			}
		}
		// y^2 >= x^2
		fourYSq := omm22 + dif10
		inv4y := 0.5 / math32.Sqrt(fourYSq)
		return Quat{
			X: (m01 + m10) * inv4y,
			Y: fourYSq * inv4y,
			Z: (m12 + m21) * inv4y,
			W: (m20 - m02) * inv4y,
		}
	}

	// z^2 + w^2 >= x^2 + y^2
	sum10 := m11 + m00
	opm22 := 1 + m22
	if sum10 <= 0 {
		// z^2 >= w^2
		fourZSq := opm22 - sum10
		inv4z := 0.5 / math32.Sqrt(fourZSq)
		return Quat{
			X: (m02 + m20) * inv4z,
			Y: (m12 + m21) * inv4z,
			Z: fourZSq * inv4z,
			W: (m01 - m10) * inv4z,
		}
	}
	// w^2 >= z^2
	fourWSq := opm22 + sum10
	inv4w := 0.5 / math32.Sqrt(fourWSq)
	return Quat{
		X: (m12 - m21) * inv4w,
		Y: (m20 - m02) * inv4w,
		Z: (m01 - m10) * inv4w,
		W: fourWSq * inv4w,
	}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// ToAxisAngle converts the quaternion to a rotation axis and an angle
// in radians. The identity rotation reports the X axis with angle 0.
func (q Quat) ToAxisAngle() (Vec3, float32) {
	const epsilon = 1.0e-8
	v := Vec3{q.X, q.Y, q.Z}
	length := v.Length()
	if length >= epsilon {
		angle := 2 * math32.Atan2(length, q.W)
		return v.Scale(1 / length), angle
	}
	return Vec3{X: 1}, 0
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	// Normalize first
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
