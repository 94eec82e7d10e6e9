package astro

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"unit y", Vec3{0, 1, 0}, 1},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"negative", Vec3{-3, -4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3Normalized(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want Vec3
	}{
		{"unit x", Vec3{5, 0, 0}, Vec3{1, 0, 0}},
		{"unit y", Vec3{0, 3, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{1, 1, 0}, Vec3{1 / math.Sqrt(2), 1 / math.Sqrt(2), 0}},
		{"zero", Vec3{0, 0, 0}, Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Normalized()
			if math.Abs(got.X-tt.want.X) > 1e-10 ||
				math.Abs(got.Y-tt.want.Y) > 1e-10 ||
				math.Abs(got.Z-tt.want.Z) > 1e-10 {
				t.Errorf("Normalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same direction", Vec3{1, 0, 0}, Vec3{7, 0, 0}, 0},
		{"perpendicular", Vec3{1, 0, 0}, Vec3{0, 2, 0}, 90},
		{"opposite", Vec3{0, 0, 1}, Vec3{0, 0, -3}, 180},
		{"45 degrees", Vec3{1, 0, 0}, Vec3{1, 1, 0}, 45},
		{"zero vector", Vec3{}, Vec3{1, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleBetween(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleBetween() = %.6f°, want %.6f°", got, tt.want)
			}
		})
	}
}

func TestFromSpherical(t *testing.T) {
	v := FromSpherical(math.Pi/2, 0, 2)
	if math.Abs(v.X) > 1e-12 || math.Abs(v.Y-2) > 1e-12 || math.Abs(v.Z) > 1e-12 {
		t.Errorf("FromSpherical(90°, 0°, 2) = %v, want {0 2 0}", v)
	}

	v = FromSpherical(0, math.Pi/2, 1)
	if math.Abs(v.Z-1) > 1e-12 {
		t.Errorf("FromSpherical(0°, 90°, 1).Z = %v, want 1", v.Z)
	}
}

func TestKmToAU(t *testing.T) {
	tests := []struct {
		km     float64
		wantAU float64
		tolPct float64 // tolerance as percentage
	}{
		{AU, 1.0, 0.001},
		{147.1e6, 0.98329, 0.01}, // perihelion
		{152.1e6, 1.01671, 0.01}, // aphelion
	}

	for _, tt := range tests {
		got := KmToAU(tt.km)
		diff := math.Abs(got-tt.wantAU) / tt.wantAU
		if diff > tt.tolPct/100 {
			t.Errorf("KmToAU(%.0f) = %.5f, want %.5f", tt.km, got, tt.wantAU)
		}
		if back := AUToKm(got); math.Abs(back-tt.km) > 1e-3 {
			t.Errorf("AUToKm(KmToAU(%.0f)) = %.3f", tt.km, back)
		}
	}
}

func TestEquatorialToEcliptic(t *testing.T) {
	// The north celestial pole tilts toward +Y in ecliptic coordinates
	// by the obliquity angle.
	northPole := Vec3{0, 0, 1}
	ecl := EquatorialToEcliptic(northPole, J2000Obliquity)

	expectedY := math.Sin(J2000Obliquity)
	expectedZ := math.Cos(J2000Obliquity)

	if math.Abs(ecl.X) > 1e-10 {
		t.Errorf("X should be 0, got %v", ecl.X)
	}
	if math.Abs(ecl.Y-expectedY) > 1e-6 {
		t.Errorf("Y = %v, want %v", ecl.Y, expectedY)
	}
	if math.Abs(ecl.Z-expectedZ) > 1e-6 {
		t.Errorf("Z = %v, want %v", ecl.Z, expectedZ)
	}
}

func TestEclipticToEquatorial(t *testing.T) {
	original := Vec3{1, 2, 3}
	for _, eps := range []float64{0, J2000Obliquity, 0.5} {
		ecl := EquatorialToEcliptic(original, eps)
		back := EclipticToEquatorial(ecl, eps)

		if math.Abs(back.X-original.X) > 1e-10 ||
			math.Abs(back.Y-original.Y) > 1e-10 ||
			math.Abs(back.Z-original.Z) > 1e-10 {
			t.Errorf("Roundtrip at eps=%v failed: %v -> %v -> %v", eps, original, ecl, back)
		}
	}
}

func TestPrecessFromJ2000(t *testing.T) {
	v := Vec3{1, 2, 3}

	// Identity at the epoch itself.
	same := PrecessFromJ2000(v, 2451545.0)
	if same.Sub(v).Norm() > 1e-12 {
		t.Errorf("PrecessFromJ2000 at J2000 = %v, want %v", same, v)
	}

	// Rotation preserves length.
	later := PrecessFromJ2000(v, 2460310.5)
	if math.Abs(later.Norm()-v.Norm()) > 1e-12 {
		t.Errorf("PrecessFromJ2000 changed length: %v -> %v", v.Norm(), later.Norm())
	}

	// The vernal equinox direction drifts by about 50.3"/yr in longitude:
	// 24 years moves the J2000 equinox ~0.335° away from the equinox of date.
	x := PrecessFromJ2000(Vec3{1, 0, 0}, 2460310.5)
	shift := AngleBetween(x, Vec3{1, 0, 0})
	if shift < 0.3 || shift > 0.37 {
		t.Errorf("equinox shift after 24 years = %.4f°, want ~0.335°", shift)
	}
}

func TestEclipticLatitude(t *testing.T) {
	tests := []struct {
		v       Vec3
		wantDeg float64
		tol     float64
	}{
		{Vec3{1, 0, 0}, 0, 0.01},
		{Vec3{0, 1, 0}, 0, 0.01},
		{Vec3{0, 0, 1}, 90, 0.01},
		{Vec3{0, 0, -1}, -90, 0.01},
		{Vec3{1, 0, 1}, 45, 0.01},
		{Vec3{}, 0, 0.01},
	}

	for _, tt := range tests {
		got := EclipticLatitude(tt.v)
		if math.Abs(got-tt.wantDeg) > tt.tol {
			t.Errorf("EclipticLatitude(%v) = %.2f°, want %.2f°", tt.v, got, tt.wantDeg)
		}
	}
}

func TestEclipticLongitude(t *testing.T) {
	tests := []struct {
		v       Vec3
		wantDeg float64
		tol     float64
	}{
		{Vec3{1, 0, 0}, 0, 0.01},
		{Vec3{0, 1, 0}, 90, 0.01},
		{Vec3{-1, 0, 0}, 180, 0.01},
		{Vec3{0, -1, 0}, 270, 0.01},
		{Vec3{1, 1, 0}, 45, 0.01},
	}

	for _, tt := range tests {
		got := EclipticLongitude(tt.v)
		if math.Abs(got-tt.wantDeg) > tt.tol {
			t.Errorf("EclipticLongitude(%v) = %.2f°, want %.2f°", tt.v, got, tt.wantDeg)
		}
	}
}

func TestLightTimeFromKm(t *testing.T) {
	got := LightTimeFromKm(AU)
	if math.Abs(got-499.005) > 0.01 {
		t.Errorf("LightTimeFromKm(1 AU) = %.3f s, want ~499.005 s", got)
	}
}

func TestTrueObliquity(t *testing.T) {
	// Meeus example 22.a: 1987 April 10.0 TD, ε = 23°26'36.850".
	got := TrueObliquity(2446895.5) * 180 / math.Pi
	want := 23 + 26.0/60 + 36.850/3600
	if math.Abs(got-want) > 1.0/3600 {
		t.Errorf("TrueObliquity = %.6f°, want %.6f°", got, want)
	}
}
