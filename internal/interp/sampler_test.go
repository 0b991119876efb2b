package interp

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/patchmatch/internal/frame"
)

var testPatchSizes = []int{1, 3, 5, 7, 9, 15, 31}

// ---------------------- Backend Equivalence ----------------------

// TestBackends_Equivalence checks every kernel against the reference loop
// and a from-scratch re-implementation.
func TestBackends_Equivalence(t *testing.T) {
	locations := 10000
	if testing.Short() {
		locations = 500
	}

	for channels := 1; channels <= 4; channels++ {
		for _, size := range testPatchSizes {
			for _, pc := range []frame.PixelCenter{frame.TopLeft, frame.Center} {
				name := fmt.Sprintf("ch%d/size%d/%s", channels, size, pc)
				t.Run(name, func(t *testing.T) {
					rng := rand.New(rand.NewSource(int64(channels*1000 + size)))
					v := randomView(rng, 64+rng.Intn(64), 48+rng.Intn(48), channels, rng.Intn(9))

					elems := PatchElements(size, channels)
					ref := make([]uint8, elems)
					got := make([]uint8, elems)

					for i := 0; i < locations; i++ {
						pos := randomPosition(rng, v, size, pc)
						SquarePatchReference(ref, v, pos, size, pc)

						if i%16 == 0 {
							if diff := cmp.Diff(naiveSquarePatch(v, pos, size, pc), ref); diff != "" {
								t.Fatalf("reference differs from naive at %v (-naive +ref):\n%s", pos, diff)
							}
						}

						for _, b := range Backends() {
							SquarePatchWith(b, got, v, pos, size, pc)
							if diff := cmp.Diff(ref, got); diff != "" {
								t.Fatalf("%s differs from reference at %v (-ref +got):\n%s", b, pos, diff)
							}
						}

						SquarePatch(got, v, pos, size, pc)
						if diff := cmp.Diff(ref, got); diff != "" {
							t.Fatalf("active backend %s differs at %v:\n%s", ActiveBackend(), pos, diff)
						}
					}
				})
			}
		}
	}
}

// TestBackends_WideChannels covers pixel layouts without a specialised kernel.
func TestBackends_WideChannels(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	v := randomView(rng, 40, 30, 6, 3)
	for _, size := range []int{1, 5, 9} {
		ref := make([]uint8, PatchElements(size, 6))
		got := make([]uint8, len(ref))
		for i := 0; i < 200; i++ {
			pos := randomPosition(rng, v, size, frame.TopLeft)
			SquarePatchReference(ref, v, pos, size, frame.TopLeft)
			for _, b := range Backends() {
				SquarePatchWith(b, got, v, pos, size, frame.TopLeft)
				if !cmp.Equal(ref, got) {
					t.Fatalf("%s differs for 6 channels, size %d at %v", b, size, pos)
				}
			}
		}
	}
}

func TestBlend8_MatchesScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20000; i++ {
		f := NewFactors(uint32(rng.Intn(129)), uint32(rng.Intn(129)))
		var q [4]uint64
		var b [4][8]uint8
		for k := range q {
			for j := 0; j < 8; j++ {
				b[k][j] = uint8(rng.Intn(256))
				q[k] |= uint64(b[k][j]) << (8 * j)
			}
		}
		// include extreme values
		if i%10 == 0 {
			q = [4]uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
			for k := range b {
				for j := range b[k] {
					b[k][j] = 255
				}
			}
		}

		got := blend8(q[0], q[1], q[2], q[3], f)
		for j := 0; j < 8; j++ {
			want := f.Blend(b[0][j], b[1][j], b[2][j], b[3][j])
			if uint8(got>>(8*j)) != want {
				t.Fatalf("byte %d: got %d want %d (factors %+v)", j, uint8(got>>(8*j)), want, f)
			}
		}
	}
}

// ---------------------- Properties ----------------------

// TestSquarePatch_ExactPixel checks that integer positions copy pixels.
func TestSquarePatch_ExactPixel(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for channels := 1; channels <= 4; channels++ {
		v := randomView(rng, 50, 40, channels, 2)
		for _, size := range testPatchSizes[:5] {
			patch := make([]uint8, PatchElements(size, channels))
			for _, b := range Backends() {
				for i := 0; i < 100; i++ {
					cx := size/2 + rng.Intn(v.Width-size-1)
					cy := size/2 + rng.Intn(v.Height-size-1)
					SquarePatchWith(b, patch, v, frame.Pos(float64(cx), float64(cy)), size, frame.TopLeft)

					out := 0
					for y := cy - size/2; y <= cy+size/2; y++ {
						for x := cx - size/2; x <= cx+size/2; x++ {
							for n := 0; n < channels; n++ {
								if patch[out] != v.Pixel(x, y)[n] {
									t.Fatalf("%s ch%d size%d: cell (%d,%d) = %d, pixel = %d",
										b, channels, size, x, y, patch[out], v.Pixel(x, y)[n])
								}
								out++
							}
						}
					}
				}
			}
		}
	}
}

// TestSquarePatch_PaddingInvariance checks that padding bytes are never read
// or written.
func TestSquarePatch_PaddingInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for channels := 1; channels <= 4; channels++ {
		base := randomView(rng, 37, 29, channels, 7)
		zeros := withPadding(base, 0x00)
		ones := withPadding(base, 0xFF)
		before := append([]uint8(nil), base.Data...)

		for _, size := range []int{3, 5, 9} {
			a := make([]uint8, PatchElements(size, channels))
			b := make([]uint8, len(a))
			c := make([]uint8, len(a))
			for _, backend := range Backends() {
				for i := 0; i < 300; i++ {
					pos := randomPosition(rng, base, size, frame.TopLeft)
					SquarePatchWith(backend, a, base, pos, size, frame.TopLeft)
					SquarePatchWith(backend, b, zeros, pos, size, frame.TopLeft)
					SquarePatchWith(backend, c, ones, pos, size, frame.TopLeft)
					if !cmp.Equal(a, b) || !cmp.Equal(a, c) {
						t.Fatalf("%s ch%d size%d: result depends on padding at %v", backend, channels, size, pos)
					}
				}
			}
		}

		if diff := cmp.Diff(before, base.Data); diff != "" {
			t.Fatalf("source modified:\n%s", diff)
		}
	}
}

// TestSquarePatch_NoWriteBeyondPatch checks that kernels write exactly the patch.
func TestSquarePatch_NoWriteBeyondPatch(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	v := randomView(rng, 30, 30, 3, 0)
	for _, b := range Backends() {
		buf := make([]uint8, PatchElements(7, 3)+16)
		for i := range buf {
			buf[i] = 0xAB
		}
		SquarePatchWith(b, buf[:PatchElements(7, 3)], v, frame.Pos(12.3, 14.8), 7, frame.TopLeft)
		for i := PatchElements(7, 3); i < len(buf); i++ {
			if buf[i] != 0xAB {
				t.Fatalf("%s wrote past the patch at %d", b, i)
			}
		}
	}
}

// ---------------------- Backend Selection ----------------------

func TestParseBackend(t *testing.T) {
	for _, b := range Backends() {
		got, err := ParseBackend(b.String())
		if err != nil || got != b {
			t.Errorf("ParseBackend(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := ParseBackend("avx512"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestSetBackend(t *testing.T) {
	orig := ActiveBackend()
	defer SetBackend(orig)

	rng := rand.New(rand.NewSource(8))
	v := randomView(rng, 40, 40, 4, 0)
	pos := frame.Pos(20.4, 19.7)
	want := naiveSquarePatch(v, pos, 9, frame.TopLeft)

	for _, b := range Backends() {
		SetBackend(b)
		if ActiveBackend() != b {
			t.Fatalf("ActiveBackend() = %s after SetBackend(%s)", ActiveBackend(), b)
		}
		got := make([]uint8, len(want))
		SquarePatch(got, v, pos, 9, frame.TopLeft)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s:\n%s", b, diff)
		}
	}
}

func TestSupports(t *testing.T) {
	tests := []struct {
		backend        Backend
		channels, size int
		want           bool
	}{
		{BackendReference, 7, 3, true},
		{BackendUnrolled, 4, 1, true},
		{BackendUnrolled, 5, 3, false},
		{BackendPacked, 1, 5, false},
		{BackendPacked, 1, 7, false},
		{BackendPacked, 1, 9, true},
		{BackendPacked, 2, 5, true},
		{BackendPacked, 3, 5, true},
		{BackendPacked, 4, 5, true},
		{BackendPacked, 4, 3, false},
		{BackendPacked, 5, 9, false},
	}
	for _, tc := range tests {
		if got := Supports(tc.backend, tc.channels, tc.size); got != tc.want {
			t.Errorf("Supports(%s, %d, %d) = %v, want %v", tc.backend, tc.channels, tc.size, got, tc.want)
		}
	}
}

// ---------------------- Checked Wrappers ----------------------

func TestSquarePatchChecked(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	v := randomView(rng, 20, 20, 1, 0)

	tests := []struct {
		name    string
		dstLen  int
		pos     frame.Position
		size    int
		wantErr error
	}{
		{"valid", 25, frame.Pos(10, 10), 5, nil},
		{"even size", 16, frame.Pos(10, 10), 4, ErrPatchSize},
		{"short buffer", 24, frame.Pos(10, 10), 5, ErrBufferSize},
		{"left edge", 25, frame.Pos(1.9, 10), 5, ErrOutOfRange},
		{"right edge", 25, frame.Pos(17, 10), 5, ErrOutOfRange},
		{"just inside", 25, frame.Pos(16.99, 2), 5, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := SquarePatchChecked(make([]uint8, tc.dstLen), v, tc.pos, tc.size, frame.TopLeft)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	bad := v
	bad.Data = bad.Data[:10]
	if err := SquarePatchChecked(make([]uint8, 25), bad, frame.Pos(10, 10), 5, frame.TopLeft); !errors.Is(err, frame.ErrShortBuffer) {
		t.Errorf("expected frame.ErrShortBuffer, got %v", err)
	}
}

// ---------------------- Benchmarks ----------------------

func benchmarkSquarePatch(b *testing.B, backend Backend, channels, size int) {
	rng := rand.New(rand.NewSource(1))
	v := randomView(rng, 640, 480, channels, 0)
	positions := make([]frame.Position, 1024)
	for i := range positions {
		positions[i] = randomPosition(rng, v, size, frame.TopLeft)
	}
	patch := make([]uint8, PatchElements(size, channels))

	b.ResetTimer()
	start := time.Now()
	for i := 0; i < b.N; i++ {
		SquarePatchWith(backend, patch, v, positions[i&1023], size, frame.TopLeft)
	}
	elapsed := time.Since(start)

	pixels := float64(b.N) * float64(size*size)
	b.ReportMetric(pixels/1e6/elapsed.Seconds(), "Mpixels/sec")
}

func BenchmarkSquarePatch(b *testing.B) {
	for _, backend := range Backends() {
		for _, channels := range []int{1, 3, 4} {
			for _, size := range []int{5, 7, 15} {
				b.Run(fmt.Sprintf("%s/ch%d/size%d", backend, channels, size), func(b *testing.B) {
					benchmarkSquarePatch(b, backend, channels, size)
				})
			}
		}
	}
}
