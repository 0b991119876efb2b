package ssd

// Buffer SSD kernels.
//
// These compare two contiguous buffers of equal length, the layout of
// sampled patches. Three variants exist:
//   - bufferNaive:     straightforward reference loop
//   - bufferUnrolled4: 4 elements per iteration (default)
//   - bufferUnrolled8: 8 elements per iteration
//
// All variants accumulate squared differences in int32 per iteration and
// return the exact sum as uint32. A patch of 63x63 pixels with 4 channels
// sums to at most 255² * 15876 < 2^32.

// Buffer returns the sum of squared differences of two equal-length buffers.
func Buffer(a, b []uint8) uint32 {
	return bufferSSD(a, b)
}

func bufferNaive(a, b []uint8) uint32 {
	var sum uint32
	for i := range a {
		d := int32(a[i]) - int32(b[i])
		sum += uint32(d * d)
	}
	return sum
}

func bufferUnrolled4(a, b []uint8) uint32 {
	n := len(a)
	b = b[:n]

	var sum uint32
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := int32(a[i+0]) - int32(b[i+0])
		d1 := int32(a[i+1]) - int32(b[i+1])
		d2 := int32(a[i+2]) - int32(b[i+2])
		d3 := int32(a[i+3]) - int32(b[i+3])
		sum += uint32(d0*d0 + d1*d1 + d2*d2 + d3*d3)
	}

	// Remainder (0-3 elements)
	for ; i < n; i++ {
		d := int32(a[i]) - int32(b[i])
		sum += uint32(d * d)
	}
	return sum
}

func bufferUnrolled8(a, b []uint8) uint32 {
	n := len(a)
	b = b[:n]

	var sum uint32
	i := 0
	for ; i+8 <= n; i += 8 {
		var acc int32

		d0 := int32(a[i+0]) - int32(b[i+0])
		d1 := int32(a[i+1]) - int32(b[i+1])
		d2 := int32(a[i+2]) - int32(b[i+2])
		d3 := int32(a[i+3]) - int32(b[i+3])
		acc += d0*d0 + d1*d1 + d2*d2 + d3*d3

		d4 := int32(a[i+4]) - int32(b[i+4])
		d5 := int32(a[i+5]) - int32(b[i+5])
		d6 := int32(a[i+6]) - int32(b[i+6])
		d7 := int32(a[i+7]) - int32(b[i+7])
		acc += d4*d4 + d5*d5 + d6*d6 + d7*d7

		sum += uint32(acc)
	}

	for ; i < n; i++ {
		d := int32(a[i]) - int32(b[i])
		sum += uint32(d * d)
	}
	return sum
}

// BufferImplementation selects the buffer SSD variant, for benchmarking.
type BufferImplementation int

const (
	BufferUnrolled4 BufferImplementation = iota // default
	BufferNaive
	BufferUnrolled8
)

func (i BufferImplementation) String() string {
	switch i {
	case BufferNaive:
		return "naive"
	case BufferUnrolled4:
		return "unrolled4"
	case BufferUnrolled8:
		return "unrolled8"
	default:
		return "unknown"
	}
}

var (
	currentBufferImpl = BufferUnrolled4
	bufferSSD         = bufferUnrolled4
)

// SetBufferImplementation switches the buffer SSD variant. It must not be
// called concurrently with SSD computations.
func SetBufferImplementation(impl BufferImplementation) {
	currentBufferImpl = impl
	switch impl {
	case BufferNaive:
		bufferSSD = bufferNaive
	case BufferUnrolled8:
		bufferSSD = bufferUnrolled8
	default:
		currentBufferImpl = BufferUnrolled4
		bufferSSD = bufferUnrolled4
	}
}

// GetBufferImplementation returns the active buffer SSD variant.
func GetBufferImplementation() BufferImplementation {
	return currentBufferImpl
}
