package interp

// Channel-specialised kernels. Every kernel receives src positioned at the
// patch's top-left anchor and writes size*size*channels bytes to dst. Each
// one must match sampleReference bit for bit.

func sampleUnrolled1(dst, src []uint8, stride, size int, f Factors) {
	for y := 0; y < size; y++ {
		top := src[y*stride : y*stride+size+1]
		bot := src[(y+1)*stride : (y+1)*stride+size+1]
		row := dst[y*size : (y+1)*size]

		x := 0
		for ; x+1 < size; x += 2 {
			row[x] = f.Blend(top[x], top[x+1], bot[x], bot[x+1])
			row[x+1] = f.Blend(top[x+1], top[x+2], bot[x+1], bot[x+2])
		}
		if x < size {
			row[x] = f.Blend(top[x], top[x+1], bot[x], bot[x+1])
		}
	}
}

func sampleUnrolled2(dst, src []uint8, stride, size int, f Factors) {
	n := size * 2
	for y := 0; y < size; y++ {
		top := src[y*stride : y*stride+n+2]
		bot := src[(y+1)*stride : (y+1)*stride+n+2]
		row := dst[y*n : (y+1)*n]

		for e := 0; e < n; e += 2 {
			row[e] = f.Blend(top[e], top[e+2], bot[e], bot[e+2])
			row[e+1] = f.Blend(top[e+1], top[e+3], bot[e+1], bot[e+3])
		}
	}
}

func sampleUnrolled3(dst, src []uint8, stride, size int, f Factors) {
	n := size * 3
	for y := 0; y < size; y++ {
		top := src[y*stride : y*stride+n+3]
		bot := src[(y+1)*stride : (y+1)*stride+n+3]
		row := dst[y*n : (y+1)*n]

		for e := 0; e < n; e += 3 {
			row[e] = f.Blend(top[e], top[e+3], bot[e], bot[e+3])
			row[e+1] = f.Blend(top[e+1], top[e+4], bot[e+1], bot[e+4])
			row[e+2] = f.Blend(top[e+2], top[e+5], bot[e+2], bot[e+5])
		}
	}
}

func sampleUnrolled4(dst, src []uint8, stride, size int, f Factors) {
	n := size * 4
	for y := 0; y < size; y++ {
		top := src[y*stride : y*stride+n+4]
		bot := src[(y+1)*stride : (y+1)*stride+n+4]
		row := dst[y*n : (y+1)*n]

		for e := 0; e < n; e += 4 {
			row[e] = f.Blend(top[e], top[e+4], bot[e], bot[e+4])
			row[e+1] = f.Blend(top[e+1], top[e+5], bot[e+1], bot[e+5])
			row[e+2] = f.Blend(top[e+2], top[e+6], bot[e+2], bot[e+6])
			row[e+3] = f.Blend(top[e+3], top[e+7], bot[e+3], bot[e+7])
		}
	}
}

// unrolledKernel returns the specialised kernel for the channel count, or a
// closure over the reference loop for wider pixels.
func unrolledKernel(channels int) kernel {
	switch channels {
	case 1:
		return sampleUnrolled1
	case 2:
		return sampleUnrolled2
	case 3:
		return sampleUnrolled3
	case 4:
		return sampleUnrolled4
	default:
		return referenceKernel(channels)
	}
}
