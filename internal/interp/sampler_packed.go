package interp

import "encoding/binary"

// The packed kernel interpolates eight interleaved bytes at a time. Because
// channel n of pixel x only ever mixes with channel n of pixel x+1, output
// element e depends on source elements e and e+channels of the two rows and
// no de-interleaving is needed.
//
// An 8-byte block is split into four 64-bit words holding two 32-bit lanes
// each (bytes k and k+4). The largest lane value is 255*16384 + 8192, well
// below 1<<32, so lanes never carry into each other.

const (
	laneMask  = 0x000000FF000000FF
	laneRound = weightRound | weightRound<<32
)

// packedEligible reports whether the packed kernel handles the configuration.
func packedEligible(channels, patchSize int) bool {
	return channels >= 1 && channels <= 4 && patchSize >= 5 && patchSize*channels >= 8
}

func samplePacked(channels int) kernel {
	return func(dst, src []uint8, stride, size int, f Factors) {
		n := size * channels
		for y := 0; y < size; y++ {
			top := src[y*stride : y*stride+n+channels]
			bot := src[(y+1)*stride : (y+1)*stride+n+channels]
			row := dst[y*n : (y+1)*n]

			for o := 0; o < n; o += 8 {
				if o+8 > n {
					// shifted final block, overlapping the previous one
					o = n - 8
				}
				tl := binary.LittleEndian.Uint64(top[o:])
				tr := binary.LittleEndian.Uint64(top[o+channels:])
				bl := binary.LittleEndian.Uint64(bot[o:])
				br := binary.LittleEndian.Uint64(bot[o+channels:])
				binary.LittleEndian.PutUint64(row[o:], blend8(tl, tr, bl, br, f))
			}
		}
	}
}

func blend8(tl, tr, bl, br uint64, f Factors) uint64 {
	ftl, ftr, fbl, fbr := uint64(f.TL), uint64(f.TR), uint64(f.BL), uint64(f.BR)

	var out uint64
	for k := uint(0); k < 32; k += 8 {
		acc := (tl>>k&laneMask)*ftl +
			(tr>>k&laneMask)*ftr +
			(bl>>k&laneMask)*fbl +
			(br>>k&laneMask)*fbr +
			laneRound
		out |= (acc >> weightShift & laneMask) << k
	}
	return out
}
