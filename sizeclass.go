package allocator

import "github.com/cznic/mathutil"

// numClasses is the number of small-object size classes: 32, 64, 128, 256,
// 512, 1024, 2048 bytes.
const numClasses = 7

// classSize returns the canonical cell size of class k: 2^(5+k).
func classSize(k int) int { return 1 << uint(5+k) }

// largeThreshold is the largest small-object cell size; any header-inclusive
// request above this goes through the large-object path instead of a bin.
var largeThreshold = classSize(numClasses - 1)

// bestClass returns the smallest class index whose canonical size is >=
// size, or -1 if size exceeds the largest class (the large-object path).
//
// This mirrors the bit-trick the teacher allocator uses to turn a byte size
// into a slot index: class k covers sizes in (2^(4+k), 2^(5+k)], so the
// answer is simply the bit length of size-1 minus 5, floored at 0.
func bestClass(size int) int {
	if size <= classSize(0) {
		return 0
	}
	bl := mathutil.BitLen(size - 1)
	if bl <= 5 {
		return 0
	}
	k := bl - 5
	if k >= numClasses {
		return -1
	}
	return k
}
