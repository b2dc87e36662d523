// ABOUTME: Size estimates for runtime-managed headers of maps and channels
// ABOUTME: Mirrors the runtime layouts the reflect package does not expose

package reflectsize

import (
	"reflect"
	"unsafe"
)

// hmap mirrors the header of a runtime map.
type hmap struct {
	count      int
	flags      uint8
	B          uint8
	noverflow  uint16
	hash0      uint32
	buckets    unsafe.Pointer
	oldbuckets unsafe.Pointer
	nevacuate  uintptr
	extra      unsafe.Pointer
}

// hchan mirrors the header of a runtime channel.
type hchan struct {
	qcount   uint
	dataqsiz uint
	buf      unsafe.Pointer
	elemsize uint16
	closed   uint32
	elemtype unsafe.Pointer
	sendx    uint
	recvx    uint
	recvq    [2]unsafe.Pointer
	sendq    [2]unsafe.Pointer
	lock     uintptr
}

const (
	bucketCnt     = 8
	maxKeySize    = 128
	maxElemSize   = 128
	loadFactorNum = 13
	loadFactorDen = 2
	ptrSize       = unsafe.Sizeof(uintptr(0))
)

// mapSize estimates the header and bucket storage of a map with n entries.
func mapSize(t reflect.Type, n int) uint64 {
	size := uint64(unsafe.Sizeof(hmap{}))
	if n == 0 {
		return size
	}
	keySlot, keyOut := slot(t.Key().Size(), maxKeySize)
	elemSlot, elemOut := slot(t.Elem().Size(), maxElemSize)
	bucket := bucketCnt + bucketCnt*(keySlot+elemSlot) + uint64(ptrSize)

	var b uint
	for n > bucketCnt && uint64(n)*loadFactorDen > loadFactorNum*(uint64(1)<<b) {
		b++
	}
	size += (uint64(1) << b) * bucket
	size += uint64(n) * (keyOut + elemOut)
	return size
}

// slot returns the in-bucket slot width for a key or element of the given
// size and the out-of-line bytes stored per entry when it is too large.
func slot(size, limit uintptr) (uint64, uint64) {
	if size > limit {
		return uint64(ptrSize), uint64(size)
	}
	return uint64(size), 0
}

// chanSize returns the header plus buffer storage of a channel.
func chanSize(t reflect.Type, capacity int) uint64 {
	return uint64(unsafe.Sizeof(hchan{})) + uint64(capacity)*uint64(t.Elem().Size())
}
