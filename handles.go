package nxtvk

/*
#include <stdlib.h>
*/
import "C"

import (
	"sync"
	"unsafe"
)

const syntheticChunk = 4096

// Synthetic handles point into C memory that is never freed. vk handle types
// are pointers to incomplete C structs, which the collector does not track,
// so Go heap memory behind them could be reused while the handle is live.
var synthetic struct {
	sync.Mutex
	chunk unsafe.Pointer
	next  int
}

// NewSyntheticHandle returns a unique non-nil pointer suitable for filling a
// Vulkan handle when no driver is present. The value must never reach a real
// driver.
func NewSyntheticHandle() unsafe.Pointer {
	synthetic.Lock()
	defer synthetic.Unlock()

	if synthetic.chunk == nil || synthetic.next == syntheticChunk {
		synthetic.chunk = C.calloc(syntheticChunk, C.size_t(unsafe.Sizeof(uint64(0))))
		if synthetic.chunk == nil {
			panic("nxtvk: cannot allocate synthetic handles")
		}
		synthetic.next = 0
	}
	h := unsafe.Add(synthetic.chunk, synthetic.next*int(unsafe.Sizeof(uint64(0))))
	synthetic.next++
	return h
}
