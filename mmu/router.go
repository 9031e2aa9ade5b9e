package mmu

import (
	"log"
)

// Accessor identifies the context issuing a memory access.
type Accessor interface {
	// ContextId is the index of the context owning the bound pools.
	ContextId() uint8
	// Privileged is true for the kernel context space.
	Privileged() bool
}

// route is a resolved memory access.
type route struct {
	pool Pool
	data []byte
	mask uint32 // Offset wrap mask.
	keep uint32 // Address bits preserved across increments.
}

// resolve finds the pool behind an address for a read or a write.
func (mem *Memory) resolve(who Accessor, addr Address, write bool) (rt route, ok bool) {
	page := addr.Page()
	privileged := who.Privileged()

	var id uint8
	rt.pool = -1
	switch {
	case page <= PAGE_DATA_LAST:
		id, rt.pool = who.ContextId(), POOL_DATA
	case page == PAGE_CODE && !write:
		id, rt.pool = who.ContextId(), POOL_CODE
	case page == PAGE_ROPD && !write:
		id, rt.pool = who.ContextId(), POOL_ROPD
	case !privileged:
		// Remaining routes are privileged.
	case page >= PAGE_SPECIFIC_DATA && page <= PAGE_SPECIFIC_LAST:
		id, rt.pool = addr.Sub(), POOL_DATA
	case page == PAGE_SPECIFIC_CODE && !write:
		id, rt.pool = addr.Sub(), POOL_CODE
	case page == PAGE_SPECIFIC_ROPD && !write:
		id, rt.pool = addr.Sub(), POOL_ROPD
	case page == PAGE_BOOT && !write:
		rt.pool = POOL_BOOT
	}

	switch rt.pool {
	case POOL_BOOT:
		rt.data = mem.Boot.Data[:]
		rt.mask = BOOT_OFFSET_MASK
		rt.keep = PAGE_MASK
	case POOL_DATA, POOL_CODE, POOL_ROPD:
		rt.data, _ = mem.Process[id].Pool(rt.pool)
		rt.mask = OFFSET_MASK
		rt.keep = PAGE_SUB_MASK
	default:
		return
	}

	ok = true
	return
}

func validSize(size int) bool {
	return size == 1 || size == 2 || size == 4
}

// Read reads a little-endian value of size bytes (1, 2 or 4) at *addr.
// The offset field of *addr is advanced past the value, wrapping inside
// its pool, so consecutive reads fetch consecutive bytes.
func (mem *Memory) Read(who Accessor, addr *Address, size int) (value uint32, err error) {
	if !validSize(size) {
		err = ErrSize
		return
	}

	rt, ok := mem.resolve(who, *addr, false)
	if !ok {
		if mem.Verbose {
			log.Printf("mmu: context %d read fault at %v", who.ContextId(), *addr)
		}
		err = &ErrFault{Address: *addr, Err: ErrRead}
		return
	}

	off := uint32(*addr) & rt.mask
	for n := range size {
		value |= uint32(rt.data[off]) << (8 * n)
		off = (off + 1) & rt.mask
	}
	*addr = Address((uint32(*addr) & rt.keep) | off)

	return
}

// Peek reads without advancing the caller's address.
func (mem *Memory) Peek(who Accessor, addr Address, size int) (value uint32, err error) {
	return mem.Read(who, &addr, size)
}

// Write stores a little-endian value of size bytes at addr.
// Only the data pools accept writes.
func (mem *Memory) Write(who Accessor, addr Address, size int, value uint32) (err error) {
	if !validSize(size) {
		err = ErrSize
		return
	}

	rt, ok := mem.resolve(who, addr, true)
	if !ok {
		if mem.Verbose {
			log.Printf("mmu: context %d write fault at %v", who.ContextId(), addr)
		}
		err = &ErrFault{Address: addr, Err: ErrWrite}
		return
	}

	off := uint32(addr) & rt.mask
	for n := range size {
		rt.data[off] = byte(value >> (8 * n))
		off = (off + 1) & rt.mask
	}

	return
}
