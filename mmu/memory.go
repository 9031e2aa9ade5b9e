package mmu

import (
	"fmt"
	"io"
	"iter"
	"maps"
)

const (
	CONTEXT_COUNT   = 256     // Number of execution contexts.
	POOL_SIZE       = 1 << 16 // Bytes in each process pool.
	BOOT_IMAGE_SIZE = 1 << 24 // Bytes in the boot image.
)

// Pool selects one of the memory pools.
type Pool int

//go:generate go tool stringer -linecomment -type=Pool
const (
	POOL_DATA = Pool(0) // data
	POOL_CODE = Pool(1) // code
	POOL_ROPD = Pool(2) // ropd
	POOL_BOOT = Pool(3) // boot
)

var _mmu_defines = map[string]string{
	"PAGE_DATA":          fmt.Sprintf("%#x", uint32(PAGE_DATA)<<24),
	"PAGE_CODE":          fmt.Sprintf("%#x", uint32(PAGE_CODE)<<24),
	"PAGE_ROPD":          fmt.Sprintf("%#x", uint32(PAGE_ROPD)<<24),
	"PAGE_SPECIFIC_DATA": fmt.Sprintf("%#x", uint32(PAGE_SPECIFIC_DATA)<<24),
	"PAGE_SPECIFIC_CODE": fmt.Sprintf("%#x", uint32(PAGE_SPECIFIC_CODE)<<24),
	"PAGE_SPECIFIC_ROPD": fmt.Sprintf("%#x", uint32(PAGE_SPECIFIC_ROPD)<<24),
	"PAGE_BOOT":          fmt.Sprintf("%#x", uint32(PAGE_BOOT)<<24),
	"POOL_SIZE":          fmt.Sprintf("%v", POOL_SIZE),
}

// ProcessMemory holds the three pools owned by one context.
type ProcessMemory struct {
	Data [POOL_SIZE]byte // Read-write.
	Code [POOL_SIZE]byte // Read-only to the owner.
	Ropd [POOL_SIZE]byte // Read-only data.
}

// Pool returns the backing bytes of a pool.
func (pm *ProcessMemory) Pool(pool Pool) (data []byte, err error) {
	switch pool {
	case POOL_DATA:
		data = pm.Data[:]
	case POOL_CODE:
		data = pm.Code[:]
	case POOL_ROPD:
		data = pm.Ropd[:]
	default:
		err = ErrPoolInvalid
	}
	return
}

// BootImage is the program image handed over by the boot loader.
type BootImage struct {
	Data [BOOT_IMAGE_SIZE]byte
	Size int // Bytes populated by the loader.
}

// Set replaces the boot image contents.
func (bi *BootImage) Set(data []byte) (err error) {
	if len(data) > len(bi.Data) {
		err = ErrBootImageSize
		return
	}

	clear(bi.Data[:])
	bi.Size = copy(bi.Data[:], data)

	return
}

// Load reads the boot image from a loader stream.
func (bi *BootImage) Load(in io.Reader) (err error) {
	data, err := io.ReadAll(io.LimitReader(in, BOOT_IMAGE_SIZE+1))
	if err != nil {
		return
	}

	err = bi.Set(data)
	return
}

// Memory is the arena of every pool in the machine.
type Memory struct {
	Verbose bool // Set to log rejected accesses.

	Process [CONTEXT_COUNT]ProcessMemory // Indexed by context id.
	Boot    BootImage
}

// NewMemory allocates the memory arena.
func NewMemory() (mem *Memory) {
	mem = &Memory{}
	return
}

// Defines for the memory map.
func (mem *Memory) Defines() iter.Seq2[string, string] {
	return maps.All(_mmu_defines)
}

// Reset zeros every process pool. The boot image is kept.
func (mem *Memory) Reset() {
	for n := range mem.Process {
		pm := &mem.Process[n]
		clear(pm.Data[:])
		clear(pm.Code[:])
		clear(pm.Ropd[:])
	}
}

// Load copies data into a pool of a context, starting at offset.
func (mem *Memory) Load(id uint8, pool Pool, offset uint16, data []byte) (err error) {
	var dst []byte
	if pool == POOL_BOOT {
		dst = mem.Boot.Data[:]
	} else {
		dst, err = mem.Process[id].Pool(pool)
		if err != nil {
			return
		}
	}

	if int(offset)+len(data) > len(dst) {
		err = ErrSize
		return
	}

	copy(dst[offset:], data)
	if pool == POOL_BOOT {
		mem.Boot.Size = max(mem.Boot.Size, int(offset)+len(data))
	}

	return
}
