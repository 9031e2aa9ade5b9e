package mmu

import (
	"fmt"
)

// Address is a 32-bit logical address.
type Address uint32

// Page (region tag) constants.
const (
	PAGE_DATA          = uint8(0x00) // Bound data, first page.
	PAGE_DATA_LAST     = uint8(0x0F) // Bound data, last page.
	PAGE_CODE          = uint8(0x10) // Bound code.
	PAGE_ROPD          = uint8(0x11) // Bound read-only data.
	PAGE_SPECIFIC_DATA = uint8(0xD0) // Specific data, first page.
	PAGE_SPECIFIC_LAST = uint8(0xDF) // Specific data, last page.
	PAGE_SPECIFIC_CODE = uint8(0xE0) // Specific code.
	PAGE_SPECIFIC_ROPD = uint8(0xE1) // Specific read-only data.
	PAGE_BOOT          = uint8(0xFF) // Boot image.
	OFFSET_MASK        = uint32(0x0000_FFFF)
	BOOT_OFFSET_MASK   = uint32(0x00FF_FFFF)
	PAGE_MASK          = uint32(0xFF00_0000)
	PAGE_SUB_MASK      = uint32(0xFFFF_0000)
	BOOT_ENTRY         = Address(0xFF00_0000) // Boot image entry point.
	BOUND_CODE_ENTRY   = Address(0x1000_0000) // Start of a context's code pool.
	BOUND_DATA_ENTRY   = Address(0x0000_0000) // Start of a context's data pool.
	BOUND_ROPD_ENTRY   = Address(0x1100_0000) // Start of a context's ropd pool.
)

// MakeAddress builds an address from its fields.
func MakeAddress(page, sub uint8, offset uint16) Address {
	return Address(uint32(page)<<24 | uint32(sub)<<16 | uint32(offset))
}

// Specific returns the privileged address of a pool of another context.
func Specific(pool Pool, id uint8, offset uint16) (addr Address) {
	switch pool {
	case POOL_DATA:
		addr = MakeAddress(PAGE_SPECIFIC_DATA, id, offset)
	case POOL_CODE:
		addr = MakeAddress(PAGE_SPECIFIC_CODE, id, offset)
	case POOL_ROPD:
		addr = MakeAddress(PAGE_SPECIFIC_ROPD, id, offset)
	case POOL_BOOT:
		addr = BOOT_ENTRY | Address(offset)
	}
	return
}

// Page returns the region tag.
func (addr Address) Page() uint8 {
	return uint8(addr >> 24)
}

// Sub returns the sub-selector.
func (addr Address) Sub() uint8 {
	return uint8(addr >> 16)
}

// Offset returns the 16-bit pool offset.
func (addr Address) Offset() uint16 {
	return uint16(addr)
}

// String returns the address as page_sub_offset.
func (addr Address) String() string {
	return fmt.Sprintf("%02X_%02X_%04X", addr.Page(), addr.Sub(), addr.Offset())
}
