// Package mmu implements the segmented address space of the EPU.
//
// A logical address is 32 bits: the top byte is the page (region tag), the
// next byte is the sub-selector (an explicit context id, only honoured for
// privileged routes) and the low 16 bits are the offset into a 64KiB pool.
//
// Every context owns three pools (data, code and read-only data). The
// privileged context may reach any context's pools through the "specific"
// pages, and the boot image through page 0xFF.
package mmu
