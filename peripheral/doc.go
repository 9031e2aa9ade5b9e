// Package peripheral implements the video and input peripheral of the EPU.
//
// The Dispatcher services the peripheral interrupts (0xFF00-0xFFFF) raised
// by the cpu. It owns the Graphics state (frame buffer, palette and glyph
// table), and talks to the host through a Device.
package peripheral
