package model

import (
	"encoding/hex"
	"fmt"

	"github.com/newtron-network/mcoracle/pkg/util"
)

// Bitmap widths used by the driver's multicast tables.
const (
	PlainBitmapWidth    = 4 * PortsPerPipe
	ExtendedBitmapWidth = 2 * PlainBitmapWidth
)

// BitmapWidthForPipes returns the bitmap width needed to cover numPipes pipes.
func BitmapWidthForPipes(numPipes int) int {
	if numPipes <= 4 {
		return PlainBitmapWidth
	}
	return ExtendedBitmapWidth
}

// PortBitmap is a fixed-width port bitmap indexed by ToBitIndex.
// Bit i lives in byte i/8 at position i%8.
type PortBitmap struct {
	width int
	bits  []byte
}

// NewPortBitmap allocates an empty bitmap of width bits.
func NewPortBitmap(width int) *PortBitmap {
	return &PortBitmap{width: width, bits: make([]byte, (width+7)/8)}
}

// PortBitmapOf builds a bitmap holding ports.
func PortBitmapOf(width int, ports []Port) (*PortBitmap, error) {
	b := NewPortBitmap(width)
	for _, p := range ports {
		if err := b.Set(p); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ParsePortBitmap decodes the byte form produced by Bytes.
func ParsePortBitmap(width int, data []byte) (*PortBitmap, error) {
	b := NewPortBitmap(width)
	if len(data) != len(b.bits) {
		return nil, fmt.Errorf("bitmap of width %d needs %d bytes, got %d", width, len(b.bits), len(data))
	}
	copy(b.bits, data)
	if extra := len(b.bits)*8 - width; extra > 0 {
		if b.bits[len(b.bits)-1]>>(8-extra) != 0 {
			return nil, fmt.Errorf("bitmap has bits set beyond width %d", width)
		}
	}
	return b, nil
}

// ParsePortBitmapHex decodes the hex form produced by Hex.
func ParsePortBitmapHex(width int, s string) (*PortBitmap, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding bitmap: %w", err)
	}
	return ParsePortBitmap(width, data)
}

// Width returns the bitmap width in bits.
func (b *PortBitmap) Width() int {
	return b.width
}

// Set marks port in the bitmap.
func (b *PortBitmap) Set(p Port) error {
	if !p.Valid() {
		return fmt.Errorf("port %d: invalid local port %d", p, p.LocalPort())
	}
	i := ToBitIndex(p)
	if err := util.CheckRange("bit index", i, b.width); err != nil {
		return err
	}
	b.bits[i/8] |= 1 << (i % 8)
	return nil
}

// Clear unmarks port. Ports outside the bitmap are ignored.
func (b *PortBitmap) Clear(p Port) {
	i := ToBitIndex(p)
	if !p.Valid() || i >= b.width {
		return
	}
	b.bits[i/8] &^= 1 << (i % 8)
}

// Has reports whether port is marked.
func (b *PortBitmap) Has(p Port) bool {
	i := ToBitIndex(p)
	if !p.Valid() || i >= b.width {
		return false
	}
	return b.bits[i/8]&(1<<(i%8)) != 0
}

// Ports returns the marked ports in bit order.
func (b *PortBitmap) Ports() []Port {
	var ports []Port
	for i := 0; i < b.width; i++ {
		if b.bits[i/8]&(1<<(i%8)) != 0 {
			ports = append(ports, FromBitIndex(i))
		}
	}
	return ports
}

// Count returns the number of marked ports.
func (b *PortBitmap) Count() int {
	n := 0
	for _, v := range b.bits {
		for ; v != 0; v &= v - 1 {
			n++
		}
	}
	return n
}

// Bytes returns a copy of the raw bitmap.
func (b *PortBitmap) Bytes() []byte {
	out := make([]byte, len(b.bits))
	copy(out, b.bits)
	return out
}

// Hex returns the raw bitmap as lowercase hex.
func (b *PortBitmap) Hex() string {
	return hex.EncodeToString(b.bits)
}

// Equal reports whether both bitmaps have the same width and bits.
func (b *PortBitmap) Equal(o *PortBitmap) bool {
	if b.width != o.width {
		return false
	}
	for i := range b.bits {
		if b.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}
