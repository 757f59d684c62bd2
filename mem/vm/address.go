package vm

// An Address is a virtual address split into its radix indices and page
// offset.
type Address struct {
	Value uint64

	// VPN holds the index at each level. VPN[0] is the level 1 index.
	VPN [NumLevels]uint64

	Offset     uint64
	PageNumber uint64
}

// Level returns the index used at the given level, numbered from 1.
func (a Address) Level(level int) uint64 {
	return a.VPN[level-1]
}

// Decompose splits a virtual address. Bits above VirtualBits are ignored.
func (c Config) Decompose(vAddr uint64) Address {
	addr := Address{
		Value:      vAddr,
		Offset:     vAddr & mask(c.Log2PageSize),
		PageNumber: c.PageNumber(vAddr),
	}

	shift := c.Log2PageSize
	for level := NumLevels; level >= 1; level-- {
		bits := c.LevelBits[level-1]
		addr.VPN[level-1] = (vAddr >> shift) & mask(bits)
		shift += bits
	}

	return addr
}

// Offset returns the page offset of an address.
func (c Config) Offset(addr uint64) uint64 {
	return addr & mask(c.Log2PageSize)
}

// PageNumber returns the virtual page number of an address.
func (c Config) PageNumber(vAddr uint64) uint64 {
	return (vAddr >> c.Log2PageSize) & mask(c.pageNumberBits())
}

// PageBase returns the first virtual address of a virtual page number.
func (c Config) PageBase(vpn uint64) uint64 {
	return vpn << c.Log2PageSize
}

// TLBIndex returns the TLB set that caches the address.
func (c Config) TLBIndex(vAddr uint64) uint64 {
	return c.PageNumber(vAddr) & mask(c.TLBIndexBits)
}

// TLBTag returns the tag that identifies the address within its TLB set.
func (c Config) TLBTag(vAddr uint64) uint64 {
	return (c.PageNumber(vAddr) >> c.TLBIndexBits) & mask(c.TLBTagBits)
}

// PhysicalAddress composes a frame number and a page offset.
func (c Config) PhysicalAddress(ppn, offset uint64) uint64 {
	return ppn<<c.Log2PageSize | offset&mask(c.Log2PageSize)
}

// FrameNumber returns the frame number of a physical address.
func (c Config) FrameNumber(pAddr uint64) uint64 {
	return pAddr >> c.Log2PageSize
}

func mask(bits uint64) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}

	return (1 << bits) - 1
}
