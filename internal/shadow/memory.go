package shadow

// pageBits sizes the shadow pages. 4 KiB pages match the granularity the
// underlying allocator hands out application memory in.
const (
	pageBits = 12
	pageSize = 1 << pageBits
	pageMask = pageSize - 1
)

// Memory is byte-addressed shadow storage with deterministic default
// content: every byte reads as zero until written. Pages are materialized
// lazily on first write, so the shadow footprint tracks the application's
// touched address space, not the full address space.
type Memory struct {
	pages map[uint64]*[pageSize]byte
}

// NewMemory creates empty shadow memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint64]*[pageSize]byte)}
}

// Get reads len(buf) shadow bytes starting at addr. Unwritten ranges read
// as zero.
func (m *Memory) Get(addr uint64, buf []byte) {
	for len(buf) > 0 {
		pageNo := addr >> pageBits
		off := int(addr & pageMask)
		n := pageSize - off
		if n > len(buf) {
			n = len(buf)
		}
		if page, ok := m.pages[pageNo]; ok {
			copy(buf[:n], page[off:off+n])
		} else {
			for i := 0; i < n; i++ {
				buf[i] = 0
			}
		}
		buf = buf[n:]
		addr += uint64(n)
	}
}

// Set writes len(data) shadow bytes starting at addr.
func (m *Memory) Set(addr uint64, data []byte) {
	for len(data) > 0 {
		pageNo := addr >> pageBits
		off := int(addr & pageMask)
		n := pageSize - off
		if n > len(data) {
			n = len(data)
		}
		page, ok := m.pages[pageNo]
		if !ok {
			page = new([pageSize]byte)
			m.pages[pageNo] = page
		}
		copy(page[off:off+n], data[:n])
		data = data[n:]
		addr += uint64(n)
	}
}

// NumPages returns the number of materialized shadow pages.
func (m *Memory) NumPages() int { return len(m.pages) }
