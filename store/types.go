package store

// entry is one virtual file: either owned bytes (group/array metadata or a
// static compressed chunk) or a lazy handle resolved by fetchChunk on first
// read.
type entry struct {
	bytes   []byte
	isChunk bool // true when this entry is a data-chunk handle, not owned bytes
	handle  chunkHandle
}

// chunkHandle names the (variable, chunk index) pair a lazy data-chunk entry
// resolves to.
type chunkHandle struct {
	variable string
	index    []int
}

// axisTrim records how a bbox trimmed one coordinate axis: the offset into
// the backing file's full-length coordinate where the kept index range
// starts, and whether the backing coordinate runs in descending order and
// was flipped to expose ascending order (exposed index 0 then maps to the
// last kept file index).
type axisTrim struct {
	offset  int
	flipped bool
}

// variablePlan is the installed shape of one array in the VFS: its
// dimension names (post time-prepend for data variables), exposed shape,
// planned chunk shape, dtype, and enough bbox-trim/flip bookkeeping for the
// chunk fetcher to compute OPeNDAP slices.
type variablePlan struct {
	dims      []string
	shape     []int
	chunks    []int
	dtype     string
	fillValue string
	timeAxis  int // index into dims, or -1
	// timePrepended is true when dims[timeAxis] does not exist on the
	// backing granule file's own variable and was synthesised by
	// installDataVariable, meaning a per-granule OPeNDAP request carries no
	// slice for it at all.
	timePrepended bool
	offsets       []int
	flipped       []bool
}
