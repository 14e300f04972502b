// Package madvise issues a best-effort memory-access hint to the kernel
// for a memory-mapped BTF blob, whose id-indexed lookups are not
// sequential. It is a hint only: failures are swallowed, matching the
// fire-and-forget nature of madvise(2) itself.
package madvise

// Random hints that access to data will be random, not sequential. On
// platforms without a random-access implementation this is a no-op.
func Random(data []byte) {
	random(data)
}
