package hash

import "github.com/zeebo/blake3"

// Size is the size in bytes of a digest produced by Sum (32 bytes).
const Size = 32

// Sum returns the blake3 sum of the given data.
func Sum(data []byte) [Size]byte {
	return blake3.Sum256(data)
}
