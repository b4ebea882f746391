package types

import (
	"bytes"
	"encoding/hex"
	"math/rand"

	"github.com/spikenet/antientropy/hash"
)

// DigestLength is 32, the length in bytes of a Digest.
const DigestLength = hash.Size

// Digest is a 32-byte content identifier. Regular items carry uniformly
// random digests standing in for real content hashes; aggregate digests are
// derived from byte content via CalcDigest. A Digest is never mutated after
// creation and is compared by value.
type Digest [DigestLength]byte

// CalcDigest returns the 32-byte blake3 sum of the given data.
func CalcDigest(data []byte) Digest {
	return Digest(hash.Sum(data))
}

// RandomDigest returns a digest drawn uniformly from the given source.
func RandomDigest(rng *rand.Rand) Digest {
	var d Digest
	rng.Read(d[:])
	return d
}

// Bytes gets the byte representation of the underlying digest.
func (d Digest) Bytes() []byte { return d[:] }

// Hex converts the digest to a hex string.
func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}

// ShortString returns the first 10 hex characters of the digest, for logging
// purposes.
func (d Digest) ShortString() string {
	return d.Hex()[:10]
}

// Compare orders digests lexicographically.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// SetBytes sets the digest to the value of b.
// If b is larger than len(d), b will be cropped from the left.
func (d *Digest) SetBytes(b []byte) {
	if len(b) > len(d) {
		b = b[len(b)-DigestLength:]
	}
	copy(d[DigestLength-len(b):], b)
}

// BytesToDigest sets b to a digest.
// If b is larger than len(d), b will be cropped from the left.
func BytesToDigest(b []byte) Digest {
	var d Digest
	d.SetBytes(b)
	return d
}
