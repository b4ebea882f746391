package types

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalcDigest(t *testing.T) {
	require.Equal(t, CalcDigest([]byte("foo")), CalcDigest([]byte("foo")))
	require.NotEqual(t, CalcDigest([]byte("foo")), CalcDigest([]byte("bar")))
}

func TestRandomDigest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d1 := RandomDigest(rng)
	d2 := RandomDigest(rng)
	require.NotEqual(t, d1, d2)

	// same seed, same sequence
	rng2 := rand.New(rand.NewSource(1))
	require.Equal(t, d1, RandomDigest(rng2))
	require.Equal(t, d2, RandomDigest(rng2))
}

func TestDigestStrings(t *testing.T) {
	d := CalcDigest([]byte("foo"))
	require.Len(t, d.Hex(), 2*DigestLength)
	require.Equal(t, d.Hex(), d.String())
	require.Len(t, d.ShortString(), 10)
	require.Equal(t, d.Hex()[:10], d.ShortString())
}

func TestDigestCompare(t *testing.T) {
	a := BytesToDigest([]byte{1})
	b := BytesToDigest([]byte{2})
	require.Equal(t, 0, a.Compare(a))
	require.Negative(t, a.Compare(b))
	require.Positive(t, b.Compare(a))
}

func TestBytesToDigest(t *testing.T) {
	d := BytesToDigest([]byte{0xab})
	require.Equal(t, byte(0xab), d[DigestLength-1])
	require.Equal(t, byte(0), d[0])

	long := make([]byte, DigestLength+4)
	for i := range long {
		long[i] = byte(i)
	}
	cropped := BytesToDigest(long)
	require.Equal(t, long[4:], cropped.Bytes())
}
