package textback

import (
	"crypto/rand"
	"errors"
	"math"
	"unicode/utf16"
)

// ErrEmptyInput is returned when choosing from an empty sequence
var ErrEmptyInput = errors.New("cannot choose from an empty sequence")

const (
	arc4Width      = 256
	arc4Mask       = arc4Width - 1
	arc4Chunks     = 6
	arc4StartDenom = 1 << 48 // arc4Width ^ arc4Chunks
	significance   = 1 << 52
	overflow       = significance * 2
	maxSafeInteger = 1<<53 - 1
)

const seedLetters = "abcdefghijklmnopqrstuvwxyz"

// Random is a seeded pseudo-random stream. For a fixed seed string every sequence of calls
// returns the same values as the seedrandom ARC4 generator, so a seed reproduces a question
// on any platform. Random is not safe for concurrent use.
type Random struct {
	s    [arc4Width]byte
	i, j byte
}

// NewRandom creates a stream keyed by the given seed string
func NewRandom(seed string) *Random {
	return newARC4(mixKey(seed))
}

// NewRandomSeed creates a stream keyed from the system entropy source
func NewRandomSeed() *Random {
	key := make([]int, arc4Width)
	buf := make([]byte, arc4Width)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to read random seed: " + err.Error())
	}
	for i, b := range buf {
		key[i] = int(b)
	}
	return newARC4(key)
}

// mixKey folds the UTF-16 code units of the seed into a key of at most 256 bytes
func mixKey(seed string) []int {
	units := utf16.Encode([]rune(seed))
	key := make([]int, 0, arc4Width)
	smear := 0
	for j, u := range units {
		idx := j & arc4Mask
		prev := 0
		if idx < len(key) {
			prev = key[idx]
		}
		smear ^= prev * 19
		v := (smear + int(u)) & arc4Mask
		if idx < len(key) {
			key[idx] = v
		} else {
			key = append(key, v)
		}
	}
	return key
}

func newARC4(key []int) *Random {
	if len(key) == 0 {
		key = []int{0}
	}
	r := &Random{}
	for i := range r.s {
		r.s[i] = byte(i)
	}
	var j byte
	for i := 0; i < arc4Width; i++ {
		t := r.s[i]
		j = byte(int(j) + key[i%len(key)] + int(t))
		r.s[i] = r.s[j]
		r.s[j] = t
	}
	// RC4-drop[256]
	r.next(arc4Width)
	return r
}

// next returns count keystream bytes as a big-endian number
func (r *Random) next(count int) uint64 {
	var out uint64
	for ; count > 0; count-- {
		r.i++
		t := r.s[r.i]
		r.j += t
		r.s[r.i] = r.s[r.j]
		r.s[r.j] = t
		out = out<<8 | uint64(r.s[r.s[r.i]+t])
	}
	return out
}

// Float returns a number in [0, 1) with 52 bits of randomness
func (r *Random) Float() float64 {
	n := float64(r.next(arc4Chunks))
	d := float64(arc4StartDenom)
	var x uint64
	for n < significance {
		n = (n + float64(x)) * arc4Width
		d *= arc4Width
		x = r.next(1)
	}
	for n >= overflow {
		n /= 2
		d /= 2
		x >>= 1
	}
	return (n + float64(x)) / d
}

// Uniform returns a number in [lo, hi)
func (r *Random) Uniform(lo, hi float64) float64 {
	return r.Float()*(hi-lo) + lo
}

// Range returns an integer in [lo, hi)
func (r *Random) Range(lo, hi int) int {
	return int(math.Floor(r.Uniform(float64(lo), float64(hi))))
}

// Bool returns true half of the time
func (r *Random) Bool() bool {
	return r.Float() < 0.5
}

// String returns n random lowercase letters
func (r *Random) String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = seedLetters[r.Range(0, len(seedLetters))]
	}
	return string(b)
}

// ModelSeed returns an integer suitable for seeding a text generation model
func (r *Random) ModelSeed() int64 {
	return int64(math.Floor(r.Uniform(-maxSafeInteger, maxSafeInteger)))
}

// Choice returns a uniformly chosen element of items
func Choice[T any](r *Random, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyInput
	}
	return items[r.Range(0, len(items))], nil
}

// Shuffle permutes items in place with Fisher-Yates and returns it
func Shuffle[T any](r *Random, items []T) []T {
	for i := len(items) - 1; i >= 0; i-- {
		j := r.Range(0, i+1)
		items[i], items[j] = items[j], items[i]
	}
	return items
}
