package core

import (
	"encoding/binary"
	"math"
)

// MurmurHash64A hashes key with the 64-bit MurmurHash2 variant.
func MurmurHash64A(key []byte, seed uint64) uint64 {
	const m = 0xc6a4a7935bd1e995
	const r = 47

	h := seed ^ (uint64(len(key)) * m)

	n := len(key) / 8
	for i := 0; i < n; i++ {
		k := binary.LittleEndian.Uint64(key[8*i:])
		k *= m
		k ^= k >> r
		k *= m

		h ^= k
		h *= m
	}

	tail := key[8*n:]
	switch len(tail) & 7 {
	case 7:
		h ^= uint64(tail[6]) << 48
		fallthrough
	case 6:
		h ^= uint64(tail[5]) << 40
		fallthrough
	case 5:
		h ^= uint64(tail[4]) << 32
		fallthrough
	case 4:
		h ^= uint64(tail[3]) << 24
		fallthrough
	case 3:
		h ^= uint64(tail[2]) << 16
		fallthrough
	case 2:
		h ^= uint64(tail[1]) << 8
		fallthrough
	case 1:
		h ^= uint64(tail[0])
		h *= m
	}

	h ^= h >> r
	h *= m
	h ^= h >> r
	return h
}

// Hash hashes the bit patterns of a list of vectors followed by a list of identifiers.
func Hash(vs []Vec3, ids ...uint64) uint64 {
	var scratch [128]byte
	buf := scratch[:0]
	for _, v := range vs {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.X))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Y))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Z))
	}
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint64(buf, id)
	}
	return MurmurHash64A(buf, 0)
}

// HashFloat maps Hash onto [0, 1) using its low 32 bits.
func HashFloat(vs []Vec3, ids ...uint64) float64 {
	return float64(uint32(Hash(vs, ids...))) * 0x1p-32
}

// MixBits is a 64-bit finalizer used to decorrelate seeds.
func MixBits(v uint64) uint64 {
	v ^= v >> 31
	v *= 0x7fb5d329728ea185
	v ^= v >> 27
	v *= 0x81dadef4bc2dd44d
	v ^= v >> 33
	return v
}
