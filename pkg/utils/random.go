package utils

import (
	"crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"time"
)

// DeriveSeed выводит зерно агента из мастер-зерна эпизода.
// Одинаковые (seed, agentID) всегда дают одинаковое зерно.
func DeriveSeed(seed int64, agentID int) int64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(agentID))
	_, _ = h.Write(buf[:])
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// RandomSeed возвращает случайное мастер-зерно, когда оно не задано.
func RandomSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) & 0x7fffffffffffffff)
}
