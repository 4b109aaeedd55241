package client

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Keeps otherwise identical transactions apart
func randomNonce() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
