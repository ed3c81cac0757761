package vectorstore

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes. Chunk keys embed the tenant so a search can iterate one
// tenant's records without touching any other tenant's data.
const (
	chunkKeyPrefix = "chunk"
	chunkIDSeq     = "chunkseq"
)

// makeChunkKey generates a key for a chunk record.
// Format: chunk:<tenant>:<id>, with the ID in BigEndian so keys sort by
// insertion order within a tenant.
func makeChunkKey(tenantID string, id uint64) []byte {
	prefix := makeTenantPrefix(tenantID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// makeTenantPrefix generates the iteration prefix for one tenant's chunks.
func makeTenantPrefix(tenantID string) []byte {
	return fmt.Appendf(nil, "%s:%s:", chunkKeyPrefix, tenantID)
}
