package querycache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

type entry struct {
	fetchedAt   int64 // unix nano
	generations []uint64
	data        []byte
}

func unmarshalError(msg string) error {
	return fmt.Errorf("unmarshal entry: %s", msg)
}

func marshalEntry(e entry) []byte {
	var buf bytes.Buffer
	var placeholder [16]byte

	// fetched at
	size := binary.PutUvarint(placeholder[:], uint64(e.fetchedAt))
	_, _ = buf.Write(placeholder[:size])

	// generations
	size = binary.PutUvarint(placeholder[:], uint64(len(e.generations)))
	_, _ = buf.Write(placeholder[:size])
	for _, gen := range e.generations {
		binary.LittleEndian.PutUint64(placeholder[:], gen)
		_, _ = buf.Write(placeholder[:8])
	}

	// data
	size = binary.PutUvarint(placeholder[:], uint64(len(e.data)))
	_, _ = buf.Write(placeholder[:size])
	_, _ = buf.Write(e.data)

	return buf.Bytes()
}

func unmarshalEntry(data []byte) (entry, error) {
	fetchedAt, n := binary.Uvarint(data)
	if n <= 0 {
		return entry{}, unmarshalError("invalid fetched at")
	}
	data = data[n:]

	count, n := binary.Uvarint(data)
	if n <= 0 {
		return entry{}, unmarshalError("invalid generation count")
	}
	data = data[n:]

	if count > uint64(len(data))/8 {
		return entry{}, unmarshalError("missing generations")
	}
	gens := make([]uint64, count)
	for i := range gens {
		gens[i] = binary.LittleEndian.Uint64(data)
		data = data[8:]
	}

	dataLen, n := binary.Uvarint(data)
	if n <= 0 {
		return entry{}, unmarshalError("missing data length")
	}
	data = data[n:]

	if uint64(len(data)) < dataLen {
		return entry{}, unmarshalError("missing data")
	}
	d := make([]byte, dataLen)
	copy(d, data)

	return entry{
		fetchedAt:   int64(fetchedAt),
		generations: gens,
		data:        d,
	}, nil
}

func marshalGeneration(gen uint64) []byte {
	var data [8]byte
	binary.LittleEndian.PutUint64(data[:], gen)
	return data[:]
}

func unmarshalGeneration(data []byte) (uint64, bool) {
	if len(data) < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data), true
}

func equalGenerations(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func generationsString(gens []uint64) string {
	parts := make([]string, 0, len(gens))
	for _, g := range gens {
		parts = append(parts, strconv.FormatUint(g, 16))
	}
	return strings.Join(parts, ".")
}
