package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/prometheus/prometheus/tsdb/chunkenc"
)

// maxChunkSamples keeps every chunk well inside the XOR chunk's uint16 sample counter.
const maxChunkSamples = 1 << 15

var (
	ErrInvalidChecksum = errors.New("checksum mismatch: data is corrupted")
	ErrTooSmall        = errors.New("data too small to be a valid chunk")
	ErrOutOfOrder      = errors.New("chunk samples are not consecutive steps")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodePath compresses a path into a sequence of length-prefixed XOR chunks.
// Sample timestamps are the step indices.
func EncodePath(path []float64) ([]byte, error) {
	var out []byte
	for start := 0; start < len(path); start += maxChunkSamples {
		end := start + maxChunkSamples
		if end > len(path) {
			end = len(path)
		}

		c := chunkenc.NewXORChunk()
		app, err := c.Appender()
		if err != nil {
			return nil, fmt.Errorf("failed to open chunk appender: %w", err)
		}
		for k := start; k < end; k++ {
			app.Append(int64(k), path[k])
		}

		frame := WrapChunk(c)
		out = binary.BigEndian.AppendUint32(out, uint32(len(frame)))
		out = append(out, frame...)
	}
	return out, nil
}

// DecodePath reverses EncodePath.
func DecodePath(data []byte) ([]float64, error) {
	var path []float64
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, ErrTooSmall
		}
		n := int(binary.BigEndian.Uint32(data))
		data = data[4:]
		if n > len(data) {
			return nil, ErrTooSmall
		}

		c, err := ReadAndValidateChunk(data[:n])
		if err != nil {
			return nil, err
		}
		data = data[n:]

		it := c.Iterator(nil)
		for it.Next() != chunkenc.ValNone {
			t, v := it.At()
			if t != int64(len(path)) {
				return nil, fmt.Errorf("%w: got step %d, want %d", ErrOutOfOrder, t, len(path))
			}
			path = append(path, v)
		}
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate chunk: %w", err)
		}
	}
	return path, nil
}

// WrapChunk frames a chunk as encoding byte, chunk bytes and a CRC32-Castagnoli
// of both.
func WrapChunk(c chunkenc.Chunk) []byte {
	raw := c.Bytes()

	res := make([]byte, 1+len(raw)+4)
	res[0] = byte(c.Encoding())
	copy(res[1:], raw)

	checksum := crc32.Checksum(res[:1+len(raw)], castagnoli)
	binary.BigEndian.PutUint32(res[1+len(raw):], checksum)

	return res
}

// ReadAndValidateChunk verifies the checksum of a framed chunk and opens it.
func ReadAndValidateChunk(data []byte) (chunkenc.Chunk, error) {
	if len(data) < 5 {
		return nil, ErrTooSmall
	}

	payload := data[:len(data)-4]
	want := binary.BigEndian.Uint32(data[len(data)-4:])
	if got := crc32.Checksum(payload, castagnoli); got != want {
		return nil, ErrInvalidChecksum
	}

	encoding := chunkenc.Encoding(payload[0])
	if encoding != chunkenc.EncXOR {
		return nil, fmt.Errorf("unsupported encoding type: %d", encoding)
	}

	raw := make([]byte, len(payload)-1)
	copy(raw, payload[1:])
	return chunkenc.FromData(encoding, raw)
}
