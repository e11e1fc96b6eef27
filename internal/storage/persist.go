package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
)

// Index file layout, little-endian throughout:
//
//	magic "RVI1" | dim uint32 | count uint32 | count*dim float32 | crc32 uint32
//
// The checksum covers everything before it, so a truncated or garbled file
// is detected on load instead of silently restoring bad vectors.
var indexMagic = [4]byte{'R', 'V', 'I', '1'}

// saveIndex writes the index to path atomically (temp file + rename).
func saveIndex(ix *FlatIndex, path string) error {
	var buf bytes.Buffer
	buf.Write(indexMagic[:])

	if err := binary.Write(&buf, binary.LittleEndian, uint32(ix.dim)); err != nil {
		return fmt.Errorf("encode index header: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(ix.vectors))); err != nil {
		return fmt.Errorf("encode index header: %w", err)
	}

	vec := make([]byte, 4)
	for _, v := range ix.vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(vec, math.Float32bits(x))
			buf.Write(vec)
		}
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	if err := binary.Write(&buf, binary.LittleEndian, sum); err != nil {
		return fmt.Errorf("encode index checksum: %w", err)
	}

	return writeFileAtomic(path, buf.Bytes())
}

// loadIndex reads an index written by saveIndex. A missing file maps to
// ErrIndexNotFound; any malformed content maps to ErrIndexCorrupt.
func loadIndex(path string) (*FlatIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	// magic + dim + count + checksum is the minimum valid file.
	if len(data) < 16 {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrIndexCorrupt, len(data))
	}
	if !bytes.Equal(data[:4], indexMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrIndexCorrupt)
	}

	body, footer := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(footer) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrIndexCorrupt)
	}

	dim := int(binary.LittleEndian.Uint32(body[4:8]))
	count := int(binary.LittleEndian.Uint32(body[8:12]))
	payload := body[12:]
	if len(payload) != count*dim*4 {
		return nil, fmt.Errorf("%w: payload is %d bytes, expected %d",
			ErrIndexCorrupt, len(payload), count*dim*4)
	}

	vectors := make([][]float32, count)
	for i := 0; i < count; i++ {
		v := make([]float32, dim)
		for j := 0; j < dim; j++ {
			bits := binary.LittleEndian.Uint32(payload[(i*dim+j)*4:])
			v[j] = math.Float32frombits(bits)
		}
		vectors[i] = v
	}

	ix := NewFlatIndex()
	if count > 0 {
		ix.dim = dim
		ix.vectors = vectors
	}
	return ix, nil
}

// saveMetadata writes the metadata records as a JSON array, atomically.
func saveMetadata(records []ChunkMetadata, path string) error {
	if records == nil {
		records = []ChunkMetadata{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return writeFileAtomic(path, data)
}

// loadMetadata reads metadata written by saveMetadata, with the same
// missing/corrupt distinction as loadIndex.
func loadMetadata(path string) ([]ChunkMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	var records []ChunkMetadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	return records, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
