package index

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serialized index layout: 4-byte magic, uint16 version, then the matrix
// (int32 rows, int32 dim, little-endian float32 values row by row).
var blobMagic = [4]byte{'P', 'L', 'F', 'I'}

const blobVersion uint16 = 1

// Encode serializes the index.
func (f *Flat) Encode(w io.Writer) error {
	if _, err := w.Write(blobMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, blobVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := EncodeMatrix(w, f.vectors); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}
	return nil
}

// Decode deserializes an index previously written by Encode. size is the
// total serialized length in bytes; headers claiming more data than that are
// rejected before anything is allocated.
func Decode(r io.Reader, size int64) (*Flat, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != blobMagic {
		return nil, fmt.Errorf("bad index magic %q", magic[:])
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != blobVersion {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}

	matrix, err := DecodeMatrix(r, size-int64(len(blobMagic))-2)
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	return Build(matrix)
}

// EncodeMatrix writes a dense float32 matrix in little-endian form.
func EncodeMatrix(w io.Writer, matrix [][]float32) error {
	rows := int32(len(matrix))
	var dim int32
	if rows > 0 {
		dim = int32(len(matrix[0]))
	}

	if err := binary.Write(w, binary.LittleEndian, rows); err != nil {
		return fmt.Errorf("write row count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, dim); err != nil {
		return fmt.Errorf("write dim: %w", err)
	}
	for i, row := range matrix {
		if int32(len(row)) != dim {
			return fmt.Errorf("%w: row %d has dim %d, want %d", ErrDimMismatch, i, len(row), dim)
		}
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

// DecodeMatrix reads a matrix written by EncodeMatrix. remaining is the number
// of input bytes left including the 8-byte header. The header is only trusted
// when rows*dim values actually fit in what remains; a corrupt or hostile
// header must fail cleanly instead of attempting a giant allocation.
func DecodeMatrix(r io.Reader, remaining int64) ([][]float32, error) {
	var rows, dim int32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, fmt.Errorf("read row count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dim: %w", err)
	}
	if rows < 0 || dim < 0 {
		return nil, fmt.Errorf("invalid matrix header: rows=%d dim=%d", rows, dim)
	}
	if need := int64(rows) * int64(dim) * 4; need > remaining-8 {
		return nil, fmt.Errorf("matrix header claims %d bytes but only %d remain", need, remaining-8)
	}

	matrix := make([][]float32, rows)
	for i := range matrix {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		matrix[i] = row
	}
	return matrix, nil
}
