// Package codec serializes assembled datasets into the binary blob stored
// per (partition, extractors partition, category).
//
// Layout:
//
//	magic "CLDS" | version u8 | compression u8 | raw size u32 | stored size u32 | payload
//
// stored size 0 means the payload is not compressed.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ppiankov/commentlab/internal/model"
)

const (
	magic      = "CLDS"
	version    = 1
	headerSize = 14
)

// ErrCorrupt is returned for blobs that cannot be decoded.
var ErrCorrupt = errors.New("corrupt dataset blob")

// Encode serializes d and compresses the payload with c.
func Encode(d *model.Dataset, c Compression) ([]byte, error) {
	payload := encodePayload(d)
	compressed, err := compress(payload, c)
	if err != nil {
		return nil, fmt.Errorf("compress dataset %s: %w", d.Name, err)
	}

	body := payload
	stored := uint32(0)
	if compressed != nil {
		body = compressed
		stored = uint32(len(compressed))
	} else {
		c = CompressionNone
	}

	out := make([]byte, headerSize, headerSize+len(body))
	copy(out, magic)
	out[4] = version
	out[5] = byte(c)
	binary.LittleEndian.PutUint32(out[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[10:], stored)
	return append(out, body...), nil
}

// Decode parses a blob produced by Encode.
func Decode(blob []byte) (*model.Dataset, error) {
	if len(blob) < headerSize || string(blob[:4]) != magic {
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if blob[4] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, blob[4])
	}
	c := Compression(blob[5])
	size := binary.LittleEndian.Uint32(blob[6:])
	stored := binary.LittleEndian.Uint32(blob[10:])
	body := blob[headerSize:]

	payload := body
	if stored != 0 {
		if uint32(len(body)) < stored {
			return nil, fmt.Errorf("%w: truncated payload", ErrCorrupt)
		}
		var err error
		payload, err = decompress(body[:stored], c, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	} else if uint32(len(body)) < size {
		return nil, fmt.Errorf("%w: truncated payload", ErrCorrupt)
	} else {
		payload = body[:size]
	}
	return decodePayload(payload)
}

func encodePayload(d *model.Dataset) []byte {
	var buf []byte
	putString := func(s string) {
		buf = binary.AppendUvarint(buf, uint64(len(s)))
		buf = append(buf, s...)
	}

	putString(d.Name)
	putString(d.Category)
	putString(d.LabelAttribute)
	buf = binary.AppendVarint(buf, int64(d.Partition))
	buf = binary.AppendVarint(buf, int64(d.ExtractorsPartition))

	buf = binary.AppendUvarint(buf, uint64(len(d.Features)))
	for _, f := range d.Features {
		putString(f)
	}

	buf = binary.AppendUvarint(buf, uint64(len(d.Rows)))
	for _, r := range d.Rows {
		buf = binary.AppendVarint(buf, int64(r.SentenceID))
		buf = append(buf, byte(r.Label))
		buf = binary.AppendUvarint(buf, uint64(len(r.Index)))
		prev := 0
		for i, idx := range r.Index {
			buf = binary.AppendUvarint(buf, uint64(idx-prev))
			prev = idx
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(r.Value[i]))
		}
	}
	return buf
}

type reader struct {
	r   *bytes.Reader
	err error
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := binary.ReadUvarint(r.r)
	r.err = err
	return v
}

func (r *reader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, err := binary.ReadVarint(r.r)
	r.err = err
	return v
}

func (r *reader) byte() byte {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	r.err = err
	return b
}

func (r *reader) float() float64 {
	if r.err != nil {
		return 0
	}
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		r.err = err
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
}

func (r *reader) string() string {
	n := r.uvarint()
	if r.err != nil {
		return ""
	}
	if n > uint64(r.r.Len()) {
		r.err = errors.New("string length out of range")
		return ""
	}
	b := make([]byte, n)
	_, r.err = io.ReadFull(r.r, b)
	return string(b)
}

// count reads a length prefix and bounds it by the remaining input so a
// corrupt blob cannot trigger a huge allocation.
func (r *reader) count() int {
	n := r.uvarint()
	if r.err == nil && n > uint64(r.r.Len()) {
		r.err = errors.New("count out of range")
	}
	return int(n)
}

func decodePayload(payload []byte) (*model.Dataset, error) {
	r := &reader{r: bytes.NewReader(payload)}
	d := &model.Dataset{
		Name:           r.string(),
		Category:       r.string(),
		LabelAttribute: r.string(),
	}
	d.Partition = int(r.varint())
	d.ExtractorsPartition = int(r.varint())

	nf := r.count()
	if r.err == nil {
		d.Features = make([]string, nf)
		for i := range d.Features {
			d.Features[i] = r.string()
		}
	}

	nr := r.count()
	if r.err == nil {
		d.Rows = make([]model.Row, nr)
		for i := range d.Rows {
			row := &d.Rows[i]
			row.SentenceID = model.SentenceID(r.varint())
			row.Label = int(r.byte())
			nnz := r.count()
			if r.err != nil {
				break
			}
			row.Index = make([]int, nnz)
			row.Value = make([]float64, nnz)
			prev := 0
			for j := 0; j < nnz && r.err == nil; j++ {
				delta := r.uvarint()
				if delta >= uint64(nf) || (j > 0 && delta == 0) {
					return nil, fmt.Errorf("%w: row %d: feature index out of order or range", ErrCorrupt, i)
				}
				prev += int(delta)
				if prev >= nf {
					return nil, fmt.Errorf("%w: row %d: feature index %d >= %d features", ErrCorrupt, i, prev, nf)
				}
				row.Index[j] = prev
				row.Value[j] = r.float()
			}
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, r.err)
	}
	return d, nil
}
