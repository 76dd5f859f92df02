// internal/format/codec.go
package format

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding/unicode"
)

// TrailerLength is the number of digest characters stored after the records
const TrailerLength = 32

// Value is one decoded field. Fixed fields use Int, text fields use Text
// (raw UTF-16LE bytes as captured from the file).
type Value struct {
	Int  uint64
	Text []byte
}

// Record is one decoded instance, co-indexed with Spec.Fields
type Record []Value

// ID returns the record's numeric key
func (r Record) ID(spec *Spec) uint64 {
	return r[spec.IDIndex].Int
}

// Translations resolves a record id to its translated strings, one per text
// field in declared order
type Translations interface {
	Lookup(id uint64) ([]string, bool)
}

// Decode reads the record count and every record described by spec.
// Bytes after the last record (usually the previous trailer) are ignored.
func Decode(data []byte, spec *Spec) ([]Record, error) {
	return decode(context.Background(), bytes.NewReader(data), spec)
}

func decode(ctx context.Context, r *bytes.Reader, spec *Spec) ([]Record, error) {
	count, err := readUint(r, spec.CountWidth)
	if err != nil {
		return nil, fmt.Errorf("read record count: %w", err)
	}

	// Every record takes at least one byte per field; don't trust count for capacity
	capHint := count
	if limit := uint64(r.Len()); capHint > limit {
		capHint = limit
	}
	records := make([]Record, 0, capHint)

	for i := uint64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := make(Record, len(spec.Fields))
		for j, f := range spec.Fields {
			switch f.Kind {
			case KindFixed:
				v, err := readUint(r, f.Width)
				if err != nil {
					return nil, fmt.Errorf("record %d field %d: %w", i, j, err)
				}
				rec[j].Int = v

			case KindText:
				length, err := readUint(r, f.Width)
				if err != nil {
					return nil, fmt.Errorf("record %d field %d length: %w", i, j, err)
				}
				if length > uint64(r.Len())/2 {
					return nil, fmt.Errorf("record %d field %d: %w: %d code units, %d bytes left",
						i, j, ErrTruncatedRecord, length, r.Len())
				}
				text := make([]byte, length*2)
				if _, err := io.ReadFull(r, text); err != nil {
					return nil, fmt.Errorf("record %d field %d text: %w", i, j, ErrTruncatedRecord)
				}
				rec[j].Text = text
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// Encoder writes records and accumulates the integrity checksum
type Encoder struct {
	w    io.Writer
	spec *Spec
	sum  uint64
}

// NewEncoder creates an encoder writing records laid out by spec to w
func NewEncoder(w io.Writer, spec *Spec) *Encoder {
	return &Encoder{w: w, spec: spec}
}

// Sum returns the checksum accumulated so far
func (e *Encoder) Sum() uint64 {
	return e.sum
}

// WriteCount writes the record count. The count is not part of the checksum.
func (e *Encoder) WriteCount(n uint64) error {
	if err := writeUint(e.w, e.spec.CountWidth, n); err != nil {
		return fmt.Errorf("write record count: %w", err)
	}
	return nil
}

// WriteRecord writes one record, substituting text fields from table when the
// record id has an entry. Translated strings are consumed in order; text fields
// beyond the entry's arity keep their original bytes.
func (e *Encoder) WriteRecord(rec Record, table Translations) error {
	var translated []string
	if table != nil {
		translated, _ = table.Lookup(rec.ID(e.spec))
	}
	cursor := 0

	for j, f := range e.spec.Fields {
		var value uint64

		switch f.Kind {
		case KindFixed:
			value = rec[j].Int
			if err := writeUint(e.w, f.Width, value); err != nil {
				return fmt.Errorf("field %d: %w", j, err)
			}

		case KindText:
			text := rec[j].Text
			if cursor < len(translated) {
				encoded, err := encodeText(translated[cursor])
				if err != nil {
					return fmt.Errorf("field %d: encode translation: %w", j, err)
				}
				text = encoded
				cursor++
			}

			value = uint64(len(text) / 2)
			if err := writeUint(e.w, f.Width, value); err != nil {
				return fmt.Errorf("field %d length: %w", j, err)
			}
			if _, err := e.w.Write(text); err != nil {
				return fmt.Errorf("field %d text: %w", j, err)
			}
			for _, b := range text {
				e.sum += uint64(b)
			}
		}

		e.sum += value
	}

	return nil
}

// WriteTrailer writes the trailer length followed by the digest of the checksum
func (e *Encoder) WriteTrailer() error {
	if _, err := e.w.Write(Trailer(e.sum)); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

// Encode writes the count, every record (with substitution) and the trailer
func Encode(spec *Spec, records []Record, table Translations) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(context.Background(), &buf, spec, records, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(ctx context.Context, w io.Writer, spec *Spec, records []Record, table Translations) error {
	enc := NewEncoder(w, spec)
	if err := enc.WriteCount(uint64(len(records))); err != nil {
		return err
	}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.WriteRecord(rec, table); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return enc.WriteTrailer()
}

// Patch decodes data, substitutes translations and re-encodes it with a fresh
// trailer. Cancellation is checked before each record.
func Patch(ctx context.Context, data []byte, spec *Spec, table Translations) ([]byte, error) {
	records, err := decode(ctx, bytes.NewReader(data), spec)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	if err := encode(ctx, &buf, spec, records, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Trailer returns the trailer for a checksum: a uint16 length (32) followed by
// the lowercase hex MD5 of the decimal checksum, one ASCII byte per hex digit.
func Trailer(sum uint64) []byte {
	digest := md5.Sum([]byte(strconv.FormatUint(sum, 10)))

	out := make([]byte, 2, 2+TrailerLength)
	binary.LittleEndian.PutUint16(out, TrailerLength)
	return append(out, hex.EncodeToString(digest[:])...)
}

func encodeText(s string) ([]byte, error) {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
}

func readUint(r io.Reader, width int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:width]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrTruncatedRecord
		}
		return 0, err
	}

	switch width {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf[:4])), nil
	default:
		return binary.LittleEndian.Uint64(buf[:8]), nil
	}
}

func writeUint(w io.Writer, width int, v uint64) error {
	var buf [8]byte

	switch width {
	case 1:
		if v > 0xFF {
			return fmt.Errorf("%w: %d in 1 byte", ErrValueOverflow, v)
		}
		buf[0] = byte(v)
	case 2:
		if v > 0xFFFF {
			return fmt.Errorf("%w: %d in 2 bytes", ErrValueOverflow, v)
		}
		binary.LittleEndian.PutUint16(buf[:2], uint16(v))
	case 4:
		if v > 0xFFFFFFFF {
			return fmt.Errorf("%w: %d in 4 bytes", ErrValueOverflow, v)
		}
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf[:8], v)
	}

	_, err := w.Write(buf[:width])
	return err
}
