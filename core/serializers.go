package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted record types. The record set is small
// and stable, so these are written by hand against the mus-go primitives
// instead of generated. Field order is part of the on-disk format; append
// new fields at the end.
var (
	IDMUS          = idMUS{}
	ChunkRecordMUS = chunkRecordMUS{}
	LedgerEntryMUS = ledgerEntryMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

type chunkRecordMUS struct{}

func (chunkRecordMUS) Marshal(v ChunkRecord, bs []byte) int {
	n := IDMUS.Marshal(v.Id, bs)
	n += marshalString(v.Source, bs[n:])
	n += varint.Int.Marshal(v.Page, bs[n:])
	n += varint.Int.Marshal(v.Seq, bs[n:])
	n += marshalString(v.Contents, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalMetadata(v.Metadata, bs[n:])
	return n
}

func (chunkRecordMUS) Unmarshal(bs []byte) (v ChunkRecord, n int, err error) {
	var m int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Source, m, err = unmarshalString(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Page, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Seq, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Contents, m, err = unmarshalString(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Vector, m, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.InsertedAt, m, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	v.Metadata, m, err = unmarshalMetadata(bs[n:])
	return v, n + m, err
}

func (chunkRecordMUS) Size(v ChunkRecord) int {
	return IDMUS.Size(v.Id) +
		sizeString(v.Source) +
		varint.Int.Size(v.Page) +
		varint.Int.Size(v.Seq) +
		sizeString(v.Contents) +
		sizeVector(v.Vector) +
		sizeTime(v.InsertedAt) +
		sizeMetadata(v.Metadata)
}

type ledgerEntryMUS struct{}

func (ledgerEntryMUS) Marshal(v LedgerEntry, bs []byte) int {
	n := marshalString(v.Source, bs)
	n += marshalString(v.Fingerprint, bs[n:])
	n += varint.Int.Marshal(v.Chunks, bs[n:])
	n += marshalTime(v.IngestedAt, bs[n:])
	return n
}

func (ledgerEntryMUS) Unmarshal(bs []byte) (v LedgerEntry, n int, err error) {
	var m int
	if v.Source, n, err = unmarshalString(bs); err != nil {
		return
	}
	if v.Fingerprint, m, err = unmarshalString(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	if v.Chunks, m, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + m, err
	}
	n += m
	v.IngestedAt, m, err = unmarshalTime(bs[n:])
	return v, n + m, err
}

func (ledgerEntryMUS) Size(v LedgerEntry) int {
	return sizeString(v.Source) +
		sizeString(v.Fingerprint) +
		varint.Int.Size(v.Chunks) +
		sizeTime(v.IngestedAt)
}

func marshalString(v string, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	return n + copy(bs[n:], v)
}

func unmarshalString(bs []byte) (string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return "", n, err
	}
	if length < 0 || n+length > len(bs) {
		return "", n, ErrTruncatedData
	}
	return string(bs[n : n+length]), n + length, nil
}

func sizeString(v string) int {
	return varint.Int.Size(len(v)) + len(v)
}

func marshalVector(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make([]float32, length)
	for i := range v {
		bits, m, err := varint.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		v[i] = math.Float32frombits(bits)
		n += m
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

// Timestamps are stored as Unix microseconds.
func marshalTime(v time.Time, bs []byte) int {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(v time.Time) int {
	return varint.Int64.Size(v.UnixMicro())
}

func marshalMetadata(v map[string]string, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for key, val := range v {
		n += marshalString(key, bs[n:])
		n += marshalString(val, bs[n:])
	}
	return n
}

func unmarshalMetadata(bs []byte) (map[string]string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make(map[string]string, length)
	for i := 0; i < length; i++ {
		key, m, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		val, m, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		v[key] = val
	}
	return v, n, nil
}

func sizeMetadata(v map[string]string) int {
	size := varint.Int.Size(len(v))
	for key, val := range v {
		size += sizeString(key) + sizeString(val)
	}
	return size
}
