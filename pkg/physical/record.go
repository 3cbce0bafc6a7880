package physical

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Record header layout constants.
const (
	// HeaderSize is the encoded size of a record header:
	// Signature(16) + TypeTag(16) + HeaderSize(4) + BodySize(4) +
	// NextRecordPosition(4) + Checksum(4) + Reserved(16).
	HeaderSize = 64

	// MaxBodySize bounds a single record body to keep a corrupt size field
	// from triggering a huge allocation.
	MaxBodySize = 512 * 1024 * 1024
)

// Record signature and record type tags.
var (
	RecordSignature = uuid.MustParse("4a111440-e49f-11cf-9900-505144494600")

	ContainerRecordTag       = uuid.MustParse("89738606-f1c3-11cf-9d89-0080c72e70a3")
	DataSourceRecordTag      = uuid.MustParse("89738619-f1c3-11cf-9d89-0080c72e70a3")
	MonitorSettingsRecordTag = uuid.MustParse("b48d858c-f5f5-11cf-9d89-0080c72e70a3")
	ObservationRecordTag     = uuid.MustParse("8973861a-f1c3-11cf-9d89-0080c72e70a3")
	BlankRecordTag           = uuid.MustParse("89738618-f1c3-11cf-9d89-0080c72e70a3")
)

// RecordType is the closed set of record kinds the logical layer knows.
// Anything else decodes as RecordTypeUnknown and is skipped by readers.
type RecordType int

const (
	RecordTypeUnknown RecordType = iota
	RecordTypeContainer
	RecordTypeDataSource
	RecordTypeMonitorSettings
	RecordTypeObservation
	RecordTypeBlank
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeContainer:
		return "Container"
	case RecordTypeDataSource:
		return "DataSource"
	case RecordTypeMonitorSettings:
		return "MonitorSettings"
	case RecordTypeObservation:
		return "Observation"
	case RecordTypeBlank:
		return "Blank"
	default:
		return "Unknown"
	}
}

// Tag returns the record type tag for t, or uuid.Nil for RecordTypeUnknown.
func (t RecordType) Tag() uuid.UUID {
	switch t {
	case RecordTypeContainer:
		return ContainerRecordTag
	case RecordTypeDataSource:
		return DataSourceRecordTag
	case RecordTypeMonitorSettings:
		return MonitorSettingsRecordTag
	case RecordTypeObservation:
		return ObservationRecordTag
	case RecordTypeBlank:
		return BlankRecordTag
	default:
		return uuid.Nil
	}
}

// RecordTypeOf maps a record type tag to its RecordType.
func RecordTypeOf(tag uuid.UUID) RecordType {
	switch tag {
	case ContainerRecordTag:
		return RecordTypeContainer
	case DataSourceRecordTag:
		return RecordTypeDataSource
	case MonitorSettingsRecordTag:
		return RecordTypeMonitorSettings
	case ObservationRecordTag:
		return RecordTypeObservation
	case BlankRecordTag:
		return RecordTypeBlank
	default:
		return RecordTypeUnknown
	}
}

// RecordHeader declares a record's kind and locates its body.
type RecordHeader struct {
	Signature          uuid.UUID
	TypeTag            uuid.UUID
	HeaderSize         int32
	BodySize           int32
	NextRecordPosition int32
	Checksum           uint32
}

// RecordType derives the record kind from the type tag.
func (h *RecordHeader) RecordType() RecordType {
	return RecordTypeOf(h.TypeTag)
}

func (h *RecordHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	putGUID(buf[0:16], h.Signature)
	putGUID(buf[16:32], h.TypeTag)
	binary.LittleEndian.PutUint32(buf[32:36], uint32(h.HeaderSize))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(h.BodySize))
	binary.LittleEndian.PutUint32(buf[40:44], uint32(h.NextRecordPosition))
	binary.LittleEndian.PutUint32(buf[44:48], h.Checksum)
	return buf
}

func decodeHeader(b []byte) (*RecordHeader, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("invalid record header length: %d", len(b))
	}
	h := &RecordHeader{
		Signature:          getGUID(b[0:16]),
		TypeTag:            getGUID(b[16:32]),
		HeaderSize:         int32(binary.LittleEndian.Uint32(b[32:36])),
		BodySize:           int32(binary.LittleEndian.Uint32(b[36:40])),
		NextRecordPosition: int32(binary.LittleEndian.Uint32(b[40:44])),
		Checksum:           binary.LittleEndian.Uint32(b[44:48]),
	}
	if h.Signature != RecordSignature {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, h.Signature)
	}
	if h.HeaderSize < HeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrCorruptBody, h.HeaderSize)
	}
	if h.BodySize < 0 || h.BodySize > MaxBodySize {
		return nil, fmt.Errorf("%w: body size %d", ErrBodyTooLarge, h.BodySize)
	}
	return h, nil
}

// RecordBody holds the root collection of a record.
type RecordBody struct {
	Collection *CollectionElement
}

// Record is one top-level physical unit.
type Record struct {
	Header *RecordHeader
	Body   *RecordBody
}

// NewRecord creates an empty record of type t whose root collection is tagged
// with the record type tag.
func NewRecord(t RecordType) *Record {
	tag := t.Tag()
	return &Record{
		Header: &RecordHeader{
			Signature:  RecordSignature,
			TypeTag:    tag,
			HeaderSize: HeaderSize,
		},
		Body: &RecordBody{Collection: NewCollectionElement(tag)},
	}
}

// Type returns the record kind declared by the header.
func (r *Record) Type() RecordType {
	if r == nil || r.Header == nil {
		return RecordTypeUnknown
	}
	return r.Header.RecordType()
}
