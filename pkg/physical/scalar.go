package physical

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ScalarElement holds a single typed value.
type ScalarElement struct {
	tag   uuid.UUID
	typ   PhysicalType
	value []byte
}

// NewScalarElement creates a scalar of the given type holding its zero value.
func NewScalarElement(tag uuid.UUID, typ PhysicalType) *ScalarElement {
	return &ScalarElement{tag: tag, typ: typ, value: make([]byte, typ.ByteSize())}
}

func (s *ScalarElement) Tag() uuid.UUID    { return s.tag }
func (s *ScalarElement) Type() ElementType { return ElementTypeScalar }

// PhysicalType returns the value encoding. It is zero for a scalar that has
// never been set.
func (s *ScalarElement) PhysicalType() PhysicalType { return s.typ }

// Get returns the value in its natural Go type, or nil for an unset scalar.
func (s *ScalarElement) Get() any {
	if len(s.value) == 0 || len(s.value) != s.typ.ByteSize() {
		return nil
	}
	return decodeValue(s.typ, s.value)
}

// Set stores v using the encoding of typ, changing the scalar's type.
func (s *ScalarElement) Set(typ PhysicalType, v any) error {
	buf := make([]byte, typ.ByteSize())
	if len(buf) == 0 {
		return fmt.Errorf("%w: unknown physical type %d", ErrTypeMismatch, typ)
	}
	if err := encodeValue(typ, buf, v); err != nil {
		return err
	}
	s.typ = typ
	s.value = buf
	return nil
}

func (s *ScalarElement) expect(typ PhysicalType) error {
	if s.typ != typ || len(s.value) != typ.ByteSize() {
		return fmt.Errorf("%w: scalar %s is %s, not %s", ErrTypeMismatch, s.tag, s.typ, typ)
	}
	return nil
}

// GetUInt4 returns an UnsignedInteger4 value.
func (s *ScalarElement) GetUInt4() (uint32, error) {
	if err := s.expect(PhysicalTypeUnsignedInteger4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s.value), nil
}

// SetUInt4 stores v as UnsignedInteger4.
func (s *ScalarElement) SetUInt4(v uint32) {
	s.typ = PhysicalTypeUnsignedInteger4
	s.value = make([]byte, 4)
	binary.LittleEndian.PutUint32(s.value, v)
}

// GetInt4 returns an Integer4 value.
func (s *ScalarElement) GetInt4() (int32, error) {
	if err := s.expect(PhysicalTypeInteger4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(s.value)), nil
}

// SetInt4 stores v as Integer4.
func (s *ScalarElement) SetInt4(v int32) {
	s.typ = PhysicalTypeInteger4
	s.value = make([]byte, 4)
	binary.LittleEndian.PutUint32(s.value, uint32(v))
}

// GetReal8 returns a Real8 value.
func (s *ScalarElement) GetReal8() (float64, error) {
	if err := s.expect(PhysicalTypeReal8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(s.value)), nil
}

// SetReal8 stores v as Real8.
func (s *ScalarElement) SetReal8(v float64) {
	s.typ = PhysicalTypeReal8
	s.value = make([]byte, 8)
	binary.LittleEndian.PutUint64(s.value, math.Float64bits(v))
}

// GetBool returns a boolean value of any boolean width.
func (s *ScalarElement) GetBool() (bool, error) {
	switch s.typ {
	case PhysicalTypeBoolean1, PhysicalTypeBoolean2, PhysicalTypeBoolean4:
		if len(s.value) == s.typ.ByteSize() {
			return decodeValue(s.typ, s.value).(bool), nil
		}
	}
	return false, fmt.Errorf("%w: scalar %s is %s, not boolean", ErrTypeMismatch, s.tag, s.typ)
}

// SetBool stores v as Boolean4.
func (s *ScalarElement) SetBool(v bool) {
	s.typ = PhysicalTypeBoolean4
	s.value = make([]byte, 4)
	binary.LittleEndian.PutUint32(s.value, uint32(boolByte(v)))
}

// GetGuid returns a Guid value.
func (s *ScalarElement) GetGuid() (uuid.UUID, error) {
	if err := s.expect(PhysicalTypeGuid); err != nil {
		return uuid.Nil, err
	}
	return getGUID(s.value), nil
}

// SetGuid stores v as Guid.
func (s *ScalarElement) SetGuid(v uuid.UUID) {
	s.typ = PhysicalTypeGuid
	s.value = make([]byte, GUIDSize)
	putGUID(s.value, v)
}

// GetTimestamp returns a Timestamp value.
func (s *ScalarElement) GetTimestamp() (time.Time, error) {
	if err := s.expect(PhysicalTypeTimestamp); err != nil {
		return time.Time{}, err
	}
	return getTimestamp(s.value), nil
}

// SetTimestamp stores v as Timestamp.
func (s *ScalarElement) SetTimestamp(v time.Time) {
	s.typ = PhysicalTypeTimestamp
	s.value = make([]byte, 12)
	putTimestamp(s.value, v)
}

// Uint64 widens any integer or boolean scalar to uint64. Negative signed
// values are rejected.
func (s *ScalarElement) Uint64() (uint64, error) {
	v := s.Get()
	switch x := v.(type) {
	case bool:
		return uint64(boolByte(x)), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case int8, int16, int32:
		f, _ := toFloat64(x)
		if f < 0 {
			return 0, fmt.Errorf("%w: scalar %s holds negative value %v", ErrTypeMismatch, s.tag, x)
		}
		return uint64(f), nil
	default:
		return 0, fmt.Errorf("%w: scalar %s is %s, not integral", ErrTypeMismatch, s.tag, s.typ)
	}
}

// Float64 widens any numeric scalar to float64.
func (s *ScalarElement) Float64() (float64, error) {
	if !s.typ.IsNumeric() {
		return 0, fmt.Errorf("%w: scalar %s is %s, not numeric", ErrTypeMismatch, s.tag, s.typ)
	}
	v := s.Get()
	if v == nil {
		return 0, fmt.Errorf("%w: scalar %s has no value", ErrTypeMismatch, s.tag)
	}
	return toFloat64(v)
}

// raw returns the encoded value bytes.
func (s *ScalarElement) raw() []byte { return s.value }
