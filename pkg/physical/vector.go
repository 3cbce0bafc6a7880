package physical

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
)

// VectorElement holds a fixed-type array of values.
type VectorElement struct {
	tag    uuid.UUID
	typ    PhysicalType
	size   int
	values []byte
}

// NewVectorElement creates a vector of size zero-valued entries.
func NewVectorElement(tag uuid.UUID, typ PhysicalType, size int) *VectorElement {
	return &VectorElement{tag: tag, typ: typ, size: size, values: make([]byte, size*typ.ByteSize())}
}

func (v *VectorElement) Tag() uuid.UUID    { return v.tag }
func (v *VectorElement) Type() ElementType { return ElementTypeVector }

// PhysicalType returns the encoding shared by every entry.
func (v *VectorElement) PhysicalType() PhysicalType { return v.typ }

// Size returns the number of entries.
func (v *VectorElement) Size() int { return v.size }

// SetPhysicalType changes the entry encoding. Existing entries are discarded
// when the width changes.
func (v *VectorElement) SetPhysicalType(typ PhysicalType) {
	if typ == v.typ {
		return
	}
	v.typ = typ
	v.values = make([]byte, v.size*typ.ByteSize())
}

// SetSize resizes the vector, keeping existing entries and zero-filling new ones.
func (v *VectorElement) SetSize(n int) {
	width := v.typ.ByteSize()
	buf := make([]byte, n*width)
	copy(buf, v.values)
	v.values = buf
	v.size = n
}

func (v *VectorElement) slot(i int) ([]byte, error) {
	if i < 0 || i >= v.size {
		return nil, fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, i, v.size)
	}
	width := v.typ.ByteSize()
	if width == 0 {
		return nil, fmt.Errorf("%w: vector %s has no physical type", ErrTypeMismatch, v.tag)
	}
	return v.values[i*width : (i+1)*width], nil
}

// Get returns entry i in its natural Go type.
func (v *VectorElement) Get(i int) (any, error) {
	b, err := v.slot(i)
	if err != nil {
		return nil, err
	}
	return decodeValue(v.typ, b), nil
}

// Set stores x at entry i, converting numerics to the vector's width.
func (v *VectorElement) Set(i int, x any) error {
	b, err := v.slot(i)
	if err != nil {
		return err
	}
	return encodeValue(v.typ, b, x)
}

// Float64 widens entry i to float64.
func (v *VectorElement) Float64(i int) (float64, error) {
	if !v.typ.IsNumeric() {
		return 0, fmt.Errorf("%w: vector %s is %s, not numeric", ErrTypeMismatch, v.tag, v.typ)
	}
	x, err := v.Get(i)
	if err != nil {
		return 0, err
	}
	return toFloat64(x)
}

// Float64s widens every entry to float64.
func (v *VectorElement) Float64s() ([]float64, error) {
	out := make([]float64, v.size)
	for i := range out {
		f, err := v.Float64(i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// SetReal8s replaces the contents with xs encoded as Real8.
func (v *VectorElement) SetReal8s(xs []float64) {
	v.typ = PhysicalTypeReal8
	v.size = len(xs)
	v.values = make([]byte, 8*len(xs))
	for i, x := range xs {
		_ = encodeValue(PhysicalTypeReal8, v.values[i*8:(i+1)*8], x)
	}
}

// SetUInt4s replaces the contents with xs encoded as UnsignedInteger4.
func (v *VectorElement) SetUInt4s(xs []uint32) {
	v.typ = PhysicalTypeUnsignedInteger4
	v.size = len(xs)
	v.values = make([]byte, 4*len(xs))
	for i, x := range xs {
		binary.LittleEndian.PutUint32(v.values[i*4:], x)
	}
}

// GetUInt4 returns entry i of an UnsignedInteger4 vector.
func (v *VectorElement) GetUInt4(i int) (uint32, error) {
	if v.typ != PhysicalTypeUnsignedInteger4 {
		return 0, fmt.Errorf("%w: vector %s is %s, not %s", ErrTypeMismatch, v.tag, v.typ, PhysicalTypeUnsignedInteger4)
	}
	b, err := v.slot(i)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// GetTimestamp returns entry i of a Timestamp vector.
func (v *VectorElement) GetTimestamp(i int) (time.Time, error) {
	if v.typ != PhysicalTypeTimestamp {
		return time.Time{}, fmt.Errorf("%w: vector %s is %s, not %s", ErrTypeMismatch, v.tag, v.typ, PhysicalTypeTimestamp)
	}
	b, err := v.slot(i)
	if err != nil {
		return time.Time{}, err
	}
	return getTimestamp(b), nil
}

// GetString decodes a Char1 or Char2 vector up to the first NUL.
func (v *VectorElement) GetString() (string, error) {
	switch v.typ {
	case PhysicalTypeChar1:
		b := v.values
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
		return string(b), nil
	case PhysicalTypeChar2:
		units := make([]uint16, 0, v.size)
		for i := 0; i < v.size; i++ {
			u := binary.LittleEndian.Uint16(v.values[i*2:])
			if u == 0 {
				break
			}
			units = append(units, u)
		}
		return string(utf16.Decode(units)), nil
	default:
		return "", fmt.Errorf("%w: vector %s is %s, not a character array", ErrTypeMismatch, v.tag, v.typ)
	}
}

// SetString stores s as a NUL-terminated Char1 array.
func (v *VectorElement) SetString(s string) {
	v.typ = PhysicalTypeChar1
	v.size = len(s) + 1
	v.values = make([]byte, v.size)
	copy(v.values, s)
}

// SetUnicodeString stores s as a NUL-terminated Char2 (UTF-16LE) array.
func (v *VectorElement) SetUnicodeString(s string) {
	units := utf16.Encode([]rune(s))
	v.typ = PhysicalTypeChar2
	v.size = len(units) + 1
	v.values = make([]byte, v.size*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(v.values[i*2:], u)
	}
}

// raw returns the encoded entries.
func (v *VectorElement) raw() []byte { return v.values }
