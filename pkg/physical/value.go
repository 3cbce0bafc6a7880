package physical

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// decodeValue converts a single encoded value of type typ into its Go form.
// len(b) must equal typ.ByteSize().
func decodeValue(typ PhysicalType, b []byte) any {
	switch typ {
	case PhysicalTypeBoolean1:
		return b[0] != 0
	case PhysicalTypeBoolean2:
		return binary.LittleEndian.Uint16(b) != 0
	case PhysicalTypeBoolean4:
		return binary.LittleEndian.Uint32(b) != 0
	case PhysicalTypeChar1:
		return b[0]
	case PhysicalTypeChar2:
		return binary.LittleEndian.Uint16(b)
	case PhysicalTypeInteger1:
		return int8(b[0])
	case PhysicalTypeInteger2:
		return int16(binary.LittleEndian.Uint16(b))
	case PhysicalTypeInteger4:
		return int32(binary.LittleEndian.Uint32(b))
	case PhysicalTypeUnsignedInteger1:
		return b[0]
	case PhysicalTypeUnsignedInteger2:
		return binary.LittleEndian.Uint16(b)
	case PhysicalTypeUnsignedInteger4:
		return binary.LittleEndian.Uint32(b)
	case PhysicalTypeReal4:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case PhysicalTypeReal8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case PhysicalTypeComplex8:
		re := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
		return complex(re, im)
	case PhysicalTypeComplex16:
		re := math.Float64frombits(binary.LittleEndian.Uint64(b[0:8]))
		im := math.Float64frombits(binary.LittleEndian.Uint64(b[8:16]))
		return complex(re, im)
	case PhysicalTypeTimestamp:
		return getTimestamp(b)
	case PhysicalTypeGuid:
		return getGUID(b)
	default:
		return nil
	}
}

// encodeValue writes v into dst using the encoding of typ. Numeric values are
// converted to the target width; other types must match exactly.
func encodeValue(typ PhysicalType, dst []byte, v any) error {
	switch typ {
	case PhysicalTypeTimestamp:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("%w: %s requires time.Time, got %T", ErrTypeMismatch, typ, v)
		}
		putTimestamp(dst, t)
		return nil
	case PhysicalTypeGuid:
		id, ok := v.(uuid.UUID)
		if !ok {
			return fmt.Errorf("%w: %s requires uuid.UUID, got %T", ErrTypeMismatch, typ, v)
		}
		putGUID(dst, id)
		return nil
	case PhysicalTypeComplex8, PhysicalTypeComplex16:
		var c complex128
		switch x := v.(type) {
		case complex64:
			c = complex128(x)
		case complex128:
			c = x
		default:
			return fmt.Errorf("%w: %s requires a complex value, got %T", ErrTypeMismatch, typ, v)
		}
		if typ == PhysicalTypeComplex8 {
			binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(float32(real(c))))
			binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(float32(imag(c))))
		} else {
			binary.LittleEndian.PutUint64(dst[0:8], math.Float64bits(real(c)))
			binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(imag(c)))
		}
		return nil
	}

	f, err := toFloat64(v)
	if err != nil {
		return err
	}

	switch typ {
	case PhysicalTypeBoolean1:
		dst[0] = boolByte(f != 0)
	case PhysicalTypeBoolean2:
		binary.LittleEndian.PutUint16(dst, uint16(boolByte(f != 0)))
	case PhysicalTypeBoolean4:
		binary.LittleEndian.PutUint32(dst, uint32(boolByte(f != 0)))
	case PhysicalTypeChar1, PhysicalTypeUnsignedInteger1:
		dst[0] = uint8(f)
	case PhysicalTypeInteger1:
		dst[0] = byte(int8(f))
	case PhysicalTypeChar2, PhysicalTypeUnsignedInteger2:
		binary.LittleEndian.PutUint16(dst, uint16(f))
	case PhysicalTypeInteger2:
		binary.LittleEndian.PutUint16(dst, uint16(int16(f)))
	case PhysicalTypeInteger4:
		binary.LittleEndian.PutUint32(dst, uint32(int32(f)))
	case PhysicalTypeUnsignedInteger4:
		binary.LittleEndian.PutUint32(dst, uint32(f))
	case PhysicalTypeReal4:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(f)))
	case PhysicalTypeReal8:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(f))
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrTypeMismatch, typ)
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// toFloat64 widens any Go numeric or boolean value to float64.
func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("%w: %T is not numeric", ErrTypeMismatch, v)
	}
}
