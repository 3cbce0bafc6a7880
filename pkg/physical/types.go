package physical

import "fmt"

// ElementType identifies the shape of an element in the tree.
type ElementType byte

const (
	ElementTypeCollection ElementType = 1
	ElementTypeScalar     ElementType = 2
	ElementTypeVector     ElementType = 3
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeCollection:
		return "Collection"
	case ElementTypeScalar:
		return "Scalar"
	case ElementTypeVector:
		return "Vector"
	default:
		return fmt.Sprintf("ElementType(%d)", byte(t))
	}
}

// PhysicalType identifies the fixed encoding of scalar and vector values.
type PhysicalType byte

const (
	PhysicalTypeBoolean1         PhysicalType = 1
	PhysicalTypeBoolean2         PhysicalType = 2
	PhysicalTypeBoolean4         PhysicalType = 3
	PhysicalTypeChar1            PhysicalType = 10
	PhysicalTypeChar2            PhysicalType = 11
	PhysicalTypeInteger1         PhysicalType = 20
	PhysicalTypeInteger2         PhysicalType = 21
	PhysicalTypeInteger4         PhysicalType = 22
	PhysicalTypeUnsignedInteger1 PhysicalType = 30
	PhysicalTypeUnsignedInteger2 PhysicalType = 31
	PhysicalTypeUnsignedInteger4 PhysicalType = 32
	PhysicalTypeReal4            PhysicalType = 40
	PhysicalTypeReal8            PhysicalType = 41
	PhysicalTypeComplex8         PhysicalType = 42
	PhysicalTypeComplex16        PhysicalType = 43
	PhysicalTypeTimestamp        PhysicalType = 50
	PhysicalTypeGuid             PhysicalType = 60
)

var physicalTypeNames = map[PhysicalType]string{
	PhysicalTypeBoolean1:         "Boolean1",
	PhysicalTypeBoolean2:         "Boolean2",
	PhysicalTypeBoolean4:         "Boolean4",
	PhysicalTypeChar1:            "Char1",
	PhysicalTypeChar2:            "Char2",
	PhysicalTypeInteger1:         "Integer1",
	PhysicalTypeInteger2:         "Integer2",
	PhysicalTypeInteger4:         "Integer4",
	PhysicalTypeUnsignedInteger1: "UnsignedInteger1",
	PhysicalTypeUnsignedInteger2: "UnsignedInteger2",
	PhysicalTypeUnsignedInteger4: "UnsignedInteger4",
	PhysicalTypeReal4:            "Real4",
	PhysicalTypeReal8:            "Real8",
	PhysicalTypeComplex8:         "Complex8",
	PhysicalTypeComplex16:        "Complex16",
	PhysicalTypeTimestamp:        "Timestamp",
	PhysicalTypeGuid:             "Guid",
}

func (t PhysicalType) String() string {
	if name, ok := physicalTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PhysicalType(%d)", byte(t))
}

// Valid reports whether t is one of the defined physical types.
func (t PhysicalType) Valid() bool {
	_, ok := physicalTypeNames[t]
	return ok
}

// ByteSize returns the encoded size in bytes of a single value of type t,
// or 0 for an unknown type.
func (t PhysicalType) ByteSize() int {
	switch t {
	case PhysicalTypeBoolean1, PhysicalTypeChar1, PhysicalTypeInteger1, PhysicalTypeUnsignedInteger1:
		return 1
	case PhysicalTypeBoolean2, PhysicalTypeChar2, PhysicalTypeInteger2, PhysicalTypeUnsignedInteger2:
		return 2
	case PhysicalTypeBoolean4, PhysicalTypeInteger4, PhysicalTypeUnsignedInteger4, PhysicalTypeReal4:
		return 4
	case PhysicalTypeReal8, PhysicalTypeComplex8:
		return 8
	case PhysicalTypeTimestamp:
		return 12
	case PhysicalTypeComplex16, PhysicalTypeGuid:
		return 16
	default:
		return 0
	}
}

// IsNumeric reports whether values of t can be widened to float64.
func (t PhysicalType) IsNumeric() bool {
	switch t {
	case PhysicalTypeBoolean1, PhysicalTypeBoolean2, PhysicalTypeBoolean4,
		PhysicalTypeInteger1, PhysicalTypeInteger2, PhysicalTypeInteger4,
		PhysicalTypeUnsignedInteger1, PhysicalTypeUnsignedInteger2, PhysicalTypeUnsignedInteger4,
		PhysicalTypeReal4, PhysicalTypeReal8:
		return true
	default:
		return false
	}
}
