package physical

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testTagA = uuid.MustParse("0fa118c3-cb4a-11d2-b30b-fe25cb9a1760")
	testTagB = uuid.MustParse("3d786f9e-f76e-11cf-9d89-0080c72e70a3")
	testTagC = uuid.MustParse("b48d858c-f5f5-11cf-9d89-0080c72e70a3")
)

func TestGUIDLayout(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	buf := make([]byte, GUIDSize)
	putGUID(buf, id)

	assert.Equal(t, []byte{
		0x33, 0x22, 0x11, 0x00,
		0x55, 0x44,
		0x77, 0x66,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}, buf)
	assert.Equal(t, id, getGUID(buf))
}

func TestTimestampEncoding(t *testing.T) {
	buf := make([]byte, 12)

	putTimestamp(buf, TimestampEpoch)
	assert.Equal(t, TimestampEpoch, getTimestamp(buf))

	ts := time.Date(2024, time.March, 5, 13, 45, 30, 250_000_000, time.UTC)
	putTimestamp(buf, ts)
	assert.True(t, ts.Equal(getTimestamp(buf)), "got %s", getTimestamp(buf))

	// Non-UTC input is normalized.
	loc := time.FixedZone("UTC+2", 2*60*60)
	putTimestamp(buf, ts.In(loc))
	assert.True(t, ts.Equal(getTimestamp(buf)))
}

func TestScalarTypedAccessors(t *testing.T) {
	s := NewScalarElement(testTagA, PhysicalTypeUnsignedInteger4)
	s.SetUInt4(42)
	v, err := s.GetUInt4()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	_, err = s.GetReal8()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	s.SetReal8(math.Pi)
	f, err := s.GetReal8()
	require.NoError(t, err)
	assert.Equal(t, math.Pi, f)

	s.SetBool(true)
	b, err := s.GetBool()
	require.NoError(t, err)
	assert.True(t, b)

	id := uuid.New()
	s.SetGuid(id)
	g, err := s.GetGuid()
	require.NoError(t, err)
	assert.Equal(t, id, g)

	s.SetInt4(-7)
	i, err := s.GetInt4()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)
	_, err = s.Uint64()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestScalarWidening(t *testing.T) {
	tests := []struct {
		name string
		typ  PhysicalType
		in   any
		want uint64
	}{
		{"uint1", PhysicalTypeUnsignedInteger1, 200, 200},
		{"uint2", PhysicalTypeUnsignedInteger2, 60000, 60000},
		{"uint4", PhysicalTypeUnsignedInteger4, 4_000_000_000, 4_000_000_000},
		{"int2", PhysicalTypeInteger2, 1234, 1234},
		{"bool1", PhysicalTypeBoolean1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScalarElement(testTagA, tt.typ)
			require.NoError(t, s.Set(tt.typ, tt.in))
			got, err := s.Uint64()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			f, err := s.Float64()
			require.NoError(t, err)
			assert.Equal(t, float64(tt.want), f)
		})
	}
}

func TestScalarSetRejectsWrongKind(t *testing.T) {
	s := NewScalarElement(testTagA, PhysicalTypeTimestamp)
	assert.ErrorIs(t, s.Set(PhysicalTypeTimestamp, 5), ErrTypeMismatch)
	assert.ErrorIs(t, s.Set(PhysicalTypeGuid, "not a guid"), ErrTypeMismatch)
	assert.ErrorIs(t, s.Set(PhysicalType(99), 1), ErrTypeMismatch)
}

func TestVectorAccessors(t *testing.T) {
	v := NewVectorElement(testTagA, PhysicalTypeInteger2, 3)
	require.NoError(t, v.Set(0, -1))
	require.NoError(t, v.Set(1, 2))
	require.NoError(t, v.Set(2, 300))

	values, err := v.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 2, 300}, values)

	_, err = v.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = v.GetUInt4(0)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	v.SetSize(4)
	assert.Equal(t, 4, v.Size())
	x, err := v.Get(2)
	require.NoError(t, err)
	assert.Equal(t, int16(300), x)
	x, err = v.Get(3)
	require.NoError(t, err)
	assert.Equal(t, int16(0), x)
}

func TestVectorStrings(t *testing.T) {
	v := NewVectorElement(testTagA, PhysicalTypeChar1, 0)
	v.SetString("Feeder 12")
	assert.Equal(t, 10, v.Size())
	s, err := v.GetString()
	require.NoError(t, err)
	assert.Equal(t, "Feeder 12", s)

	v.SetUnicodeString("Überspannung")
	assert.Equal(t, PhysicalTypeChar2, v.PhysicalType())
	s, err = v.GetString()
	require.NoError(t, err)
	assert.Equal(t, "Überspannung", s)

	n := NewVectorElement(testTagA, PhysicalTypeReal8, 1)
	_, err = n.GetString()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestCollectionLookup(t *testing.T) {
	c := NewCollectionElement(testTagC)
	first := NewScalarElement(testTagA, PhysicalTypeUnsignedInteger4)
	first.SetUInt4(1)
	second := NewScalarElement(testTagA, PhysicalTypeUnsignedInteger4)
	second.SetUInt4(2)
	c.AddElement(first)
	c.AddElement(second)
	c.AddElement(NewVectorElement(testTagB, PhysicalTypeReal8, 2))

	assert.Equal(t, 3, c.Len())
	assert.Same(t, first, c.GetScalarByTag(testTagA))
	assert.Len(t, c.GetElementsByTag(testTagA), 2)
	assert.Nil(t, c.GetVectorByTag(testTagA))
	assert.Nil(t, c.GetCollectionByTag(testTagB))

	sub := c.GetOrAddCollection(testTagC)
	assert.Same(t, sub, c.GetOrAddCollection(testTagC))
	assert.Equal(t, 4, c.Len())

	assert.True(t, c.RemoveElement(second))
	assert.False(t, c.RemoveElement(second))
	assert.Equal(t, 1, c.RemoveElementsByTag(testTagA))
	assert.Nil(t, c.GetScalarByTag(testTagA))
	assert.Equal(t, 2, c.Len())

	// GetOrAddScalar creates an untyped scalar.
	s := c.GetOrAddScalar(testTagA)
	assert.Nil(t, s.Get())
	assert.Equal(t, PhysicalType(0), s.PhysicalType())
}
