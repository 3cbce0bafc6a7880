package logical

import (
	"fmt"
	"math"
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// Typed field access on a collection. Getters return a *MissingTagError when
// the element is absent; the ...Or variants fall back to a default instead.

func scalarField(c *physical.CollectionElement, tag uuid.UUID) (*physical.ScalarElement, error) {
	s := c.GetScalarByTag(tag)
	if s == nil || s.Get() == nil {
		return nil, missingTag(tag)
	}
	return s, nil
}

func vectorField(c *physical.CollectionElement, tag uuid.UUID) (*physical.VectorElement, error) {
	v := c.GetVectorByTag(tag)
	if v == nil {
		return nil, missingTag(tag)
	}
	return v, nil
}

func collectionField(c *physical.CollectionElement, tag uuid.UUID) (*physical.CollectionElement, error) {
	col := c.GetCollectionByTag(tag)
	if col == nil {
		return nil, missingTag(tag)
	}
	return col, nil
}

func hasTag(c *physical.CollectionElement, tag uuid.UUID) bool {
	return len(c.GetElementsByTag(tag)) > 0
}

func fieldError(tag uuid.UUID, err error) error {
	return fmt.Errorf("%s: %w", TagName(tag), err)
}

func getUint(c *physical.CollectionElement, tag uuid.UUID) (uint32, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return 0, err
	}
	v, err := s.Uint64()
	if err != nil {
		return 0, fieldError(tag, err)
	}
	if v > math.MaxUint32 {
		return 0, fieldError(tag, fmt.Errorf("%w: value %d overflows uint32", physical.ErrTypeMismatch, v))
	}
	return uint32(v), nil
}

func getUintOr(c *physical.CollectionElement, tag uuid.UUID, def uint32) (uint32, error) {
	if c.GetScalarByTag(tag) == nil {
		return def, nil
	}
	return getUint(c, tag)
}

func setUint(c *physical.CollectionElement, tag uuid.UUID, v uint32) {
	c.GetOrAddScalar(tag).SetUInt4(v)
}

func getInt(c *physical.CollectionElement, tag uuid.UUID) (int32, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return 0, err
	}
	f, err := s.Float64()
	if err != nil {
		return 0, fieldError(tag, err)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fieldError(tag, fmt.Errorf("%w: value %v is not an int32", physical.ErrTypeMismatch, f))
	}
	return int32(f), nil
}

func getFloat(c *physical.CollectionElement, tag uuid.UUID) (float64, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return 0, err
	}
	f, err := s.Float64()
	if err != nil {
		return 0, fieldError(tag, err)
	}
	return f, nil
}

func getFloatOr(c *physical.CollectionElement, tag uuid.UUID, def float64) (float64, error) {
	if c.GetScalarByTag(tag) == nil {
		return def, nil
	}
	return getFloat(c, tag)
}

func setFloat(c *physical.CollectionElement, tag uuid.UUID, v float64) {
	c.GetOrAddScalar(tag).SetReal8(v)
}

func getBool(c *physical.CollectionElement, tag uuid.UUID) (bool, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return false, err
	}
	b, err := s.GetBool()
	if err != nil {
		// Some producers write flags as plain integers.
		if n, uerr := s.Uint64(); uerr == nil {
			return n != 0, nil
		}
		return false, fieldError(tag, err)
	}
	return b, nil
}

func setBool(c *physical.CollectionElement, tag uuid.UUID, v bool) {
	c.GetOrAddScalar(tag).SetBool(v)
}

func getGuid(c *physical.CollectionElement, tag uuid.UUID) (uuid.UUID, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := s.GetGuid()
	if err != nil {
		return uuid.Nil, fieldError(tag, err)
	}
	return id, nil
}

func setGuid(c *physical.CollectionElement, tag uuid.UUID, v uuid.UUID) {
	c.GetOrAddScalar(tag).SetGuid(v)
}

func getTime(c *physical.CollectionElement, tag uuid.UUID) (time.Time, error) {
	s, err := scalarField(c, tag)
	if err != nil {
		return time.Time{}, err
	}
	t, err := s.GetTimestamp()
	if err != nil {
		return time.Time{}, fieldError(tag, err)
	}
	return t, nil
}

func setTime(c *physical.CollectionElement, tag uuid.UUID, v time.Time) {
	c.GetOrAddScalar(tag).SetTimestamp(v)
}

func getString(c *physical.CollectionElement, tag uuid.UUID) (string, error) {
	v, err := vectorField(c, tag)
	if err != nil {
		return "", err
	}
	s, err := v.GetString()
	if err != nil {
		return "", fieldError(tag, err)
	}
	return s, nil
}

// getStringOr returns "" for an absent optional text field.
func getStringOr(c *physical.CollectionElement, tag uuid.UUID) (string, error) {
	if c.GetVectorByTag(tag) == nil {
		return "", nil
	}
	return getString(c, tag)
}

func setString(c *physical.CollectionElement, tag uuid.UUID, v string) {
	c.GetOrAddVector(tag).SetString(v)
}

func setUnicodeString(c *physical.CollectionElement, tag uuid.UUID, v string) {
	c.GetOrAddVector(tag).SetUnicodeString(v)
}

// collections returns the child collections of the list at listTag that carry itemTag.
func collections(c *physical.CollectionElement, listTag, itemTag uuid.UUID) []*physical.CollectionElement {
	list := c.GetCollectionByTag(listTag)
	if list == nil {
		return nil
	}
	var out []*physical.CollectionElement
	for _, e := range list.GetElementsByTag(itemTag) {
		if col, ok := e.(*physical.CollectionElement); ok {
			out = append(out, col)
		}
	}
	return out
}

// appendCollection adds a new item collection under the list at listTag,
// creating the list when absent.
func appendCollection(c *physical.CollectionElement, listTag, itemTag uuid.UUID) *physical.CollectionElement {
	item := physical.NewCollectionElement(itemTag)
	c.GetOrAddCollection(listTag).AddElement(item)
	return item
}

func removeCollection(c *physical.CollectionElement, listTag uuid.UUID, item *physical.CollectionElement) bool {
	list := c.GetCollectionByTag(listTag)
	if list == nil {
		return false
	}
	return list.RemoveElement(item)
}

func indexOf(items []*physical.CollectionElement, item *physical.CollectionElement) int {
	for i, it := range items {
		if it == item {
			return i
		}
	}
	return -1
}
