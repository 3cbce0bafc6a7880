package logical

import (
	"fmt"
	"math"
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
)

// SeriesInstance holds the samples of one series. The values are either
// stored in the instance or shared from another series of the same
// observation.
type SeriesInstance struct {
	node       *physical.CollectionElement
	channel    *ChannelInstance
	definition *SeriesDefinition
}

// Channel returns the channel instance holding this series.
func (si *SeriesInstance) Channel() *ChannelInstance { return si.channel }

// Definition returns the series definition paired with this instance.
func (si *SeriesInstance) Definition() *SeriesDefinition { return si.definition }

// PhysicalStructure returns the underlying collection.
func (si *SeriesInstance) PhysicalStructure() *physical.CollectionElement { return si.node }

// Equal reports whether both wrappers view the same instance.
func (si *SeriesInstance) Equal(other *SeriesInstance) bool {
	if si == nil || other == nil {
		return si == other
	}
	return si.node == other.node
}

// ScaleFactor returns the stored scale, or 1 when absent. It is applied only
// when the definition's storage method includes Scaled.
func (si *SeriesInstance) ScaleFactor() (float64, error) {
	return getFloatOr(si.node, TagSeriesScale, 1)
}
func (si *SeriesInstance) SetScaleFactor(v float64) { setFloat(si.node, TagSeriesScale, v) }

// Offset returns the stored offset, or 0 when absent. It is applied only
// when the definition's storage method includes Scaled.
func (si *SeriesInstance) Offset() (float64, error) {
	return getFloatOr(si.node, TagSeriesOffset, 0)
}
func (si *SeriesInstance) SetOffset(v float64) { setFloat(si.node, TagSeriesOffset, v) }

// BaseQuantity returns the base quantity for per-unit series, or 0 when absent.
func (si *SeriesInstance) BaseQuantity() (float64, error) {
	return getFloatOr(si.node, TagSeriesBaseQuantity, 0)
}
func (si *SeriesInstance) SetBaseQuantity(v float64) { setFloat(si.node, TagSeriesBaseQuantity, v) }

// SeriesValues returns the instance's own value vector, or nil when the
// instance has none.
func (si *SeriesInstance) SeriesValues() *physical.VectorElement {
	return si.node.GetVectorByTag(TagSeriesValues)
}

// SetValues stores values as the instance's own Real8 value vector.
func (si *SeriesInstance) SetValues(values []float64) {
	si.node.GetOrAddVector(TagSeriesValues).SetReal8s(values)
}

// SetIncrement stores a start/count/increment triple. The definition's
// storage method must include Increment for it to expand.
func (si *SeriesInstance) SetIncrement(start float64, count int, increment float64) {
	si.SetValues([]float64{start, float64(count), increment})
}

// ShareReference returns the channel and series indexes this instance shares
// its values from. ok is false unless both indexes are present.
func (si *SeriesInstance) ShareReference() (channel, series int, ok bool, err error) {
	if si.node.GetScalarByTag(TagSeriesShareChannelIndex) == nil ||
		si.node.GetScalarByTag(TagSeriesShareSeriesIndex) == nil {
		return 0, 0, false, nil
	}
	c, err := getUint(si.node, TagSeriesShareChannelIndex)
	if err != nil {
		return 0, 0, false, err
	}
	s, err := getUint(si.node, TagSeriesShareSeriesIndex)
	if err != nil {
		return 0, 0, false, err
	}
	return int(c), int(s), true, nil
}

// SetShareReference makes the instance share the values of series `series`
// of channel instance `channel`. Any own value vector is removed.
func (si *SeriesInstance) SetShareReference(channel, series int) {
	setUint(si.node, TagSeriesShareChannelIndex, uint32(channel))
	setUint(si.node, TagSeriesShareSeriesIndex, uint32(series))
	si.node.RemoveElementsByTag(TagSeriesValues)
}

// ClearShareReference removes the share indexes.
func (si *SeriesInstance) ClearShareReference() {
	si.node.RemoveElementsByTag(TagSeriesShareChannelIndex)
	si.node.RemoveElementsByTag(TagSeriesShareSeriesIndex)
}

// ValueVector returns the raw value vector, following share references.
func (si *SeriesInstance) ValueVector() (*physical.VectorElement, error) {
	return si.resolveValues(make(map[*physical.CollectionElement]struct{}))
}

func (si *SeriesInstance) resolveValues(visited map[*physical.CollectionElement]struct{}) (*physical.VectorElement, error) {
	if _, seen := visited[si.node]; seen {
		return nil, ErrCircularShare
	}
	visited[si.node] = struct{}{}

	channel, series, shared, err := si.ShareReference()
	if err != nil {
		return nil, err
	}
	if !shared {
		v := si.SeriesValues()
		if v == nil {
			return nil, missingTag(TagSeriesValues)
		}
		return v, nil
	}

	target, err := si.channel.observation.ChannelInstance(channel)
	if err != nil {
		return nil, fmt.Errorf("series share: %w", err)
	}
	source, err := target.SeriesInstance(series)
	if err != nil {
		return nil, fmt.Errorf("series share: %w", err)
	}
	return source.resolveValues(visited)
}

// OriginalValues decodes the samples of the series: increment triples are
// expanded and, for Scaled storage, each sample becomes offset + sample*scale.
// Results are derived from the tree on every call.
func (si *SeriesInstance) OriginalValues() ([]float64, error) {
	v, err := si.ValueVector()
	if err != nil {
		return nil, err
	}
	method, err := si.definition.StorageMethod()
	if err != nil {
		return nil, err
	}
	raw, err := v.Float64s()
	if err != nil {
		return nil, fieldError(TagSeriesValues, err)
	}

	values := raw
	if method.Has(StorageMethodIncrement) {
		if values, err = expandIncrement(raw); err != nil {
			return nil, err
		}
	}

	// Without the Scaled flag stored scale and offset are ignored.
	scale, offset := 1.0, 0.0
	if method.Has(StorageMethodScaled) {
		if scale, err = si.ScaleFactor(); err != nil {
			return nil, err
		}
		if offset, err = si.Offset(); err != nil {
			return nil, err
		}
	}
	if scale != 1 || offset != 0 {
		for i, x := range values {
			values[i] = offset + x*scale
		}
	}
	return values, nil
}

// MaxIncrementCount bounds the samples one increment triple may expand to,
// so three stored values cannot demand an arbitrarily large allocation.
const MaxIncrementCount = 1 << 23

func expandIncrement(raw []float64) ([]float64, error) {
	if len(raw) != 3 {
		return nil, fmt.Errorf("%w: increment storage needs 3 values, got %d", ErrMalformedSeries, len(raw))
	}
	start, count, increment := raw[0], raw[1], raw[2]
	if count < 0 || count != math.Trunc(count) {
		return nil, fmt.Errorf("%w: invalid increment count %v", ErrMalformedSeries, count)
	}
	if count > MaxIncrementCount {
		return nil, fmt.Errorf("%w: increment count %v exceeds %d", ErrMalformedSeries, count, MaxIncrementCount)
	}
	out := make([]float64, int(count))
	for i := range out {
		out[i] = start + float64(i)*increment
	}
	return out, nil
}

// TimeValues decodes a time series. Timestamp vectors are returned as stored;
// numeric series are read as seconds relative to start.
func (si *SeriesInstance) TimeValues(start time.Time) ([]time.Time, error) {
	v, err := si.ValueVector()
	if err != nil {
		return nil, err
	}
	if v.PhysicalType() == physical.PhysicalTypeTimestamp {
		out := make([]time.Time, v.Size())
		for i := range out {
			if out[i], err = v.GetTimestamp(i); err != nil {
				return nil, fieldError(TagSeriesValues, err)
			}
		}
		return out, nil
	}

	seconds, err := si.OriginalValues()
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(seconds))
	for i, s := range seconds {
		out[i] = start.Add(time.Duration(math.Round(s * float64(time.Second))))
	}
	return out, nil
}
