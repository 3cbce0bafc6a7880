package logical

import (
	"math"
	"testing"
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleSeries returns the only series instance of a fresh observation whose
// definition uses method.
func singleSeries(t *testing.T, method StorageMethods) *SeriesInstance {
	t.Helper()
	ds := CreateDataSourceRecord("single")
	cd := ds.AddNewChannelDefinition()
	cd.AddNewSeriesDefinition().SetStorageMethod(method)

	obs := CreateObservationRecord(ds, nil)
	si, err := obs.AddNewChannelInstance(cd).AddNewSeriesInstance()
	require.NoError(t, err)
	return si
}

func TestOriginalValuesIncrement(t *testing.T) {
	si := singleSeries(t, StorageMethodIncrement)
	si.SetValues([]float64{10, 5, 2})

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12, 14, 16, 18}, values)
}

func TestOriginalValuesIncrementMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  []float64
	}{
		{"too few", []float64{1, 2}},
		{"too many", []float64{1, 2, 3, 4}},
		{"negative count", []float64{0, -1, 1}},
		{"fractional count", []float64{0, 2.5, 1}},
		{"count over limit", []float64{0, MaxIncrementCount + 1, 1}},
		{"huge count", []float64{0, 100_000_000, 1}},
		{"infinite count", []float64{0, math.Inf(1), 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si := singleSeries(t, StorageMethodIncrement)
			si.SetValues(tt.raw)
			_, err := si.OriginalValues()
			assert.ErrorIs(t, err, ErrMalformedSeries)
		})
	}
}

func TestOriginalValuesIncrementAtLimit(t *testing.T) {
	si := singleSeries(t, StorageMethodIncrement)
	si.SetIncrement(0, MaxIncrementCount, 1)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Len(t, values, MaxIncrementCount)
	assert.Equal(t, float64(MaxIncrementCount-1), values[len(values)-1])
}

func TestOriginalValuesScaled(t *testing.T) {
	si := singleSeries(t, StorageMethodValues|StorageMethodScaled)
	si.SetValues([]float64{0, 1, 2})
	si.SetScaleFactor(2)
	si.SetOffset(1)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, values)
}

func TestOriginalValuesScaledDefaults(t *testing.T) {
	si := singleSeries(t, StorageMethodValues|StorageMethodScaled)
	si.SetValues([]float64{4, 5})

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, values)
}

func TestOriginalValuesIgnoresScaleWithoutFlag(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	si.SetValues([]float64{0, 1, 2})
	si.SetScaleFactor(2)
	si.SetOffset(1)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, values)
}

func TestOriginalValuesIncrementAndScaled(t *testing.T) {
	si := singleSeries(t, StorageMethodIncrement|StorageMethodScaled)
	si.SetIncrement(1, 3, 1)
	si.SetScaleFactor(10)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, values)
}

func TestOriginalValuesIntegerVector(t *testing.T) {
	si := singleSeries(t, StorageMethodValues|StorageMethodScaled)
	v := si.PhysicalStructure().GetOrAddVector(TagSeriesValues)
	v.SetPhysicalType(physical.PhysicalTypeInteger2)
	v.SetSize(3)
	for i, x := range []int{-100, 0, 100} {
		require.NoError(t, v.Set(i, x))
	}
	si.SetScaleFactor(0.01)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, values, 1e-12)
}

func TestOriginalValuesMissingVector(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	_, err := si.OriginalValues()

	assert.ErrorIs(t, err, ErrMissingTag)
	var missing *MissingTagError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "SeriesValues", missing.Name)
}

func TestOriginalValuesNotCached(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	si.SetValues([]float64{1, 2})
	first, err := si.OriginalValues()
	require.NoError(t, err)

	si.SetValues([]float64{3})
	second, err := si.OriginalValues()
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, first)
	assert.Equal(t, []float64{3}, second)
}

func TestShareResolution(t *testing.T) {
	ds := newTestDataSource("share")
	obs := newTestObservation(t, ds, nil, "shared", []float64{2, 4, 6})
	channels := obs.ChannelInstances()

	// Ia's value series shares Va's value series.
	shared, err := channels[1].SeriesInstance(1)
	require.NoError(t, err)
	shared.SetShareReference(0, 1)
	assert.Nil(t, shared.SeriesValues())

	source, err := channels[0].SeriesInstance(1)
	require.NoError(t, err)

	want, err := source.OriginalValues()
	require.NoError(t, err)
	got, err := shared.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The raw vector is aliased, not copied.
	sourceVector, err := source.ValueVector()
	require.NoError(t, err)
	sharedVector, err := shared.ValueVector()
	require.NoError(t, err)
	assert.Same(t, sourceVector, sharedVector)

	ch, s, ok, err := shared.ShareReference()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, ch)
	assert.Equal(t, 1, s)

	shared.ClearShareReference()
	_, _, ok, err = shared.ShareReference()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShareRequiresBothIndexes(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	si.SetValues([]float64{7})
	setUint(si.PhysicalStructure(), TagSeriesShareChannelIndex, 3)

	values, err := si.OriginalValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, values)
}

func TestShareDanglingReference(t *testing.T) {
	ds := newTestDataSource("dangling")
	obs := newTestObservation(t, ds, nil, "dangling", []float64{1})

	si, err := obs.ChannelInstances()[0].SeriesInstance(1)
	require.NoError(t, err)

	si.SetShareReference(5, 0)
	_, err = si.OriginalValues()
	assert.ErrorIs(t, err, ErrDanglingReference)

	si.SetShareReference(1, 9)
	_, err = si.OriginalValues()
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestCircularShare(t *testing.T) {
	ds := newTestDataSource("cycle")
	obs := newTestObservation(t, ds, nil, "cycle", []float64{1})
	channels := obs.ChannelInstances()

	a, err := channels[0].SeriesInstance(1)
	require.NoError(t, err)
	b, err := channels[1].SeriesInstance(1)
	require.NoError(t, err)
	a.SetShareReference(1, 1)
	b.SetShareReference(0, 1)

	_, err = a.OriginalValues()
	assert.ErrorIs(t, err, ErrCircularShare)

	// A self reference is a cycle too.
	a.SetShareReference(0, 1)
	_, err = a.OriginalValues()
	assert.ErrorIs(t, err, ErrCircularShare)
}

func TestTimeValuesFromSeconds(t *testing.T) {
	si := singleSeries(t, StorageMethodIncrement)
	si.SetIncrement(0, 3, 0.5)

	times, err := si.TimeValues(testStart)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		testStart,
		testStart.Add(500 * time.Millisecond),
		testStart.Add(time.Second),
	}, times)
}

func TestTimeValuesFromTimestamps(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	v := si.PhysicalStructure().GetOrAddVector(TagSeriesValues)
	v.SetPhysicalType(physical.PhysicalTypeTimestamp)
	v.SetSize(2)
	require.NoError(t, v.Set(0, testStart))
	require.NoError(t, v.Set(1, testStart.Add(time.Minute)))

	times, err := si.TimeValues(time.Time{})
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, testStart.Equal(times[0]))
	assert.True(t, testStart.Add(time.Minute).Equal(times[1]))
}

func TestSeriesInstancesTruncateToDefinitions(t *testing.T) {
	ds := CreateDataSourceRecord("zip")
	cd := ds.AddNewChannelDefinition()
	cd.AddNewSeriesDefinition()
	cd.AddNewSeriesDefinition()

	obs := CreateObservationRecord(ds, nil)
	ci := obs.AddNewChannelInstance(cd)
	for i := 0; i < 3; i++ {
		appendCollection(ci.PhysicalStructure(), TagSeriesInstances, TagOneSeriesInstance)
	}

	series, err := ci.SeriesInstances()
	require.NoError(t, err)
	assert.Len(t, series, 2)

	// Fewer instances than definitions truncates the other way.
	ci2 := obs.AddNewChannelInstance(cd)
	_, err = ci2.AddNewSeriesInstance()
	require.NoError(t, err)
	series, err = ci2.SeriesInstances()
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].Definition().Equal(cd.SeriesDefinitions()[0]))
}

func TestAddNewSeriesInstanceBeyondDefinitions(t *testing.T) {
	si := singleSeries(t, StorageMethodValues)
	_, err := si.Channel().AddNewSeriesInstance()
	assert.ErrorIs(t, err, ErrDanglingReference)
}
