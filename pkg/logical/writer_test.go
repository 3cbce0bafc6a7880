package logical

import (
	"bytes"
	"testing"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordTypes lists the physical record kinds in data, in file order.
func recordTypes(t *testing.T, data []byte) []physical.RecordType {
	t.Helper()
	r, err := physical.NewReader(bytes.NewReader(data), true, nopLogger())
	require.NoError(t, err)
	var out []physical.RecordType
	for r.HasNextRecord() {
		rec, err := r.NextRecord()
		require.NoError(t, err)
		out = append(out, rec.Type())
	}
	return out
}

func TestWriterDeduplicatesDataSource(t *testing.T) {
	ds := newTestDataSource("shared")
	data, w := writeFile(t, newTestContainer(),
		newTestObservation(t, ds, nil, "one", []float64{1}),
		newTestObservation(t, ds, nil, "two", []float64{2}),
		newTestObservation(t, ds, nil, "three", []float64{3}),
	)

	assert.Equal(t, []physical.RecordType{
		physical.RecordTypeContainer,
		physical.RecordTypeDataSource,
		physical.RecordTypeObservation,
		physical.RecordTypeObservation,
		physical.RecordTypeObservation,
	}, recordTypes(t, data))
	assert.Equal(t, WriterStats{Observations: 3, DataSources: 1}, w.Stats())
}

func TestWriterReemitsSettingsAfterDataSourceSwitch(t *testing.T) {
	a := newTestDataSource("A")
	b := newTestDataSource("B")
	ms := CreateMonitorSettingsRecord()

	data, w := writeFile(t, newTestContainer(),
		newTestObservation(t, a, ms, "one", []float64{1}),
		newTestObservation(t, a, ms, "two", []float64{1}),
		newTestObservation(t, b, ms, "three", []float64{1}),
	)

	assert.Equal(t, []physical.RecordType{
		physical.RecordTypeContainer,
		physical.RecordTypeDataSource,
		physical.RecordTypeMonitorSettings,
		physical.RecordTypeObservation,
		physical.RecordTypeObservation,
		physical.RecordTypeDataSource,
		physical.RecordTypeMonitorSettings,
		physical.RecordTypeObservation,
	}, recordTypes(t, data))
	assert.Equal(t, WriterStats{Observations: 3, DataSources: 2, MonitorSettings: 2}, w.Stats())
}

func TestWriterProtocolErrors(t *testing.T) {
	ds := newTestDataSource("protocol")
	obs := newTestObservation(t, ds, nil, "obs", []float64{1})

	var buf bytes.Buffer
	w := NewWriter(&buf, true, nopLogger())

	assert.ErrorIs(t, w.WriteObservation(obs, false), ErrContainerRequired)
	require.NoError(t, w.WriteContainer(newTestContainer()))
	assert.ErrorIs(t, w.WriteContainer(newTestContainer()), ErrContainerAlreadyWritten)

	orphan := newTestObservation(t, ds, nil, "orphan", []float64{1})
	orphanNoDS, _ := NewObservationRecord(orphan.PhysicalRecord(), nil, nil)
	assert.ErrorIs(t, w.WriteObservation(orphanNoDS, false), ErrNoDataSource)

	require.NoError(t, w.WriteObservation(obs, true))
	assert.ErrorIs(t, w.WriteObservation(obs, false), ErrWriterFinished)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.WriteObservation(obs, false), physical.ErrClosed)
}

func TestWriterAuditsMissingTags(t *testing.T) {
	container := newTestContainer()
	container.PhysicalRecord().Body.Collection.RemoveElementsByTag(TagFileName)

	ds := newTestDataSource("audit")
	ds.PhysicalRecord().Body.Collection.RemoveElementsByTag(TagEffective)

	first := newTestObservation(t, ds, nil, "first", []float64{1, 2})
	first.PhysicalRecord().Body.Collection.RemoveElementsByTag(TagTimeCreate)
	series, err := first.ChannelInstances()[0].SeriesInstance(1)
	require.NoError(t, err)
	series.PhysicalStructure().RemoveElementsByTag(TagSeriesValues)

	second := newTestObservation(t, ds, nil, "second", []float64{3})
	second.PhysicalRecord().Body.Collection.RemoveElementsByTag(TagTimeCreate)

	_, w := writeFile(t, container, first, second)

	assert.Equal(t, []MissingTag{
		{RecordType: physical.RecordTypeContainer, TagName: "FileName", Tag: TagFileName},
		{RecordType: physical.RecordTypeDataSource, TagName: "Effective", Tag: TagEffective},
		{RecordType: physical.RecordTypeObservation, TagName: "TimeCreate", Tag: TagTimeCreate},
		{RecordType: physical.RecordTypeObservation, TagName: "SeriesValues", Tag: TagSeriesValues},
	}, w.MissingTags())
}

func TestWriterAuditAcceptsSharedSeries(t *testing.T) {
	ds := newTestDataSource("shared audit")
	obs := newTestObservation(t, ds, nil, "shared", []float64{1, 2})
	series, err := obs.ChannelInstances()[1].SeriesInstance(1)
	require.NoError(t, err)
	series.SetShareReference(0, 1)

	data, w := writeFile(t, newTestContainer(), obs)
	assert.Empty(t, w.MissingTags())

	read := readObservations(t, openParser(t, data))
	require.Len(t, read, 1)
	values := decodeAll(t, read[0])
	require.Len(t, values, 4)
	assert.Equal(t, values[1], values[3])
}

func TestMissingTagString(t *testing.T) {
	m := MissingTag{RecordType: physical.RecordTypeObservation, TagName: "TimeStart", Tag: TagTimeStart}
	assert.Contains(t, m.String(), "Observation")
	assert.Contains(t, m.String(), "TimeStart")
}
