package logical

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2024, time.June, 1, 10, 15, 0, 0, time.UTC)

// newTestDataSource builds a data source with two channels (Va, Ia), each with
// an increment-encoded time series and a scaled value series.
func newTestDataSource(name string) *DataSourceRecord {
	ds := CreateDataSourceRecord(name)
	ds.SetEffective(testStart)

	channels := []struct {
		name     string
		phase    Phase
		measured QuantityMeasured
		units    QuantityUnits
	}{
		{"Va", PhaseAN, QuantityMeasuredVoltage, UnitsVolts},
		{"Ia", PhaseAN, QuantityMeasuredCurrent, UnitsAmps},
	}
	for _, ch := range channels {
		cd := ds.AddNewChannelDefinition()
		cd.SetName(ch.name)
		cd.SetPhaseID(ch.phase)
		cd.SetQuantityMeasured(ch.measured)

		timeDef := cd.AddNewSeriesDefinition()
		timeDef.SetValueTypeID(ValueTypeTime)
		timeDef.SetQuantityUnits(UnitsSeconds)
		timeDef.SetStorageMethod(StorageMethodIncrement)

		valueDef := cd.AddNewSeriesDefinition()
		valueDef.SetQuantityUnits(ch.units)
		valueDef.SetStorageMethod(StorageMethodValues | StorageMethodScaled)
	}
	return ds
}

// newTestObservation adds one instance per channel of ds holding samples.
func newTestObservation(t *testing.T, ds *DataSourceRecord, settings *MonitorSettingsRecord, name string, samples []float64) *ObservationRecord {
	t.Helper()
	obs := CreateObservationRecord(ds, settings)
	obs.SetName(name)
	obs.SetStartTime(testStart)

	for _, cd := range ds.ChannelDefinitions() {
		ci := obs.AddNewChannelInstance(cd)

		timeSeries, err := ci.AddNewSeriesInstance()
		require.NoError(t, err)
		timeSeries.SetIncrement(0, len(samples), 1.0/7680)

		valueSeries, err := ci.AddNewSeriesInstance()
		require.NoError(t, err)
		valueSeries.SetValues(samples)
		valueSeries.SetScaleFactor(0.5)
		valueSeries.SetOffset(1)
	}
	return obs
}

func newTestContainer() *ContainerRecord {
	c := CreateContainerRecord()
	c.SetFileName("test.pqd")
	c.SetCreation(testStart)
	return c
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// writeFile writes a container and observations, marking the last one.
func writeFile(t *testing.T, container *ContainerRecord, observations ...*ObservationRecord) ([]byte, *Writer) {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, true, nopLogger())
	require.NoError(t, w.WriteContainer(container))
	for i, obs := range observations {
		require.NoError(t, w.WriteObservation(obs, i == len(observations)-1))
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w
}

func openParser(t *testing.T, data []byte) *Parser {
	t.Helper()
	p, err := NewParser(bytes.NewReader(data), true, nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

// readObservations drains p, failing the test on any error.
func readObservations(t *testing.T, p *Parser) []*ObservationRecord {
	t.Helper()
	var out []*ObservationRecord
	for {
		ok, err := p.HasNextObservationRecord()
		require.NoError(t, err)
		if !ok {
			return out
		}
		obs, err := p.NextObservationRecord()
		require.NoError(t, err)
		out = append(out, obs)
	}
}

// decodeAll returns the decoded values of every series of obs, channel by channel.
func decodeAll(t *testing.T, obs *ObservationRecord) [][]float64 {
	t.Helper()
	var out [][]float64
	for _, ci := range obs.ChannelInstances() {
		series, err := ci.SeriesInstances()
		require.NoError(t, err)
		for _, si := range series {
			values, err := si.OriginalValues()
			require.NoError(t, err)
			out = append(out, values)
		}
	}
	return out
}
