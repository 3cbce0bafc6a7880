package logical

import (
	"testing"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCatalogIsUnique(t *testing.T) {
	all := []uuid.UUID{
		TagContainer, TagVersionInfo, TagFileName, TagCreation, TagNotes,
		TagCompressionStyle, TagCompressionAlgorithm, TagCompressionChecksum,
		TagDataSource, TagDataSourceTypeID, TagVendorID, TagEquipmentID,
		TagSerialNumberDS, TagVersionDS, TagNameDS, TagOwner, TagLocation,
		TagTimeZone, TagCoordinates, TagEffective,
		TagChannelDefinitions, TagOneChannelDefinition, TagChannelDefinitionIndex,
		TagChannelName, TagPhaseID, TagQuantityTypeID, TagQuantityMeasuredID,
		TagChannelGroupID, TagSeriesDefinitions, TagOneSeriesDefinition,
		TagQuantityUnitsID, TagValueTypeID, TagValueTypeName, TagHintGreekPrefixID,
		TagHintPreferredUnitsID, TagHintDefaultDisplayID, TagStorageMethodID,
		TagQuantityCharacteristicID, TagSeriesNominalQuantity,
		TagMonitorSettings, TagTimeInstalled, TagUseCalibration, TagUseTransducer,
		TagChannelSettingsArray, TagOneChannelSetting, TagXDTransformerTypeID,
		TagXDSystemSideRatio, TagXDMonitorSideRatio, TagNominalFrequency,
		TagObservation, TagObservationName, TagTimeCreate, TagTimeStart,
		TagTriggerMethodID, TagTimeTriggered, TagChannelTriggerIndex,
		TagChannelInstances, TagOneChannelInstance, TagSeriesInstances,
		TagOneSeriesInstance, TagSeriesScale, TagSeriesOffset,
		TagSeriesBaseQuantity, TagSeriesValues, TagSeriesShareChannelIndex,
		TagSeriesShareSeriesIndex, TagCrossTriggerDeviceName, TagChannelTriggerModule,
		physical.BlankRecordTag,
	}

	seen := make(map[uuid.UUID]bool)
	for _, tag := range all {
		assert.False(t, seen[tag], "duplicate tag %s (%s)", tag, TagName(tag))
		seen[tag] = true
		assert.NotEqual(t, tag.String(), TagName(tag), "tag %s has no name", tag)
	}
	assert.Equal(t, len(all), KnownTags())

	unknown := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	assert.Equal(t, unknown.String(), TagName(unknown))
}

func TestFactoryNarrowing(t *testing.T) {
	obsRec := physical.NewRecord(physical.RecordTypeObservation)

	ds, ok := NewDataSourceRecord(obsRec)
	assert.False(t, ok)
	assert.Nil(t, ds)

	c, ok := NewContainerRecord(obsRec)
	assert.False(t, ok)
	assert.Nil(t, c)

	ms, ok := NewMonitorSettingsRecord(obsRec)
	assert.False(t, ok)
	assert.Nil(t, ms)

	obs, ok := NewObservationRecord(physical.NewRecord(physical.RecordTypeDataSource), nil, nil)
	assert.False(t, ok)
	assert.Nil(t, obs)

	obs, ok = NewObservationRecord(obsRec, nil, nil)
	require.True(t, ok)
	assert.Same(t, obsRec, obs.PhysicalRecord())

	_, ok = NewDataSourceRecord(nil)
	assert.False(t, ok)
}

func TestEqualityIsIdentity(t *testing.T) {
	rec := CreateDataSourceRecord("identity").PhysicalRecord()
	a, _ := NewDataSourceRecord(rec)
	b, _ := NewDataSourceRecord(rec)
	assert.True(t, a.Equal(b))

	// Structurally identical but distinct records differ.
	effective, err := a.Effective()
	require.NoError(t, err)
	other := CreateDataSourceRecord("identity")
	other.SetEffective(effective)
	assert.False(t, a.Equal(other))

	var nilDS *DataSourceRecord
	assert.False(t, a.Equal(nilDS))
	assert.True(t, nilDS.Equal(nil))

	cd := a.AddNewChannelDefinition()
	assert.True(t, cd.Equal(b.ChannelDefinitions()[0]))
}

func TestContainerDefaults(t *testing.T) {
	c := CreateContainerRecord()

	writer, err := c.WriterVersion()
	require.NoError(t, err)
	assert.Equal(t, Version{1, 5}, writer)
	compatible, err := c.CompatibleVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.0", compatible.String())

	notes, err := c.Notes()
	require.NoError(t, err)
	assert.Empty(t, notes)

	style, err := c.CompressionStyle()
	require.NoError(t, err)
	assert.Equal(t, physical.CompressionStyleNone, style)

	c.SetNotes("Überwachung")
	notes, err = c.Notes()
	require.NoError(t, err)
	assert.Equal(t, "Überwachung", notes)

	c.SetCompressionAlgorithm(physical.CompressionAlgorithmZlib)
	algorithm, err := c.CompressionAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, physical.CompressionAlgorithmZlib, algorithm)
}

func TestDataSourceBuilders(t *testing.T) {
	ds := CreateDataSourceRecord("Substation 4")
	name, err := ds.Name()
	require.NoError(t, err)
	assert.Equal(t, "Substation 4", name)

	typeID, err := ds.DataSourceTypeID()
	require.NoError(t, err)
	assert.Equal(t, DataSourceTypeMeasure, typeID)

	owner, err := ds.Owner()
	require.NoError(t, err)
	assert.Empty(t, owner)

	_, err = ds.VendorID()
	assert.ErrorIs(t, err, ErrMissingTag)

	ds.SetCoordinates([]float64{47.6, -122.3})
	coords, err := ds.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, []float64{47.6, -122.3}, coords)

	va := ds.AddNewChannelDefinition()
	vb := ds.AddNewChannelDefinition()
	assert.Equal(t, 0, va.Index())
	assert.Equal(t, 1, vb.Index())

	qt, err := va.QuantityTypeID()
	require.NoError(t, err)
	assert.Equal(t, QuantityTypeWaveform, qt)

	sd := va.AddNewSeriesDefinition()
	valueType, err := sd.ValueTypeID()
	require.NoError(t, err)
	assert.Equal(t, ValueTypeVal, valueType)
	units, err := sd.QuantityUnits()
	require.NoError(t, err)
	assert.Equal(t, UnitsNone, units)
	characteristic, err := sd.QuantityCharacteristicID()
	require.NoError(t, err)
	assert.Equal(t, CharacteristicNone, characteristic)
	method, err := sd.StorageMethod()
	require.NoError(t, err)
	assert.Equal(t, StorageMethodValues, method)
	assert.Same(t, va, sd.ChannelDefinition())

	va.SetGroupID(3)
	group, err := va.GroupID()
	require.NoError(t, err)
	assert.Equal(t, int16(3), group)

	assert.True(t, ds.RemoveChannelDefinition(va))
	assert.Equal(t, 0, vb.Index())
	assert.Equal(t, -1, va.Index())
	assert.False(t, ds.RemoveChannelDefinition(va))
}

func TestChannelDefinitionDanglingIndex(t *testing.T) {
	ds := newTestDataSource("dangling")
	_, err := ds.ChannelDefinition(2)
	assert.ErrorIs(t, err, ErrDanglingReference)
	_, err = ds.ChannelDefinition(-1)
	assert.ErrorIs(t, err, ErrDanglingReference)

	obs := CreateObservationRecord(ds, nil)
	ci := obs.AddNewChannelInstance(ds.ChannelDefinitions()[1])
	ci.SetChannelDefinitionIndex(9)

	_, err = ci.Definition()
	assert.ErrorIs(t, err, ErrDanglingReference)
	_, err = ci.SeriesInstances()
	assert.ErrorIs(t, err, ErrDanglingReference)

	orphan := CreateObservationRecord(nil, nil)
	cd := ds.ChannelDefinitions()[0]
	_, err = orphan.AddNewChannelInstance(cd).Definition()
	assert.ErrorIs(t, err, ErrNoDataSource)
}

func TestMonitorSettings(t *testing.T) {
	ds := newTestDataSource("settings")
	ms := CreateMonitorSettingsRecord()

	freq, err := ms.NominalFrequency()
	require.NoError(t, err)
	assert.Equal(t, DefaultNominalFrequency, freq)
	ms.SetNominalFrequency(50)
	freq, err = ms.NominalFrequency()
	require.NoError(t, err)
	assert.Equal(t, 50.0, freq)

	useCal, err := ms.UseCalibration()
	require.NoError(t, err)
	assert.False(t, useCal)

	ia := ds.ChannelDefinitions()[1]
	cs := ms.AddNewChannelSetting(ia)
	index, err := cs.ChannelDefinitionIndex()
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	resolved, err := cs.ChannelDefinition(ds)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(ia))

	ratio, err := cs.MonitorSideRatio()
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)
	cs.SetSystemSideRatio(600)
	cs.SetMonitorSideRatio(5)
	ratio, err = cs.SystemSideRatio()
	require.NoError(t, err)
	assert.Equal(t, 600.0, ratio)

	obs := CreateObservationRecord(ds, ms)
	ci := obs.AddNewChannelInstance(ia)
	setting, err := ci.Setting()
	require.NoError(t, err)
	assert.True(t, setting.Equal(cs))

	none, err := obs.AddNewChannelInstance(ds.ChannelDefinitions()[0]).Setting()
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.True(t, ms.RemoveChannelSetting(cs))
	assert.Empty(t, ms.ChannelSettings())
}

func TestMissingTagError(t *testing.T) {
	obs := CreateObservationRecord(newTestDataSource("missing"), nil)
	obs.PhysicalRecord().Body.Collection.RemoveElementsByTag(TagObservationName)

	_, err := obs.Name()
	require.ErrorIs(t, err, ErrMissingTag)

	var missing *MissingTagError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, TagObservationName, missing.Tag)
	assert.Equal(t, "ObservationName", missing.Name)
	assert.Contains(t, err.Error(), "ObservationName")
}

func TestTypeMismatchOnRead(t *testing.T) {
	obs := CreateObservationRecord(newTestDataSource("mismatch"), nil)
	setFloat(obs.PhysicalRecord().Body.Collection, TagTimeStart, 1.5)

	_, err := obs.StartTime()
	assert.ErrorIs(t, err, physical.ErrTypeMismatch)
}

func TestChannelTriggerIndexes(t *testing.T) {
	obs := CreateObservationRecord(newTestDataSource("trigger"), nil)
	indexes, err := obs.ChannelTriggerIndexes()
	require.NoError(t, err)
	assert.Nil(t, indexes)

	obs.SetChannelTriggerIndexes([]int{0, 1})
	indexes, err = obs.ChannelTriggerIndexes()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indexes)
}

func TestStorageMethodsString(t *testing.T) {
	assert.Equal(t, "Values|Scaled", (StorageMethodValues | StorageMethodScaled).String())
	assert.Equal(t, "None", StorageMethods(0).String())
	assert.True(t, (StorageMethodIncrement | StorageMethodScaled).Has(StorageMethodScaled))
	assert.False(t, StorageMethodValues.Has(StorageMethodIncrement))
	assert.Equal(t, "AN", PhaseAN.String())
	assert.Equal(t, "Volts", UnitsVolts.String())
	assert.Equal(t, "Val", IdentifierName(ValueTypeVal))
}
