package logical

import (
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// DataSourceRecord describes the instrument that recorded the observations
// following it, including the schema of every channel.
type DataSourceRecord struct {
	rec *physical.Record
}

// NewDataSourceRecord narrows rec to a DataSourceRecord. It reports false
// when rec is not a data source.
func NewDataSourceRecord(rec *physical.Record) (*DataSourceRecord, bool) {
	if rec.Type() != physical.RecordTypeDataSource || rec.Body == nil || rec.Body.Collection == nil {
		return nil, false
	}
	return &DataSourceRecord{rec: rec}, true
}

// CreateDataSourceRecord builds a measuring data source named name with no
// channels, effective now.
func CreateDataSourceRecord(name string) *DataSourceRecord {
	ds := &DataSourceRecord{rec: physical.NewRecord(physical.RecordTypeDataSource)}
	ds.SetDataSourceTypeID(DataSourceTypeMeasure)
	ds.SetName(name)
	ds.SetEffective(time.Now().UTC())
	ds.body().GetOrAddCollection(TagChannelDefinitions)
	return ds
}

// PhysicalRecord returns the underlying record.
func (ds *DataSourceRecord) PhysicalRecord() *physical.Record { return ds.rec }

func (ds *DataSourceRecord) body() *physical.CollectionElement { return ds.rec.Body.Collection }

// Equal reports whether both wrappers view the same record.
func (ds *DataSourceRecord) Equal(other *DataSourceRecord) bool {
	if ds == nil || other == nil {
		return ds == other
	}
	return ds.rec == other.rec
}

func (ds *DataSourceRecord) DataSourceTypeID() (uuid.UUID, error) {
	return getGuid(ds.body(), TagDataSourceTypeID)
}
func (ds *DataSourceRecord) SetDataSourceTypeID(id uuid.UUID) {
	setGuid(ds.body(), TagDataSourceTypeID, id)
}

func (ds *DataSourceRecord) VendorID() (uuid.UUID, error) { return getGuid(ds.body(), TagVendorID) }
func (ds *DataSourceRecord) SetVendorID(id uuid.UUID)     { setGuid(ds.body(), TagVendorID, id) }

func (ds *DataSourceRecord) EquipmentID() (uuid.UUID, error) {
	return getGuid(ds.body(), TagEquipmentID)
}
func (ds *DataSourceRecord) SetEquipmentID(id uuid.UUID) { setGuid(ds.body(), TagEquipmentID, id) }

func (ds *DataSourceRecord) Name() (string, error) { return getString(ds.body(), TagNameDS) }
func (ds *DataSourceRecord) SetName(name string)   { setString(ds.body(), TagNameDS, name) }

// Optional descriptive text fields read as "" when absent.

func (ds *DataSourceRecord) SerialNumber() (string, error) {
	return getStringOr(ds.body(), TagSerialNumberDS)
}
func (ds *DataSourceRecord) SetSerialNumber(s string) { setString(ds.body(), TagSerialNumberDS, s) }

func (ds *DataSourceRecord) Version() (string, error) { return getStringOr(ds.body(), TagVersionDS) }
func (ds *DataSourceRecord) SetVersion(s string)      { setString(ds.body(), TagVersionDS, s) }

func (ds *DataSourceRecord) Owner() (string, error) { return getStringOr(ds.body(), TagOwner) }
func (ds *DataSourceRecord) SetOwner(s string)      { setString(ds.body(), TagOwner, s) }

func (ds *DataSourceRecord) Location() (string, error) { return getStringOr(ds.body(), TagLocation) }
func (ds *DataSourceRecord) SetLocation(s string)      { setString(ds.body(), TagLocation, s) }

func (ds *DataSourceRecord) TimeZone() (string, error) { return getStringOr(ds.body(), TagTimeZone) }
func (ds *DataSourceRecord) SetTimeZone(s string)      { setString(ds.body(), TagTimeZone, s) }

// Coordinates returns the latitude/longitude pair of the instrument.
func (ds *DataSourceRecord) Coordinates() ([]float64, error) {
	v, err := vectorField(ds.body(), TagCoordinates)
	if err != nil {
		return nil, err
	}
	coords, err := v.Float64s()
	if err != nil {
		return nil, fieldError(TagCoordinates, err)
	}
	return coords, nil
}

func (ds *DataSourceRecord) SetCoordinates(coords []float64) {
	ds.body().GetOrAddVector(TagCoordinates).SetReal8s(coords)
}

func (ds *DataSourceRecord) Effective() (time.Time, error) { return getTime(ds.body(), TagEffective) }
func (ds *DataSourceRecord) SetEffective(t time.Time)      { setTime(ds.body(), TagEffective, t) }

// ChannelDefinitions returns the channel definitions in file order. The
// position of each is its channel definition index.
func (ds *DataSourceRecord) ChannelDefinitions() []*ChannelDefinition {
	nodes := collections(ds.body(), TagChannelDefinitions, TagOneChannelDefinition)
	out := make([]*ChannelDefinition, len(nodes))
	for i, n := range nodes {
		out[i] = &ChannelDefinition{node: n, dataSource: ds}
	}
	return out
}

// ChannelDefinition returns the definition at index.
func (ds *DataSourceRecord) ChannelDefinition(index int) (*ChannelDefinition, error) {
	defs := ds.ChannelDefinitions()
	if index < 0 || index >= len(defs) {
		return nil, dangling("channel definition", index, len(defs))
	}
	return defs[index], nil
}

// AddNewChannelDefinition appends a channel definition with default
// quantity type Waveform and no series.
func (ds *DataSourceRecord) AddNewChannelDefinition() *ChannelDefinition {
	node := appendCollection(ds.body(), TagChannelDefinitions, TagOneChannelDefinition)
	cd := &ChannelDefinition{node: node, dataSource: ds}
	cd.SetName("")
	cd.SetPhaseID(PhaseNone)
	cd.SetQuantityTypeID(QuantityTypeWaveform)
	cd.SetQuantityMeasured(QuantityMeasuredNone)
	node.GetOrAddCollection(TagSeriesDefinitions)
	return cd
}

// RemoveChannelDefinition removes cd. Indexes of later definitions shift down.
func (ds *DataSourceRecord) RemoveChannelDefinition(cd *ChannelDefinition) bool {
	return removeCollection(ds.body(), TagChannelDefinitions, cd.node)
}
