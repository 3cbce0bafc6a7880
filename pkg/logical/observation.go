package logical

import (
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
)

// ObservationRecord is one measurement event. It is bound to the data source
// and optional monitor settings that preceded it in the file.
type ObservationRecord struct {
	rec        *physical.Record
	dataSource *DataSourceRecord
	settings   *MonitorSettingsRecord
}

// NewObservationRecord narrows rec to an ObservationRecord bound to ds and
// settings. It reports false when rec is not an observation.
func NewObservationRecord(rec *physical.Record, ds *DataSourceRecord, settings *MonitorSettingsRecord) (*ObservationRecord, bool) {
	if rec.Type() != physical.RecordTypeObservation || rec.Body == nil || rec.Body.Collection == nil {
		return nil, false
	}
	return &ObservationRecord{rec: rec, dataSource: ds, settings: settings}, true
}

// CreateObservationRecord builds an empty observation of ds, created and
// started now.
func CreateObservationRecord(ds *DataSourceRecord, settings *MonitorSettingsRecord) *ObservationRecord {
	obs := &ObservationRecord{
		rec:        physical.NewRecord(physical.RecordTypeObservation),
		dataSource: ds,
		settings:   settings,
	}
	now := time.Now().UTC()
	obs.SetName("")
	obs.SetCreateTime(now)
	obs.SetStartTime(now)
	obs.SetTriggerMethod(TriggerMethodNone)
	obs.body().GetOrAddCollection(TagChannelInstances)
	return obs
}

// PhysicalRecord returns the underlying record.
func (o *ObservationRecord) PhysicalRecord() *physical.Record { return o.rec }

func (o *ObservationRecord) body() *physical.CollectionElement { return o.rec.Body.Collection }

// Equal reports whether both wrappers view the same record.
func (o *ObservationRecord) Equal(other *ObservationRecord) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.rec == other.rec
}

// DataSource returns the data source the observation was recorded by.
func (o *ObservationRecord) DataSource() *DataSourceRecord { return o.dataSource }

// Settings returns the monitor settings in effect, or nil.
func (o *ObservationRecord) Settings() *MonitorSettingsRecord { return o.settings }

func (o *ObservationRecord) Name() (string, error) { return getString(o.body(), TagObservationName) }
func (o *ObservationRecord) SetName(name string)   { setString(o.body(), TagObservationName, name) }

func (o *ObservationRecord) CreateTime() (time.Time, error) { return getTime(o.body(), TagTimeCreate) }
func (o *ObservationRecord) SetCreateTime(t time.Time)      { setTime(o.body(), TagTimeCreate, t) }

func (o *ObservationRecord) StartTime() (time.Time, error) { return getTime(o.body(), TagTimeStart) }
func (o *ObservationRecord) SetStartTime(t time.Time)      { setTime(o.body(), TagTimeStart, t) }

func (o *ObservationRecord) TriggerMethod() (TriggerMethod, error) {
	v, err := getUint(o.body(), TagTriggerMethodID)
	return TriggerMethod(v), err
}
func (o *ObservationRecord) SetTriggerMethod(m TriggerMethod) {
	setUint(o.body(), TagTriggerMethodID, uint32(m))
}

// TimeTriggered returns the trigger time. It is absent for untriggered
// observations.
func (o *ObservationRecord) TimeTriggered() (time.Time, error) {
	return getTime(o.body(), TagTimeTriggered)
}
func (o *ObservationRecord) SetTimeTriggered(t time.Time) { setTime(o.body(), TagTimeTriggered, t) }

// ChannelTriggerIndexes returns the indexes of the channel instances that
// caused the trigger, or nil when none are recorded.
func (o *ObservationRecord) ChannelTriggerIndexes() ([]int, error) {
	v := o.body().GetVectorByTag(TagChannelTriggerIndex)
	if v == nil {
		return nil, nil
	}
	values, err := v.Float64s()
	if err != nil {
		return nil, fieldError(TagChannelTriggerIndex, err)
	}
	out := make([]int, len(values))
	for i, f := range values {
		out[i] = int(f)
	}
	return out, nil
}

func (o *ObservationRecord) SetChannelTriggerIndexes(indexes []int) {
	values := make([]uint32, len(indexes))
	for i, idx := range indexes {
		values[i] = uint32(idx)
	}
	o.body().GetOrAddVector(TagChannelTriggerIndex).SetUInt4s(values)
}

// ChannelInstances returns the channel instances in order.
func (o *ObservationRecord) ChannelInstances() []*ChannelInstance {
	nodes := collections(o.body(), TagChannelInstances, TagOneChannelInstance)
	out := make([]*ChannelInstance, len(nodes))
	for i, n := range nodes {
		out[i] = &ChannelInstance{node: n, observation: o}
	}
	return out
}

// ChannelInstance returns the channel instance at index.
func (o *ObservationRecord) ChannelInstance(index int) (*ChannelInstance, error) {
	instances := o.ChannelInstances()
	if index < 0 || index >= len(instances) {
		return nil, dangling("channel instance", index, len(instances))
	}
	return instances[index], nil
}

// AddNewChannelInstance appends an instance of cd with no series.
func (o *ObservationRecord) AddNewChannelInstance(cd *ChannelDefinition) *ChannelInstance {
	node := appendCollection(o.body(), TagChannelInstances, TagOneChannelInstance)
	ci := &ChannelInstance{node: node, observation: o}
	ci.SetChannelDefinitionIndex(cd.Index())
	node.GetOrAddCollection(TagSeriesInstances)
	return ci
}

// RemoveChannelInstance removes ci. Share references to later instances are
// not renumbered.
func (o *ObservationRecord) RemoveChannelInstance(ci *ChannelInstance) bool {
	return removeCollection(o.body(), TagChannelInstances, ci.node)
}
