package logical

import (
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
)

// DefaultNominalFrequency is reported when a settings record carries none.
const DefaultNominalFrequency = 60.0

// MonitorSettingsRecord is a snapshot of instrument calibration and
// transducer configuration.
type MonitorSettingsRecord struct {
	rec *physical.Record
}

// NewMonitorSettingsRecord narrows rec to a MonitorSettingsRecord. It
// reports false when rec is not a monitor settings record.
func NewMonitorSettingsRecord(rec *physical.Record) (*MonitorSettingsRecord, bool) {
	if rec.Type() != physical.RecordTypeMonitorSettings || rec.Body == nil || rec.Body.Collection == nil {
		return nil, false
	}
	return &MonitorSettingsRecord{rec: rec}, true
}

// CreateMonitorSettingsRecord builds settings effective and installed now,
// with calibration and transducers disabled.
func CreateMonitorSettingsRecord() *MonitorSettingsRecord {
	ms := &MonitorSettingsRecord{rec: physical.NewRecord(physical.RecordTypeMonitorSettings)}
	now := time.Now().UTC()
	ms.SetEffective(now)
	ms.SetTimeInstalled(now)
	ms.SetUseCalibration(false)
	ms.SetUseTransducer(false)
	ms.body().GetOrAddCollection(TagChannelSettingsArray)
	return ms
}

// PhysicalRecord returns the underlying record.
func (ms *MonitorSettingsRecord) PhysicalRecord() *physical.Record { return ms.rec }

func (ms *MonitorSettingsRecord) body() *physical.CollectionElement { return ms.rec.Body.Collection }

// Equal reports whether both wrappers view the same record.
func (ms *MonitorSettingsRecord) Equal(other *MonitorSettingsRecord) bool {
	if ms == nil || other == nil {
		return ms == other
	}
	return ms.rec == other.rec
}

func (ms *MonitorSettingsRecord) Effective() (time.Time, error) {
	return getTime(ms.body(), TagEffective)
}
func (ms *MonitorSettingsRecord) SetEffective(t time.Time) { setTime(ms.body(), TagEffective, t) }

func (ms *MonitorSettingsRecord) TimeInstalled() (time.Time, error) {
	return getTime(ms.body(), TagTimeInstalled)
}
func (ms *MonitorSettingsRecord) SetTimeInstalled(t time.Time) {
	setTime(ms.body(), TagTimeInstalled, t)
}

func (ms *MonitorSettingsRecord) UseCalibration() (bool, error) {
	return getBool(ms.body(), TagUseCalibration)
}
func (ms *MonitorSettingsRecord) SetUseCalibration(v bool) { setBool(ms.body(), TagUseCalibration, v) }

func (ms *MonitorSettingsRecord) UseTransducer() (bool, error) {
	return getBool(ms.body(), TagUseTransducer)
}
func (ms *MonitorSettingsRecord) SetUseTransducer(v bool) { setBool(ms.body(), TagUseTransducer, v) }

// NominalFrequency returns the system frequency in Hz, or
// DefaultNominalFrequency when unset.
func (ms *MonitorSettingsRecord) NominalFrequency() (float64, error) {
	return getFloatOr(ms.body(), TagNominalFrequency, DefaultNominalFrequency)
}
func (ms *MonitorSettingsRecord) SetNominalFrequency(hz float64) {
	setFloat(ms.body(), TagNominalFrequency, hz)
}

// ChannelSettings returns the per-channel settings in order.
func (ms *MonitorSettingsRecord) ChannelSettings() []*ChannelSetting {
	nodes := collections(ms.body(), TagChannelSettingsArray, TagOneChannelSetting)
	out := make([]*ChannelSetting, len(nodes))
	for i, n := range nodes {
		out[i] = &ChannelSetting{node: n, settings: ms}
	}
	return out
}

// ChannelSettingFor returns the setting whose channel definition index is
// index, or nil when the channel has none.
func (ms *MonitorSettingsRecord) ChannelSettingFor(index int) (*ChannelSetting, error) {
	for _, cs := range ms.ChannelSettings() {
		i, err := cs.ChannelDefinitionIndex()
		if err != nil {
			return nil, err
		}
		if i == index {
			return cs, nil
		}
	}
	return nil, nil
}

// AddNewChannelSetting appends a setting for cd with unit transducer ratios.
func (ms *MonitorSettingsRecord) AddNewChannelSetting(cd *ChannelDefinition) *ChannelSetting {
	node := appendCollection(ms.body(), TagChannelSettingsArray, TagOneChannelSetting)
	cs := &ChannelSetting{node: node, settings: ms}
	cs.SetChannelDefinitionIndex(cd.Index())
	return cs
}

// RemoveChannelSetting removes cs.
func (ms *MonitorSettingsRecord) RemoveChannelSetting(cs *ChannelSetting) bool {
	return removeCollection(ms.body(), TagChannelSettingsArray, cs.node)
}
