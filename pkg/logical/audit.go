package logical

import (
	"fmt"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/google/uuid"
)

// MissingTag is one advisory audit finding: a tag the format expects that a
// written record does not carry.
type MissingTag struct {
	RecordType physical.RecordType
	TagName    string
	Tag        uuid.UUID
}

func (m MissingTag) String() string {
	return fmt.Sprintf("%s: missing %s (%s)", m.RecordType, m.TagName, m.Tag)
}

// Required tags per structure.
var (
	containerRequired = []uuid.UUID{TagVersionInfo, TagFileName, TagCreation}

	dataSourceRequired        = []uuid.UUID{TagDataSourceTypeID, TagNameDS, TagEffective, TagChannelDefinitions}
	channelDefinitionRequired = []uuid.UUID{TagPhaseID, TagQuantityTypeID, TagQuantityMeasuredID, TagSeriesDefinitions}
	seriesDefinitionRequired  = []uuid.UUID{TagValueTypeID, TagQuantityUnitsID, TagQuantityCharacteristicID, TagStorageMethodID}

	monitorSettingsRequired = []uuid.UUID{TagEffective, TagTimeInstalled, TagUseCalibration, TagUseTransducer, TagChannelSettingsArray}
	channelSettingRequired  = []uuid.UUID{TagChannelDefinitionIndex}

	observationRequired     = []uuid.UUID{TagObservationName, TagTimeCreate, TagTimeStart, TagTriggerMethodID, TagChannelInstances}
	channelInstanceRequired = []uuid.UUID{TagChannelDefinitionIndex, TagSeriesInstances}
)

// auditor accumulates distinct findings in the order they are found.
type auditor struct {
	seen    map[MissingTag]struct{}
	missing []MissingTag
}

func newAuditor() *auditor {
	return &auditor{seen: make(map[MissingTag]struct{})}
}

func (a *auditor) require(rt physical.RecordType, c *physical.CollectionElement, tags []uuid.UUID) {
	for _, tag := range tags {
		if hasTag(c, tag) {
			continue
		}
		m := MissingTag{RecordType: rt, TagName: TagName(tag), Tag: tag}
		if _, dup := a.seen[m]; dup {
			continue
		}
		a.seen[m] = struct{}{}
		a.missing = append(a.missing, m)
	}
}

func (a *auditor) container(c *ContainerRecord) {
	a.require(physical.RecordTypeContainer, c.body(), containerRequired)
}

func (a *auditor) dataSource(ds *DataSourceRecord) {
	const rt = physical.RecordTypeDataSource
	a.require(rt, ds.body(), dataSourceRequired)
	for _, cd := range ds.ChannelDefinitions() {
		a.require(rt, cd.node, channelDefinitionRequired)
		for _, sd := range cd.SeriesDefinitions() {
			a.require(rt, sd.node, seriesDefinitionRequired)
		}
	}
}

func (a *auditor) monitorSettings(ms *MonitorSettingsRecord) {
	const rt = physical.RecordTypeMonitorSettings
	a.require(rt, ms.body(), monitorSettingsRequired)
	for _, cs := range ms.ChannelSettings() {
		a.require(rt, cs.node, channelSettingRequired)
	}
}

func (a *auditor) observation(o *ObservationRecord) {
	const rt = physical.RecordTypeObservation
	a.require(rt, o.body(), observationRequired)
	for _, ci := range o.ChannelInstances() {
		a.require(rt, ci.node, channelInstanceRequired)
		// Series are walked from the tree directly so instances without a
		// resolvable definition are still audited.
		for _, node := range collections(ci.node, TagSeriesInstances, TagOneSeriesInstance) {
			if hasTag(node, TagSeriesShareChannelIndex) && hasTag(node, TagSeriesShareSeriesIndex) {
				continue
			}
			a.require(rt, node, []uuid.UUID{TagSeriesValues})
		}
	}
}

func (a *auditor) results() []MissingTag {
	out := make([]MissingTag, len(a.missing))
	copy(out, a.missing)
	return out
}
