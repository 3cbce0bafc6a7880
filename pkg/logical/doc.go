// Package logical provides the typed PQDIF record model and the parser and
// writer built on it.
//
// Records are views over the element tree of a [physical.Record]. Reading an
// accessor decodes the tree each time and writing one updates the tree in
// place, so two wrappers over the same node always agree. Equal compares
// wrappers by the node they view.
//
// # Structure
//
//	ContainerRecord                 one per file, first
//	DataSourceRecord                instrument and channel schema
//	  ChannelDefinition             addressed by position
//	    SeriesDefinition
//	MonitorSettingsRecord           optional calibration snapshot
//	  ChannelSetting
//	ObservationRecord               one measurement event
//	  ChannelInstance               refers to a ChannelDefinition by index
//	    SeriesInstance              paired with a SeriesDefinition by position
//
// Observations carry no explicit link to their data source. The [Parser]
// binds each observation to the data source and monitor settings most recently
// read before it, and the [Writer] emits them ahead of the first observation
// that uses them.
//
// # Series values
//
// [SeriesInstance.OriginalValues] decodes samples according to the storage
// method of the paired definition. Increment storage holds a
// (start, count, increment) triple; Scaled storage applies the instance's
// scale and offset. A series may share the raw values of another series of
// the same observation.
//
// Index references are checked when resolved and fail with
// [ErrDanglingReference]. Missing required elements fail with a
// [*MissingTagError].
package logical
