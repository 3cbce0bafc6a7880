package logical

import (
	"fmt"
	"time"

	"github.com/basekick-labs/pqdif/pkg/physical"
)

// Version written into new container records.
const (
	WriterMajorVersion     = 1
	WriterMinorVersion     = 5
	CompatibleMajorVersion = 1
	CompatibleMinorVersion = 0
)

// Version is a PQDIF major.minor version pair.
type Version struct {
	Major uint32
	Minor uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ContainerRecord is the file header. Every file holds exactly one, first.
type ContainerRecord struct {
	rec *physical.Record
}

// NewContainerRecord narrows rec to a ContainerRecord. It reports false when
// rec is not a container.
func NewContainerRecord(rec *physical.Record) (*ContainerRecord, bool) {
	if rec.Type() != physical.RecordTypeContainer || rec.Body == nil || rec.Body.Collection == nil {
		return nil, false
	}
	return &ContainerRecord{rec: rec}, true
}

// CreateContainerRecord builds a container for a new file with the current
// writer version and creation time.
func CreateContainerRecord() *ContainerRecord {
	c := &ContainerRecord{rec: physical.NewRecord(physical.RecordTypeContainer)}
	c.SetVersions(
		Version{WriterMajorVersion, WriterMinorVersion},
		Version{CompatibleMajorVersion, CompatibleMinorVersion},
	)
	c.SetFileName("")
	c.SetCreation(time.Now().UTC())
	return c
}

// PhysicalRecord returns the underlying record.
func (c *ContainerRecord) PhysicalRecord() *physical.Record { return c.rec }

func (c *ContainerRecord) body() *physical.CollectionElement { return c.rec.Body.Collection }

// Equal reports whether both wrappers view the same record.
func (c *ContainerRecord) Equal(other *ContainerRecord) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.rec == other.rec
}

// WriterVersion returns the version of the software that wrote the file.
func (c *ContainerRecord) WriterVersion() (Version, error) {
	return c.version(0)
}

// CompatibleVersion returns the oldest reader version able to read the file.
func (c *ContainerRecord) CompatibleVersion() (Version, error) {
	return c.version(2)
}

func (c *ContainerRecord) version(offset int) (Version, error) {
	v, err := vectorField(c.body(), TagVersionInfo)
	if err != nil {
		return Version{}, err
	}
	if v.Size() < offset+2 {
		return Version{}, fieldError(TagVersionInfo, fmt.Errorf("%w: %d entries", physical.ErrIndexOutOfRange, v.Size()))
	}
	major, err := v.Float64(offset)
	if err != nil {
		return Version{}, fieldError(TagVersionInfo, err)
	}
	minor, err := v.Float64(offset + 1)
	if err != nil {
		return Version{}, fieldError(TagVersionInfo, err)
	}
	return Version{Major: uint32(major), Minor: uint32(minor)}, nil
}

// SetVersions stores the writer and compatible versions.
func (c *ContainerRecord) SetVersions(writer, compatible Version) {
	c.body().GetOrAddVector(TagVersionInfo).SetUInt4s([]uint32{
		writer.Major, writer.Minor, compatible.Major, compatible.Minor,
	})
}

func (c *ContainerRecord) FileName() (string, error) { return getString(c.body(), TagFileName) }
func (c *ContainerRecord) SetFileName(name string)   { setString(c.body(), TagFileName, name) }

func (c *ContainerRecord) Creation() (time.Time, error) { return getTime(c.body(), TagCreation) }
func (c *ContainerRecord) SetCreation(t time.Time)      { setTime(c.body(), TagCreation, t) }

// Notes returns the free-form notes, or "" when the file carries none.
func (c *ContainerRecord) Notes() (string, error) { return getStringOr(c.body(), TagNotes) }
func (c *ContainerRecord) SetNotes(notes string)  { setUnicodeString(c.body(), TagNotes, notes) }

// CompressionStyle returns the compression style of the rest of the file.
// Absent means no compression.
func (c *ContainerRecord) CompressionStyle() (physical.CompressionStyle, error) {
	v, err := getUintOr(c.body(), TagCompressionStyle, uint32(physical.CompressionStyleNone))
	return physical.CompressionStyle(v), err
}

func (c *ContainerRecord) SetCompressionStyle(style physical.CompressionStyle) {
	setUint(c.body(), TagCompressionStyle, uint32(style))
}

// CompressionAlgorithm returns the compression algorithm of the rest of the
// file. Absent means no compression.
func (c *ContainerRecord) CompressionAlgorithm() (physical.CompressionAlgorithm, error) {
	v, err := getUintOr(c.body(), TagCompressionAlgorithm, uint32(physical.CompressionAlgorithmNone))
	return physical.CompressionAlgorithm(v), err
}

func (c *ContainerRecord) SetCompressionAlgorithm(algorithm physical.CompressionAlgorithm) {
	setUint(c.body(), TagCompressionAlgorithm, uint32(algorithm))
}
