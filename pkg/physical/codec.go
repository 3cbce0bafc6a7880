package physical

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Body layout:
//
//	collection: [Count: 4 bytes] [Count x 28-byte entries]
//	entry:      [Tag: 16] [ElementType: 1] [PhysicalType: 1] [Embedded: 1] [Reserved: 1] [Value/Link: 8]
//	link:       [Offset: 4 bytes, from body start] [Size: 4 bytes]
//	vector:     [Count: 4 bytes] [Count x value]
//
// Scalars of up to 8 bytes are embedded in the entry. Every linked block is
// padded to a 4-byte boundary.
const (
	collectionEntrySize = 28
	embeddedValueSize   = 8
	maxCollectionDepth  = 64
)

type bodyEncoder struct {
	buf []byte
}

// encodeBody serializes the root collection of a record body.
func encodeBody(root *CollectionElement) ([]byte, error) {
	e := &bodyEncoder{buf: make([]byte, 0, 1024)}
	if _, err := e.collection(root, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (e *bodyEncoder) grow(n int) int {
	off := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return off
}

func (e *bodyEncoder) pad() {
	for len(e.buf)%4 != 0 {
		e.buf = append(e.buf, 0)
	}
}

func (e *bodyEncoder) collection(c *CollectionElement, depth int) (int, error) {
	if depth > maxCollectionDepth {
		return 0, fmt.Errorf("collection nesting exceeds %d levels", maxCollectionDepth)
	}
	off := e.grow(4 + collectionEntrySize*len(c.elements))
	binary.LittleEndian.PutUint32(e.buf[off:], uint32(len(c.elements)))

	for i, child := range c.elements {
		entry := off + 4 + i*collectionEntrySize
		putGUID(e.buf[entry:entry+16], child.Tag())
		e.buf[entry+16] = byte(child.Type())

		switch el := child.(type) {
		case *ScalarElement:
			if !el.typ.Valid() || len(el.value) != el.typ.ByteSize() {
				return 0, fmt.Errorf("%w: scalar %s has no value", ErrTypeMismatch, el.tag)
			}
			e.buf[entry+17] = byte(el.typ)
			if len(el.value) <= embeddedValueSize {
				e.buf[entry+18] = 1
				copy(e.buf[entry+20:entry+28], el.value)
				continue
			}
			linkOff := e.grow(len(el.value))
			copy(e.buf[linkOff:], el.value)
			e.pad()
			e.putLink(entry, linkOff, len(el.value))

		case *VectorElement:
			if !el.typ.Valid() {
				return 0, fmt.Errorf("%w: vector %s has no physical type", ErrTypeMismatch, el.tag)
			}
			e.buf[entry+17] = byte(el.typ)
			linkOff := e.grow(4 + len(el.values))
			binary.LittleEndian.PutUint32(e.buf[linkOff:], uint32(el.size))
			copy(e.buf[linkOff+4:], el.values)
			e.pad()
			e.putLink(entry, linkOff, 4+len(el.values))

		case *CollectionElement:
			childOff, err := e.collection(el, depth+1)
			if err != nil {
				return 0, err
			}
			e.putLink(entry, childOff, len(e.buf)-childOff)

		default:
			return 0, fmt.Errorf("unsupported element %T", child)
		}
	}

	e.pad()
	return off, nil
}

func (e *bodyEncoder) putLink(entry, off, size int) {
	binary.LittleEndian.PutUint32(e.buf[entry+20:], uint32(off))
	binary.LittleEndian.PutUint32(e.buf[entry+24:], uint32(size))
}

// decodeBody parses a record body into a collection tagged with tag.
func decodeBody(body []byte, tag uuid.UUID) (*CollectionElement, error) {
	if len(body) == 0 {
		return NewCollectionElement(tag), nil
	}
	return decodeCollection(body, 0, tag, 0)
}

func decodeCollection(body []byte, off int, tag uuid.UUID, depth int) (*CollectionElement, error) {
	if depth > maxCollectionDepth {
		return nil, fmt.Errorf("%w: collection nesting exceeds %d levels", ErrCorruptBody, maxCollectionDepth)
	}
	if off < 0 || off+4 > len(body) {
		return nil, fmt.Errorf("%w: collection offset %d outside body of %d bytes", ErrCorruptBody, off, len(body))
	}
	count := int(binary.LittleEndian.Uint32(body[off:]))
	if count < 0 || count > (len(body)-off-4)/collectionEntrySize {
		return nil, fmt.Errorf("%w: collection count %d does not fit body", ErrCorruptBody, count)
	}

	c := &CollectionElement{tag: tag, elements: make([]Element, 0, count)}
	for i := 0; i < count; i++ {
		entry := body[off+4+i*collectionEntrySize : off+4+(i+1)*collectionEntrySize]
		childTag := getGUID(entry[0:16])
		elementType := ElementType(entry[16])
		physicalType := PhysicalType(entry[17])
		embedded := entry[18] != 0
		linkOff := int(binary.LittleEndian.Uint32(entry[20:24]))
		linkSize := int(binary.LittleEndian.Uint32(entry[24:28]))

		switch elementType {
		case ElementTypeScalar:
			width := physicalType.ByteSize()
			if width == 0 {
				return nil, fmt.Errorf("%w: scalar %s has unknown physical type %d", ErrCorruptBody, childTag, physicalType)
			}
			var raw []byte
			if embedded {
				if width > embeddedValueSize {
					return nil, fmt.Errorf("%w: scalar %s of %d bytes cannot be embedded", ErrCorruptBody, childTag, width)
				}
				raw = entry[20 : 20+width]
			} else {
				if linkOff < 0 || linkOff+width > len(body) {
					return nil, fmt.Errorf("%w: scalar %s link outside body", ErrCorruptBody, childTag)
				}
				raw = body[linkOff : linkOff+width]
			}
			value := make([]byte, width)
			copy(value, raw)
			c.elements = append(c.elements, &ScalarElement{tag: childTag, typ: physicalType, value: value})

		case ElementTypeVector:
			width := physicalType.ByteSize()
			if width == 0 {
				return nil, fmt.Errorf("%w: vector %s has unknown physical type %d", ErrCorruptBody, childTag, physicalType)
			}
			if linkOff < 0 || linkOff+4 > len(body) {
				return nil, fmt.Errorf("%w: vector %s link outside body", ErrCorruptBody, childTag)
			}
			size := int(binary.LittleEndian.Uint32(body[linkOff:]))
			if size < 0 || size > (len(body)-linkOff-4)/width {
				return nil, fmt.Errorf("%w: vector %s size %d does not fit body", ErrCorruptBody, childTag, size)
			}
			values := make([]byte, size*width)
			copy(values, body[linkOff+4:])
			c.elements = append(c.elements, &VectorElement{tag: childTag, typ: physicalType, size: size, values: values})

		case ElementTypeCollection:
			if linkSize < 4 {
				return nil, fmt.Errorf("%w: collection %s has size %d", ErrCorruptBody, childTag, linkSize)
			}
			child, err := decodeCollection(body, linkOff, childTag, depth+1)
			if err != nil {
				return nil, err
			}
			c.elements = append(c.elements, child)

		default:
			return nil, fmt.Errorf("%w: element %s has unknown element type %d", ErrCorruptBody, childTag, elementType)
		}
	}
	return c, nil
}
