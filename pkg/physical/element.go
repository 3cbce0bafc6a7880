package physical

import "github.com/google/uuid"

// Element is a node in a record's element tree.
type Element interface {
	// Tag identifies the element's role within the logical schema.
	Tag() uuid.UUID

	// Type reports whether the element is a collection, scalar or vector.
	Type() ElementType
}

// CollectionElement is an ordered set of child elements. Several children
// may share a tag; lookups by tag return the first match of the requested kind.
type CollectionElement struct {
	tag      uuid.UUID
	elements []Element
}

// NewCollectionElement creates an empty collection.
func NewCollectionElement(tag uuid.UUID) *CollectionElement {
	return &CollectionElement{tag: tag}
}

func (c *CollectionElement) Tag() uuid.UUID    { return c.tag }
func (c *CollectionElement) Type() ElementType { return ElementTypeCollection }

// Len returns the number of direct children.
func (c *CollectionElement) Len() int { return len(c.elements) }

// Elements returns the direct children in order.
func (c *CollectionElement) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// AddElement appends e as the last child.
func (c *CollectionElement) AddElement(e Element) {
	c.elements = append(c.elements, e)
}

// GetElementsByTag returns every direct child carrying tag, in order.
func (c *CollectionElement) GetElementsByTag(tag uuid.UUID) []Element {
	var out []Element
	for _, e := range c.elements {
		if e.Tag() == tag {
			out = append(out, e)
		}
	}
	return out
}

// GetScalarByTag returns the first scalar child carrying tag, or nil.
func (c *CollectionElement) GetScalarByTag(tag uuid.UUID) *ScalarElement {
	for _, e := range c.elements {
		if s, ok := e.(*ScalarElement); ok && s.tag == tag {
			return s
		}
	}
	return nil
}

// GetVectorByTag returns the first vector child carrying tag, or nil.
func (c *CollectionElement) GetVectorByTag(tag uuid.UUID) *VectorElement {
	for _, e := range c.elements {
		if v, ok := e.(*VectorElement); ok && v.tag == tag {
			return v
		}
	}
	return nil
}

// GetCollectionByTag returns the first collection child carrying tag, or nil.
func (c *CollectionElement) GetCollectionByTag(tag uuid.UUID) *CollectionElement {
	for _, e := range c.elements {
		if col, ok := e.(*CollectionElement); ok && col.tag == tag {
			return col
		}
	}
	return nil
}

// GetOrAddScalar returns the scalar child carrying tag, appending an untyped
// one when absent. Its type is fixed by the first Set call.
func (c *CollectionElement) GetOrAddScalar(tag uuid.UUID) *ScalarElement {
	if s := c.GetScalarByTag(tag); s != nil {
		return s
	}
	s := &ScalarElement{tag: tag}
	c.AddElement(s)
	return s
}

// GetOrAddVector returns the vector child carrying tag, appending an empty
// untyped one when absent.
func (c *CollectionElement) GetOrAddVector(tag uuid.UUID) *VectorElement {
	if v := c.GetVectorByTag(tag); v != nil {
		return v
	}
	v := &VectorElement{tag: tag}
	c.AddElement(v)
	return v
}

// GetOrAddCollection returns the collection child carrying tag, appending an
// empty one when absent.
func (c *CollectionElement) GetOrAddCollection(tag uuid.UUID) *CollectionElement {
	if col := c.GetCollectionByTag(tag); col != nil {
		return col
	}
	col := NewCollectionElement(tag)
	c.AddElement(col)
	return col
}

// RemoveElementsByTag removes every direct child carrying tag and returns how
// many were removed.
func (c *CollectionElement) RemoveElementsByTag(tag uuid.UUID) int {
	kept := c.elements[:0]
	removed := 0
	for _, e := range c.elements {
		if e.Tag() == tag {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(c.elements); i++ {
		c.elements[i] = nil
	}
	c.elements = kept
	return removed
}

// RemoveElement removes the direct child identical to e. It reports whether
// e was found.
func (c *CollectionElement) RemoveElement(e Element) bool {
	for i, child := range c.elements {
		if child == e {
			c.elements = append(c.elements[:i], c.elements[i+1:]...)
			return true
		}
	}
	return false
}
