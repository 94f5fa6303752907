package core

import "fmt"

// DirtyRange marks part of one attribute array as needing re-upload.
// Offset and Count are float32 element counts. Whole means the entire array.
type DirtyRange struct {
	Attribute AttributeID
	Offset    int
	Count     int
	Whole     bool
}

// SlotRange builds a contiguous range covering count slots starting at slot.
func SlotRange(a AttributeID, slot, count int) DirtyRange {
	size := a.ItemSize()
	return DirtyRange{
		Attribute: a,
		Offset:    slot * size,
		Count:     count * size,
	}
}

// WholeRange marks the full array of a (capacity slots) as dirty.
func WholeRange(a AttributeID, capacity int) DirtyRange {
	return DirtyRange{
		Attribute: a,
		Offset:    0,
		Count:     capacity * a.ItemSize(),
		Whole:     true,
	}
}

func (r DirtyRange) ByteOffset() int { return r.Offset * BytesPerElement }
func (r DirtyRange) ByteCount() int  { return r.Count * BytesPerElement }

// End returns the element index one past the last dirty element.
func (r DirtyRange) End() int { return r.Offset + r.Count }

// ContainsSlot reports whether every element of slot lies inside the range.
func (r DirtyRange) ContainsSlot(slot int) bool {
	size := r.Attribute.ItemSize()
	return slot*size >= r.Offset && (slot+1)*size <= r.End()
}

func (r DirtyRange) String() string {
	if r.Whole {
		return fmt.Sprintf("%s[whole]", r.Attribute)
	}
	return fmt.Sprintf("%s[%d:%d]", r.Attribute, r.Offset, r.End())
}
