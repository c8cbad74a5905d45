package queues

import (
	"slices"

	"github.com/komus-Israel/VulkanTutorial/optional"
)

// FamilyIndices holds the indexes of Vulkan queue families needed by the programs.
type FamilyIndices struct {

	// Graphics is the index of the graphics queue family.
	Graphics optional.Optional[uint32]

	// Present is the index of the queue family used for presenting to the drawing
	// surface.
	Present optional.Optional[uint32]
}

// IsComplete returns true if all families have been set.
func (f *FamilyIndices) IsComplete() bool {
	return f.Graphics.HasValue() && f.Present.HasValue()
}

// Unique returns the distinct family indexes which have been set, in ascending
// order. A single family often supports both graphics and presentation and
// Vulkan forbids requesting queues for the same family twice.
func (f *FamilyIndices) Unique() []uint32 {
	var out []uint32
	for _, family := range []optional.Optional[uint32]{f.Graphics, f.Present} {
		if family.HasValue() && !slices.Contains(out, family.Get()) {
			out = append(out, family.Get())
		}
	}
	slices.Sort(out)
	return out
}

// Capabilities describes the operations of a single queue family which are of
// interest to the programs.
type Capabilities struct {
	Graphics bool
	Present  bool
}

// HasGraphics returns true if the graphics family has been set.
func (f *FamilyIndices) HasGraphics() bool {
	return f.Graphics.HasValue()
}

// Find scans count queue families in order, asking probe about each of them,
// and returns the first family index found for every kind of queue. The scan
// stops as soon as all families are found so probe is not called for the
// remaining ones.
func Find(count uint32, probe func(index uint32) Capabilities) FamilyIndices {
	return FindUntil(count, (*FamilyIndices).IsComplete, probe)
}

// FindUntil works like Find but stops the scan as soon as done reports that
// the families needed by the caller have been found.
func FindUntil(
	count uint32,
	done func(*FamilyIndices) bool,
	probe func(index uint32) Capabilities,
) FamilyIndices {
	indices := FamilyIndices{}

	for i := uint32(0); i < count; i++ {
		caps := probe(i)

		if caps.Graphics && !indices.Graphics.HasValue() {
			indices.Graphics.Set(i)
		}

		if caps.Present && !indices.Present.HasValue() {
			indices.Present.Set(i)
		}

		if done(&indices) {
			break
		}
	}

	return indices
}
