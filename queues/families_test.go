package queues

import (
	"slices"
	"testing"
)

func probeFrom(families []Capabilities, probed *[]uint32) func(uint32) Capabilities {
	return func(i uint32) Capabilities {
		*probed = append(*probed, i)
		return families[i]
	}
}

func TestFindSameFamily(t *testing.T) {
	families := []Capabilities{
		{Graphics: true, Present: true},
		{Graphics: true, Present: true},
	}

	var probed []uint32
	indices := Find(uint32(len(families)), probeFrom(families, &probed))

	if !indices.IsComplete() {
		t.Fatalf("expected complete indices")
	}
	if indices.Graphics.Get() != 0 || indices.Present.Get() != 0 {
		t.Errorf("expected both families at index 0, got graphics %d present %d",
			indices.Graphics.Get(), indices.Present.Get())
	}
	if !slices.Equal(probed, []uint32{0}) {
		t.Errorf("expected the scan to stop after the first family, probed %v", probed)
	}
	if got := indices.Unique(); !slices.Equal(got, []uint32{0}) {
		t.Errorf("expected a single unique family, got %v", got)
	}
}

func TestFindFirstMatchWins(t *testing.T) {
	families := []Capabilities{
		{},
		{Present: true},
		{Graphics: true},
		{Graphics: true, Present: true},
	}

	var probed []uint32
	indices := Find(uint32(len(families)), probeFrom(families, &probed))

	if !indices.IsComplete() {
		t.Fatalf("expected complete indices")
	}
	if got := indices.Graphics.Get(); got != 2 {
		t.Errorf("expected graphics family 2 but got %d", got)
	}
	if got := indices.Present.Get(); got != 1 {
		t.Errorf("expected present family 1 but got %d", got)
	}
	if !slices.Equal(probed, []uint32{0, 1, 2}) {
		t.Errorf("expected families 0 to 2 to be probed, got %v", probed)
	}
	if got := indices.Unique(); !slices.Equal(got, []uint32{1, 2}) {
		t.Errorf("expected unique families [1 2], got %v", got)
	}
}

func TestFindIncomplete(t *testing.T) {
	families := []Capabilities{
		{Graphics: true},
		{Graphics: true},
	}

	var probed []uint32
	indices := Find(uint32(len(families)), probeFrom(families, &probed))

	if indices.IsComplete() {
		t.Errorf("expected incomplete indices without a present family")
	}
	if !indices.Graphics.HasValue() || indices.Graphics.Get() != 0 {
		t.Errorf("expected graphics family 0")
	}
	if len(probed) != len(families) {
		t.Errorf("expected every family to be probed, got %v", probed)
	}
}

func TestFindNoFamilies(t *testing.T) {
	indices := Find(0, func(uint32) Capabilities {
		t.Fatalf("probe must not be called when there are no families")
		return Capabilities{}
	})

	if indices.Graphics.HasValue() || indices.Present.HasValue() {
		t.Errorf("expected no families to be found")
	}
	if got := indices.Unique(); len(got) != 0 {
		t.Errorf("expected no unique families, got %v", got)
	}
}

func TestFindUntilGraphics(t *testing.T) {
	families := []Capabilities{
		{Graphics: true},
		{Graphics: true},
		{Graphics: true},
	}

	var probed []uint32
	indices := FindUntil(
		uint32(len(families)),
		(*FamilyIndices).HasGraphics,
		probeFrom(families, &probed),
	)

	if !indices.HasGraphics() || indices.Graphics.Get() != 0 {
		t.Errorf("expected graphics family 0")
	}
	if indices.Present.HasValue() {
		t.Errorf("expected no present family")
	}
	if !slices.Equal(probed, []uint32{0}) {
		t.Errorf("expected the scan to stop after the first family, probed %v", probed)
	}
}

func TestFindUntilGraphicsSkipsNonGraphics(t *testing.T) {
	families := []Capabilities{
		{Present: true},
		{},
		{Graphics: true},
		{Graphics: true},
	}

	var probed []uint32
	indices := FindUntil(
		uint32(len(families)),
		(*FamilyIndices).HasGraphics,
		probeFrom(families, &probed),
	)

	if got := indices.Graphics.Get(); got != 2 {
		t.Errorf("expected graphics family 2 but got %d", got)
	}
	if !slices.Equal(probed, []uint32{0, 1, 2}) {
		t.Errorf("expected families 0 to 2 to be probed, got %v", probed)
	}
}
