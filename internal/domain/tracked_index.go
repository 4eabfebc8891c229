package domain

// TrackedIndex identifies one of the custom indices tracking the official SGD NEER.
type TrackedIndex string

const (
	// IndexCTSGSGD is the Citi-built custom index
	IndexCTSGSGD TrackedIndex = "CTSGSGD"
	// IndexGSSGSGD is the Goldman-built custom index
	IndexGSSGSGD TrackedIndex = "GSSGSGD"
)

// TrackedIndexCount is the number of tracked indices.
const TrackedIndexCount = 2

// DefaultSelection is the index selected when a client has not chosen one yet.
const DefaultSelection = IndexCTSGSGD

// FallbackSelection is the index used for any unrecognized selection value.
const FallbackSelection = IndexGSSGSGD

// TrackedIndices returns every tracked index in ordinal order.
func TrackedIndices() []TrackedIndex {
	return []TrackedIndex{IndexCTSGSGD, IndexGSSGSGD}
}

// ParseTrackedIndex maps a selection value to a tracked index.
// Anything other than an exact CTSGSGD resolves to FallbackSelection.
func ParseTrackedIndex(value string) TrackedIndex {
	if idx, ok := LookupTrackedIndex(value); ok {
		return idx
	}
	return FallbackSelection
}

// LookupTrackedIndex returns the tracked index with the given name.
func LookupTrackedIndex(value string) (TrackedIndex, bool) {
	switch TrackedIndex(value) {
	case IndexCTSGSGD:
		return IndexCTSGSGD, true
	case IndexGSSGSGD:
		return IndexGSSGSGD, true
	}
	return "", false
}

// Ordinal returns the position of the index in TrackedIndices.
// Unknown values share the fallback's ordinal.
func (t TrackedIndex) Ordinal() int {
	if t == IndexCTSGSGD {
		return 0
	}
	return 1
}

// DeviationColumn is the weekly dataset column holding this index's deviation.
func (t TrackedIndex) DeviationColumn() string {
	return "Deviation " + string(t)
}

// LevelColumn is the level dataset column holding this index's level.
func (t TrackedIndex) LevelColumn() string {
	return string(t)
}

// String implements fmt.Stringer.
func (t TrackedIndex) String() string {
	return string(t)
}
