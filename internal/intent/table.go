package intent

import "sort"

// fieldKind drives how a schema parameter is decoded and validated.
type fieldKind int

const (
	kindDimension fieldKind = iota
	kindLocation
	kindReference // bare name string resolved against the domain model
	kindText
	kindCount
	kindNumber // plain float, e.g. degrees
	kindBool
)

type fieldSpec struct {
	name     string
	kind     fieldKind
	required bool
	// def is the textual default for optional fields; empty means "no
	// default", the zero value applies.
	def string
	// positive enforces value > 0 for dimensions/counts/numbers.
	positive bool
}

type intentSpec struct {
	tag    string
	fields []fieldSpec
}

// intentTable is the fixed mapping from intent tag to its parameter
// contract. Conditional requirements (pattern kind, mate value) are
// enforced by the per-intent builders in resolver.go.
var intentTable = map[string]intentSpec{
	"CREATE_PART": {tag: "CREATE_PART", fields: []fieldSpec{
		{name: "name", kind: kindText, def: "Part1"},
		{name: "units", kind: kindText},
	}},
	"CREATE_BOX": {tag: "CREATE_BOX", fields: []fieldSpec{
		{name: "width", kind: kindDimension, required: true, positive: true},
		{name: "length", kind: kindDimension, required: true, positive: true},
		{name: "height", kind: kindDimension, required: true, positive: true},
		{name: "plane", kind: kindReference, def: "Front"},
	}},
	"CREATE_CYLINDER": {tag: "CREATE_CYLINDER", fields: []fieldSpec{
		{name: "diameter", kind: kindDimension, required: true, positive: true},
		{name: "height", kind: kindDimension, required: true, positive: true},
		{name: "plane", kind: kindReference, def: "Front"},
	}},
	"ADD_FILLET": {tag: "ADD_FILLET", fields: []fieldSpec{
		{name: "radius", kind: kindDimension, required: true, positive: true},
		{name: "edges", kind: kindText, def: "all"},
	}},
	"ADD_CHAMFER": {tag: "ADD_CHAMFER", fields: []fieldSpec{
		{name: "distance", kind: kindDimension, required: true, positive: true},
		{name: "edges", kind: kindText, def: "all"},
	}},
	"ADD_HOLE": {tag: "ADD_HOLE", fields: []fieldSpec{
		{name: "diameter", kind: kindDimension, required: true, positive: true},
		{name: "depth", kind: kindDimension, required: true, positive: true},
		{name: "center", kind: kindLocation},
	}},
	"ADD_PATTERN": {tag: "ADD_PATTERN", fields: []fieldSpec{
		{name: "kind", kind: kindText, required: true},
		{name: "count", kind: kindCount, required: true, positive: true},
		{name: "spacing", kind: kindDimension},
		{name: "direction", kind: kindText, def: "x"},
		{name: "radius", kind: kindDimension},
		{name: "total_angle", kind: kindNumber},
		{name: "closed", kind: kindBool},
	}},
	"ADD_MATE": {tag: "ADD_MATE", fields: []fieldSpec{
		{name: "mate_type", kind: kindText, required: true},
		{name: "component1", kind: kindReference, required: true},
		{name: "face1", kind: kindText, required: true},
		{name: "component2", kind: kindReference, required: true},
		{name: "face2", kind: kindText, required: true},
		{name: "alignment", kind: kindText, def: "aligned"},
		{name: "value", kind: kindDimension},
	}},
	"INSERT_COMPONENT": {tag: "INSERT_COMPONENT", fields: []fieldSpec{
		{name: "part", kind: kindReference, required: true},
		{name: "name", kind: kindText},
		{name: "at", kind: kindLocation},
	}},
	"SAVE": {tag: "SAVE"},
	"EXPORT": {tag: "EXPORT", fields: []fieldSpec{
		{name: "format", kind: kindText, def: "step"},
	}},
	"UNDO":  {tag: "UNDO"},
	"REDO":  {tag: "REDO"},
	"CLOSE": {tag: "CLOSE"},
}

// KnownIntents lists the supported intent tags in sorted order.
func KnownIntents() []string {
	tags := make([]string, 0, len(intentTable))
	for tag := range intentTable {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
