package intent

import (
	"fmt"
	"strings"

	"cadpilot/internal/command"
	"cadpilot/internal/geom"
	"cadpilot/internal/model"
	"cadpilot/internal/units"
)

// Lookup is the read-only view of the domain model the resolver uses to
// validate reference fields. It never mutates.
type Lookup interface {
	ActiveID() string
	HasPartNamed(name string) bool
	HasComponent(name string) bool
	SmallestEdge(documentID string) (float64, bool)
}

// Resolver turns untrusted schemas into validated commands.
type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// fields holds decoded, unit-resolved parameter values for one schema.
type fields struct {
	dims   map[string]units.Dimension
	locs   map[string]geom.Point3D
	texts  map[string]string
	counts map[string]int
	nums   map[string]float64
	bools  map[string]bool
}

// Resolve maps one schema to exactly one command. The three outcomes are
// mutually exclusive: a command, a clarification to send back to the user,
// or a typed resolution error. The resolver reads the domain model but
// never mutates it.
func (r *Resolver) Resolve(schema CommandSchema, sess *Session) (command.Command, *Clarification, error) {
	tag := strings.ToUpper(strings.TrimSpace(schema.Intent))
	spec, ok := intentTable[tag]
	if !ok {
		return nil, nil, unsupported(schema.Intent)
	}

	if schema.NeedsClarification {
		q := strings.TrimSpace(schema.ClarificationQuestion)
		if q == "" {
			q = fmt.Sprintf("Could you clarify what you want for %s?", tag)
		}
		return nil, &Clarification{Question: q}, nil
	}

	vals, missing, err := r.decodeFields(spec, schema, sess)
	if err != nil {
		return nil, nil, err
	}
	if len(missing) > 0 {
		return nil, &Clarification{
			Question:      missingQuestion(tag, missing),
			MissingFields: missing,
		}, nil
	}

	// Low confidence never silently guesses: escalate unless this exact
	// input text was confirmed before.
	if schema.Confidence < sess.Threshold && !sess.IsConfirmed(schema.Message) {
		return nil, &Clarification{
			Question: fmt.Sprintf("I'm not sure I understood. Did you mean %s? Please confirm or rephrase.", tag),
		}, nil
	}

	return r.build(tag, vals, sess)
}

func (r *Resolver) decodeFields(spec intentSpec, schema CommandSchema, sess *Session) (*fields, []string, error) {
	vals := &fields{
		dims:   make(map[string]units.Dimension),
		locs:   make(map[string]geom.Point3D),
		texts:  make(map[string]string),
		counts: make(map[string]int),
		nums:   make(map[string]float64),
		bools:  make(map[string]bool),
	}
	var missing []string

	for _, f := range spec.fields {
		raw, present := schema.Parameters[f.name]
		if !present {
			if f.required {
				missing = append(missing, f.name)
			} else if f.def != "" {
				vals.texts[f.name] = f.def
			}
			continue
		}
		switch f.kind {
		case kindDimension:
			dv, ok := decodeDimension(raw)
			if !ok {
				missing = append(missing, f.name)
				continue
			}
			dim, err := parseDimension(dv, sess.ContextUnit)
			if err != nil {
				// Unparsable counts as missing: the user gets a follow-up
				// question, not a hard failure.
				missing = append(missing, f.name)
				continue
			}
			if f.positive && dim.BaseMeters() <= 0 {
				return nil, nil, outOfRange(f.name, fmt.Sprintf("%s must be > 0, got %s", f.name, dim))
			}
			vals.dims[f.name] = dim
		case kindLocation:
			lv, ok := decodeLocation(raw)
			if !ok {
				missing = append(missing, f.name)
				continue
			}
			pt, err := parseLocation(lv, sess.ContextUnit)
			if err != nil {
				missing = append(missing, f.name)
				continue
			}
			vals.locs[f.name] = pt
		case kindReference, kindText:
			s, ok := decodeString(raw)
			if !ok || s == "" {
				if f.required {
					missing = append(missing, f.name)
				} else if f.def != "" {
					vals.texts[f.name] = f.def
				}
				continue
			}
			vals.texts[f.name] = s
		case kindCount:
			n, ok := decodeNumber(raw)
			if !ok {
				missing = append(missing, f.name)
				continue
			}
			c := int(n)
			if f.positive && c < 1 {
				return nil, nil, outOfRange(f.name, fmt.Sprintf("%s must be >= 1, got %d", f.name, c))
			}
			vals.counts[f.name] = c
		case kindNumber:
			n, ok := decodeNumber(raw)
			if !ok {
				missing = append(missing, f.name)
				continue
			}
			vals.nums[f.name] = n
		case kindBool:
			s, _ := decodeString(raw)
			vals.bools[f.name] = strings.EqualFold(s, "true")
		}
	}
	return vals, missing, nil
}

// build constructs the concrete command variant for an intent whose fields
// all decoded. Conditional requirements surface as clarifications here.
func (r *Resolver) build(tag string, vals *fields, sess *Session) (command.Command, *Clarification, error) {
	switch tag {
	case "CREATE_PART":
		unit := sess.ContextUnit
		if tok := vals.texts["units"]; tok != "" {
			u, err := units.ParseUnit(tok)
			if err != nil {
				return nil, nil, badParam("units", fmt.Sprintf("unknown unit system %q", tok))
			}
			unit = u
		}
		return command.CreatePart{Name: vals.texts["name"], Unit: unit}, nil, nil

	case "CREATE_BOX":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.CreateBox{
			DocumentID: docID,
			Plane:      geom.ParsePlane(vals.texts["plane"]),
			Width:      vals.dims["width"],
			Length:     vals.dims["length"],
			Height:     vals.dims["height"],
		}, nil, nil

	case "CREATE_CYLINDER":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.CreateCylinder{
			DocumentID: docID,
			Plane:      geom.ParsePlane(vals.texts["plane"]),
			Diameter:   vals.dims["diameter"],
			Height:     vals.dims["height"],
		}, nil, nil

	case "ADD_FILLET":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		radius := vals.dims["radius"]
		if edge, known := r.lookup.SmallestEdge(docID); known && radius.BaseMeters() >= edge/2 {
			return nil, nil, outOfRange("radius",
				fmt.Sprintf("fillet radius %s exceeds half the smallest edge (%gm)", radius, edge))
		}
		return command.AddFillet{
			DocumentID:   docID,
			Radius:       radius,
			EdgeSelector: vals.texts["edges"],
		}, nil, nil

	case "ADD_CHAMFER":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.AddChamfer{
			DocumentID:   docID,
			Distance:     vals.dims["distance"],
			EdgeSelector: vals.texts["edges"],
		}, nil, nil

	case "ADD_HOLE":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.AddHole{
			DocumentID: docID,
			Center:     vals.locs["center"],
			Diameter:   vals.dims["diameter"],
			Depth:      vals.dims["depth"],
		}, nil, nil

	case "ADD_PATTERN":
		return r.buildPattern(vals)

	case "ADD_MATE":
		return r.buildMate(vals)

	case "INSERT_COMPONENT":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		part := vals.texts["part"]
		if !r.lookup.HasPartNamed(part) {
			return nil, &Clarification{
				Question:      fmt.Sprintf("I can't find a part named %q. Which part should I insert?", part),
				MissingFields: []string{"part"},
			}, nil
		}
		name := vals.texts["name"]
		if name == "" {
			name = part
		}
		return command.InsertComponent{
			DocumentID:    docID,
			PartName:      part,
			ComponentName: name,
			At:            vals.locs["at"],
		}, nil, nil

	case "SAVE":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.SaveDocument{DocumentID: docID}, nil, nil

	case "EXPORT":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.ExportDocument{DocumentID: docID, Format: strings.ToLower(vals.texts["format"])}, nil, nil

	case "UNDO":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.Undo{DocumentID: docID}, nil, nil

	case "REDO":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.Redo{DocumentID: docID}, nil, nil

	case "CLOSE":
		docID, clar := r.requireActive(tag)
		if clar != nil {
			return nil, clar, nil
		}
		return command.CloseDocument{DocumentID: docID}, nil, nil
	}
	return nil, nil, unsupported(tag)
}

func (r *Resolver) buildPattern(vals *fields) (command.Command, *Clarification, error) {
	docID, clar := r.requireActive("ADD_PATTERN")
	if clar != nil {
		return nil, clar, nil
	}
	count := vals.counts["count"]
	switch strings.ToLower(vals.texts["kind"]) {
	case "linear":
		spacing, ok := vals.dims["spacing"]
		if !ok {
			return nil, &Clarification{
				Question:      "What spacing should the linear pattern use?",
				MissingFields: []string{"spacing"},
			}, nil
		}
		dir, err := parseDirection(vals.texts["direction"])
		if err != nil {
			return nil, nil, badParam("direction", err.Error())
		}
		return command.AddPattern{
			DocumentID: docID,
			Kind:       model.PatternLinear,
			Count:      count,
			Spacing:    spacing,
			Direction:  dir,
		}, nil, nil
	case "circular":
		radius, ok := vals.dims["radius"]
		if !ok {
			return nil, &Clarification{
				Question:      "What radius should the circular pattern use?",
				MissingFields: []string{"radius"},
			}, nil
		}
		total := vals.nums["total_angle"]
		return command.AddPattern{
			DocumentID:    docID,
			Kind:          model.PatternCircular,
			Count:         count,
			Radius:        radius,
			TotalAngleDeg: total,
			Closed:        vals.bools["closed"],
		}, nil, nil
	default:
		return nil, nil, badParam("kind", fmt.Sprintf("pattern kind must be linear or circular, got %q", vals.texts["kind"]))
	}
}

func (r *Resolver) buildMate(vals *fields) (command.Command, *Clarification, error) {
	docID, clar := r.requireActive("ADD_MATE")
	if clar != nil {
		return nil, clar, nil
	}
	typ, ok := model.ParseMateType(vals.texts["mate_type"])
	if !ok {
		return nil, nil, badParam("mate_type", fmt.Sprintf("unknown mate type %q", vals.texts["mate_type"]))
	}
	for _, field := range []string{"component1", "component2"} {
		if name := vals.texts[field]; !r.lookup.HasComponent(name) {
			return nil, &Clarification{
				Question:      fmt.Sprintf("I can't find a component named %q in the assembly. Which component did you mean?", name),
				MissingFields: []string{field},
			}, nil
		}
	}
	alignment := model.AlignAligned
	if a := strings.ToLower(vals.texts["alignment"]); a == "antialigned" || a == "anti-aligned" || a == "anti_aligned" {
		alignment = model.AlignAntiAligned
	}
	var value *units.Dimension
	if v, ok := vals.dims["value"]; ok {
		value = &v
	}
	return command.AddMate{
		DocumentID: docID,
		Type:       typ,
		Ref1:       model.MateReference{Component: vals.texts["component1"], Face: vals.texts["face1"]},
		Ref2:       model.MateReference{Component: vals.texts["component2"], Face: vals.texts["face2"]},
		Alignment:  alignment,
		Value:      value,
	}, nil, nil
}

func (r *Resolver) requireActive(tag string) (string, *Clarification) {
	id := r.lookup.ActiveID()
	if id == "" {
		return "", &Clarification{
			Question: fmt.Sprintf("There is no open document for %s. Should I create a new part first?", tag),
		}
	}
	return id, nil
}

func parseDimension(dv DimensionValue, contextUnit units.Unit) (units.Dimension, error) {
	if strings.TrimSpace(dv.Original) != "" {
		return units.Parse(dv.Original, contextUnit)
	}
	if strings.TrimSpace(dv.Unit) == "" {
		return units.New(dv.Value, contextUnit), nil
	}
	u, err := units.ParseUnit(dv.Unit)
	if err != nil {
		return units.Dimension{}, err
	}
	return units.New(dv.Value, u), nil
}

func parseLocation(lv LocationValue, contextUnit units.Unit) (geom.Point3D, error) {
	x, err := parseDimension(lv.X, contextUnit)
	if err != nil {
		return geom.Point3D{}, err
	}
	y, err := parseDimension(lv.Y, contextUnit)
	if err != nil {
		return geom.Point3D{}, err
	}
	z, err := parseDimension(lv.Z, contextUnit)
	if err != nil {
		return geom.Point3D{}, err
	}
	return geom.Point3D{X: x.BaseMeters(), Y: y.BaseMeters(), Z: z.BaseMeters()}, nil
}

func parseDirection(s string) (geom.Vector3D, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "+x", "":
		return geom.Vector3D{X: 1}, nil
	case "-x":
		return geom.Vector3D{X: -1}, nil
	case "y", "+y":
		return geom.Vector3D{Y: 1}, nil
	case "-y":
		return geom.Vector3D{Y: -1}, nil
	case "z", "+z":
		return geom.Vector3D{Z: 1}, nil
	case "-z":
		return geom.Vector3D{Z: -1}, nil
	}
	return geom.Vector3D{}, fmt.Errorf("unknown direction %q", s)
}

func missingQuestion(tag string, missing []string) string {
	if len(missing) == 1 {
		return fmt.Sprintf("What %s should I use for %s?", missing[0], tag)
	}
	return fmt.Sprintf("I still need the %s for %s. What should they be?",
		strings.Join(missing, ", "), tag)
}
