package broker

import (
	"context"
	"fmt"

	"cadpilot/internal/command"
	"cadpilot/internal/constraint"
	"cadpilot/internal/geom"
	"cadpilot/internal/model"
)

// decompose maps a command to its ordered sub-actions. The decomposition
// depends only on the command's resolved parameters, never on whether the
// result will be dry-run or executed.
func (b *Broker) decompose(cmd command.Command, confidence float64) ([]step, error) {
	switch c := cmd.(type) {
	case command.CreatePart:
		return b.decomposeCreatePart(c, confidence), nil
	case command.CreateBox:
		return b.decomposeCreateBox(c, confidence)
	case command.CreateCylinder:
		return b.decomposeCreateCylinder(c, confidence)
	case command.AddFillet:
		return b.decomposeFillet(c, confidence)
	case command.AddChamfer:
		return b.decomposeChamfer(c, confidence)
	case command.AddHole:
		return b.decomposeHole(c, confidence)
	case command.AddPattern:
		return b.decomposePattern(c, confidence)
	case command.AddMate:
		return b.decomposeMate(c, confidence)
	case command.InsertComponent:
		return b.decomposeInsert(c, confidence)
	case command.SaveDocument:
		return b.decomposeSave(c, confidence)
	case command.ExportDocument:
		return b.decomposeExport(c, confidence)
	case command.Undo:
		return b.decomposeUndo(c, confidence)
	case command.Redo:
		return b.decomposeRedo(c, confidence)
	case command.CloseDocument:
		return b.decomposeClose(c, confidence)
	}
	return nil, fmt.Errorf("broker: unhandled command %T", cmd)
}

func (b *Broker) part(id string) (*model.PartDocument, error) {
	doc, ok := b.registry.Part(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownDocument, id)
	}
	return doc, nil
}

func (b *Broker) assembly(id string) (*model.AssemblyDocument, error) {
	doc, ok := b.registry.Assembly(id)
	if !ok {
		return nil, fmt.Errorf("broker: document %s is not an open assembly", id)
	}
	return doc, nil
}

func (b *Broker) decomposeCreatePart(c command.CreatePart, conf float64) []step {
	return []step{{
		action: SubAction{
			Type:       "create-part",
			Target:     c.Name,
			Summary:    fmt.Sprintf("new part document, units %s", c.Unit),
			Confidence: conf,
		},
		run: func(context.Context) error {
			b.registry.AddPart(model.NewPartDocument(c.Name, c.Unit))
			return nil
		},
	}}
}

func (b *Broker) decomposeCreateBox(c command.CreateBox, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	w := c.Width.BaseMeters()
	l := c.Length.BaseMeters()
	h := c.Height.BaseMeters()
	profile := model.NewSketchProfile(c.Plane)

	return []step{
		{
			action: SubAction{
				Type:       "select-plane",
				Target:     c.Plane.String(),
				Summary:    fmt.Sprintf("sketch plane %s", c.Plane),
				Confidence: conf,
				Call:       fmt.Sprintf("select_plane(%s)", c.Plane),
			},
			run: func(ctx context.Context) error {
				return b.engine.SelectPlane(ctx, c.Plane.String())
			},
		},
		{
			action: SubAction{
				Type:       "start-sketch",
				Target:     doc.Name,
				Summary:    "open a new sketch",
				Confidence: conf,
				Call:       "start_sketch()",
			},
			run: func(ctx context.Context) error {
				if err := b.engine.StartSketch(ctx); err != nil {
					return err
				}
				return doc.AddProfile(profile)
			},
		},
		{
			action: SubAction{
				Type:       "draw-rectangle",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("%s x %s (%g x %g m)", c.Width, c.Length, w, l),
				Confidence: conf,
				Call:       fmt.Sprintf("draw_rectangle(x=0, y=0, w=%g, l=%g)", w, l),
			},
			run: func(ctx context.Context) error {
				if err := b.engine.DrawRectangle(ctx, 0, 0, w, l); err != nil {
					return err
				}
				profile.Add(model.Rectangle{Width: w, Length: l})
				return nil
			},
		},
		{
			action: SubAction{
				Type:       "extrude",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("depth %s (%g m)", c.Height, h),
				Confidence: conf,
				Call:       fmt.Sprintf("extrude(depth=%g)", h),
			},
			run: func(ctx context.Context) error {
				if err := b.engine.Extrude(ctx, h); err != nil {
					return err
				}
				if err := doc.AddFeature(&model.Extrusion{Profile: profile, Depth: h}); err != nil {
					return err
				}
				doc.BoundingHint = min(w, min(l, h))
				return nil
			},
		},
	}, nil
}

func (b *Broker) decomposeCreateCylinder(c command.CreateCylinder, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	r := c.Diameter.BaseMeters() / 2
	h := c.Height.BaseMeters()
	profile := model.NewSketchProfile(c.Plane)

	return []step{
		{
			action: SubAction{
				Type:       "select-plane",
				Target:     c.Plane.String(),
				Summary:    fmt.Sprintf("sketch plane %s", c.Plane),
				Confidence: conf,
				Call:       fmt.Sprintf("select_plane(%s)", c.Plane),
			},
			run: func(ctx context.Context) error {
				return b.engine.SelectPlane(ctx, c.Plane.String())
			},
		},
		{
			action: SubAction{
				Type:       "start-sketch",
				Target:     doc.Name,
				Summary:    "open a new sketch",
				Confidence: conf,
				Call:       "start_sketch()",
			},
			run: func(ctx context.Context) error {
				if err := b.engine.StartSketch(ctx); err != nil {
					return err
				}
				return doc.AddProfile(profile)
			},
		},
		{
			action: SubAction{
				Type:       "draw-circle",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("diameter %s (r=%g m)", c.Diameter, r),
				Confidence: conf,
				Call:       fmt.Sprintf("draw_circle(x=0, y=0, r=%g)", r),
			},
			run: func(ctx context.Context) error {
				if err := b.engine.DrawCircle(ctx, 0, 0, r); err != nil {
					return err
				}
				profile.Add(model.Circle{Radius: r})
				return nil
			},
		},
		{
			action: SubAction{
				Type:       "extrude",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("depth %s (%g m)", c.Height, h),
				Confidence: conf,
				Call:       fmt.Sprintf("extrude(depth=%g)", h),
			},
			run: func(ctx context.Context) error {
				if err := b.engine.Extrude(ctx, h); err != nil {
					return err
				}
				if err := doc.AddFeature(&model.Extrusion{Profile: profile, Depth: h}); err != nil {
					return err
				}
				doc.BoundingHint = min(2*r, h)
				return nil
			},
		},
	}, nil
}

func (b *Broker) decomposeFillet(c command.AddFillet, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	r := c.Radius.BaseMeters()
	return []step{{
		action: SubAction{
			Type:       "fillet",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("radius %s on %s edges", c.Radius, c.EdgeSelector),
			Confidence: conf,
			Call:       fmt.Sprintf("fillet(r=%g, edges=%s)", r, c.EdgeSelector),
		},
		run: func(ctx context.Context) error {
			if err := b.engine.Fillet(ctx, r, c.EdgeSelector); err != nil {
				return err
			}
			return doc.AddFeature(&model.Fillet{Radius: r, EdgeSelector: c.EdgeSelector})
		},
	}}, nil
}

func (b *Broker) decomposeChamfer(c command.AddChamfer, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	d := c.Distance.BaseMeters()
	return []step{{
		action: SubAction{
			Type:       "chamfer",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("distance %s on %s edges", c.Distance, c.EdgeSelector),
			Confidence: conf,
			Call:       fmt.Sprintf("chamfer(d=%g, edges=%s)", d, c.EdgeSelector),
		},
		run: func(ctx context.Context) error {
			if err := b.engine.Chamfer(ctx, d, c.EdgeSelector); err != nil {
				return err
			}
			return doc.AddFeature(&model.Chamfer{Distance: d, EdgeSelector: c.EdgeSelector})
		},
	}}, nil
}

func (b *Broker) decomposeHole(c command.AddHole, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	d := c.Diameter.BaseMeters()
	depth := c.Depth.BaseMeters()
	return []step{{
		action: SubAction{
			Type:       "hole",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("diameter %s, depth %s", c.Diameter, c.Depth),
			Confidence: conf,
			Call:       fmt.Sprintf("hole(x=%g, y=%g, d=%g, depth=%g)", c.Center.X, c.Center.Y, d, depth),
		},
		run: func(ctx context.Context) error {
			if err := b.engine.Hole(ctx, c.Center.X, c.Center.Y, d, depth); err != nil {
				return err
			}
			return doc.AddFeature(&model.Hole{Center: c.Center, Diameter: d, Depth: depth})
		},
	}}, nil
}

// decomposePattern emits one sub-action per instance pose. When the source
// feature is a hole the instance replays the hole at the offset location;
// other sources are replicated model-side only, since the capability
// interface has no generic pattern op.
func (b *Broker) decomposePattern(c command.AddPattern, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}

	var poses func(func(geom.Pose) bool)
	if c.Kind == model.PatternLinear {
		seq, err := constraint.Linear(c.Count, c.Spacing, c.Direction)
		if err != nil {
			return nil, err
		}
		poses = seq
	} else {
		seq, err := constraint.Circular(c.Count, c.Radius, c.TotalAngleDeg, c.Closed)
		if err != nil {
			return nil, err
		}
		poses = seq
	}

	source := doc.LastFeature()
	sourceHole, _ := source.(*model.Hole)
	pattern := &model.Pattern{Kind: c.Kind, Count: c.Count}

	var steps []step
	i := 0
	for pose := range poses {
		idx := i
		var call string
		if sourceHole != nil {
			call = fmt.Sprintf("hole(x=%g, y=%g, d=%g, depth=%g)",
				sourceHole.Center.X+pose.Position.X, sourceHole.Center.Y+pose.Position.Y,
				sourceHole.Diameter, sourceHole.Depth)
		}
		steps = append(steps, step{
			action: SubAction{
				Type:       "pattern-instance",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("instance %d at (%g, %g, %g)", idx+1, pose.Position.X, pose.Position.Y, pose.Position.Z),
				Confidence: conf,
				Call:       call,
			},
			run: func(ctx context.Context) error {
				if sourceHole != nil {
					err := b.engine.Hole(ctx,
						sourceHole.Center.X+pose.Position.X, sourceHole.Center.Y+pose.Position.Y,
						sourceHole.Diameter, sourceHole.Depth)
					if err != nil {
						return err
					}
				}
				if idx == 0 {
					if err := doc.AddFeature(pattern); err != nil {
						return err
					}
				}
				pattern.Instances = append(pattern.Instances, pose)
				return nil
			},
		})
		i++
	}
	return steps, nil
}

func (b *Broker) decomposeMate(c command.AddMate, conf float64) ([]step, error) {
	doc, err := b.assembly(c.DocumentID)
	if err != nil {
		return nil, err
	}
	// Validate at preview time with the exact semantics execution will use.
	if _, err := constraint.ValidateMate(doc, c.Type, c.Ref1, c.Ref2, c.Alignment, c.Value); err != nil {
		return nil, err
	}
	var value float64
	summary := fmt.Sprintf("%s %s to %s (%s)", c.Type, c.Ref1, c.Ref2, c.Alignment)
	if c.Value != nil {
		if c.Type == model.MateAngle {
			value = c.Value.Raw()
		} else {
			value = c.Value.BaseMeters()
		}
		summary = fmt.Sprintf("%s, value %s", summary, c.Value)
	}
	return []step{{
		action: SubAction{
			Type:       "add-mate",
			Target:     doc.Name,
			Summary:    summary,
			Confidence: conf,
			Call:       fmt.Sprintf("add_mate(type=%s, ref1=%s, ref2=%s, value=%g)", c.Type, c.Ref1, c.Ref2, value),
		},
		run: func(ctx context.Context) error {
			if _, err := constraint.AddMate(doc, c.Type, c.Ref1, c.Ref2, c.Alignment, c.Value); err != nil {
				return err
			}
			return b.engine.AddMate(ctx, c.Type.String(), c.Ref1.String(), c.Ref2.String(), value)
		},
	}}, nil
}

func (b *Broker) decomposeInsert(c command.InsertComponent, conf float64) ([]step, error) {
	doc, err := b.assembly(c.DocumentID)
	if err != nil {
		return nil, err
	}
	return []step{{
		action: SubAction{
			Type:       "insert-component",
			Target:     c.ComponentName,
			Summary:    fmt.Sprintf("part %s at (%g, %g, %g)", c.PartName, c.At.X, c.At.Y, c.At.Z),
			Confidence: conf,
			Call:       fmt.Sprintf("insert_component(part=%s, name=%s)", c.PartName, c.ComponentName),
		},
		run: func(ctx context.Context) error {
			if err := b.engine.InsertComponent(ctx, c.PartName, c.ComponentName, c.At); err != nil {
				return err
			}
			return doc.Insert(&model.AssemblyComponent{
				Name:   c.ComponentName,
				PartID: c.PartName,
				Pose:   geom.Pose{Position: c.At},
			})
		},
	}}, nil
}

func (b *Broker) decomposeSave(c command.SaveDocument, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	return []step{{
		action: SubAction{
			Type:       "save",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("persist %d features", len(doc.Features)),
			Confidence: conf,
			Call:       fmt.Sprintf("save(doc=%s)", doc.ID),
		},
		run: func(ctx context.Context) error {
			if err := b.engine.Save(ctx, doc.ID); err != nil {
				return err
			}
			if b.snapshots != nil {
				if err := b.snapshots.SaveSnapshot(ctx, doc); err != nil {
					return err
				}
			}
			doc.Dirty = false
			return nil
		},
	}}, nil
}

func (b *Broker) decomposeExport(c command.ExportDocument, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	var exported []byte
	steps := []step{{
		action: SubAction{
			Type:       "export",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("render as %s", c.Format),
			Confidence: conf,
			Call:       fmt.Sprintf("export(doc=%s, format=%s)", doc.ID, c.Format),
		},
		run: func(ctx context.Context) error {
			data, err := b.engine.Export(ctx, doc.ID, c.Format)
			if err != nil {
				return err
			}
			exported = data
			return nil
		},
	}}
	if b.artifacts != nil {
		steps = append(steps, step{
			action: SubAction{
				Type:       "store-artifact",
				Target:     doc.Name,
				Summary:    fmt.Sprintf("upload %s.%s", doc.Name, c.Format),
				Confidence: conf,
			},
			run: func(ctx context.Context) error {
				return b.artifacts.Put(ctx, doc.ID, fmt.Sprintf("%s.%s", doc.Name, c.Format), exported)
			},
		})
	}
	return steps, nil
}

func (b *Broker) decomposeUndo(c command.Undo, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	target := "nothing to undo"
	if f := doc.LastFeature(); f != nil {
		target = f.Describe()
	}
	return []step{{
		action: SubAction{
			Type:       "undo",
			Target:     doc.Name,
			Summary:    fmt.Sprintf("revert %s", target),
			Confidence: conf,
		},
		run: func(context.Context) error {
			_, err := doc.Undo()
			return err
		},
	}}, nil
}

func (b *Broker) decomposeRedo(c command.Redo, conf float64) ([]step, error) {
	doc, err := b.part(c.DocumentID)
	if err != nil {
		return nil, err
	}
	return []step{{
		action: SubAction{
			Type:       "redo",
			Target:     doc.Name,
			Summary:    "re-apply the last undone feature",
			Confidence: conf,
		},
		run: func(context.Context) error {
			_, err := doc.Redo()
			return err
		},
	}}, nil
}

func (b *Broker) decomposeClose(c command.CloseDocument, conf float64) ([]step, error) {
	name := c.DocumentID
	if doc, ok := b.registry.Part(c.DocumentID); ok {
		name = doc.Name
	} else if doc, ok := b.registry.Assembly(c.DocumentID); ok {
		name = doc.Name
	} else {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownDocument, c.DocumentID)
	}
	return []step{{
		action: SubAction{
			Type:       "close",
			Target:     name,
			Summary:    "close the document",
			Confidence: conf,
		},
		run: func(context.Context) error {
			if err := b.registry.ClosePart(c.DocumentID); err == nil {
				return nil
			}
			return b.registry.CloseAssembly(c.DocumentID)
		},
	}}, nil
}
