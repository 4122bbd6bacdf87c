package hcladapter

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/fablec/internal/ast"
	"github.com/vk/fablec/internal/diag"
)

var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "imports"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "world"},
		{Type: "type", LabelNames: []string{"name"}},
		{Type: "entity", LabelNames: []string{"name"}},
		{Type: "location", LabelNames: []string{"heading"}},
		{Type: "section", LabelNames: []string{"name"}},
		{Type: "action", LabelNames: []string{"name"}},
		{Type: "rule", LabelNames: []string{"name"}},
		{Type: "sequence", LabelNames: []string{"name"}},
	},
}

// decodeFile walks one parsed body and fills the syntax tree. Declaration
// order within the file is preserved exactly as written; it is load-bearing
// for output determinism downstream.
func decodeFile(body hcl.Body, file *ast.File, diags *diag.List) {
	content, hclDiags := body.Content(rootSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return
	}

	if paths, sp, ok := attrStringList(content.Attributes, "imports", diags); ok {
		for _, p := range paths {
			file.Imports = append(file.Imports, ast.Import{Path: p, Span: sp})
		}
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "world":
			decodeWorld(block, file, diags)
		case "type":
			file.Types = append(file.Types, decodeType(block, diags))
		case "entity":
			file.Entities = append(file.Entities, decodeEntity(block, diags))
		case "location":
			file.Locations = append(file.Locations, decodeLocation(block, diags))
		case "section":
			file.Sections = append(file.Sections, decodeSection(block, diags))
		case "action":
			file.Actions = append(file.Actions, decodeAction(block, diags))
		case "rule":
			file.Rules = append(file.Rules, decodeRule(block, diags))
		case "sequence":
			file.Sequences = append(file.Sequences, decodeSequence(block, diags))
		}
	}
}

func decodeWorld(block *hcl.Block, file *ast.File, diags *diag.List) {
	sp := spanOf(block.DefRange)
	attrs, hclDiags := block.Body.JustAttributes()
	appendHCLDiags(diags, hclDiags)

	w := &ast.World{Span: sp}
	w.Title, _ = requireString(attrs, "title", sp, "world block", diags)
	w.Author, _, _ = attrString(attrs, "author", diags)
	w.Version, _, _ = attrString(attrs, "version", diags)
	if _, ok := attrs["start"]; !ok {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "world block requires attribute %q", "start")
	} else {
		w.Start = attrRef(attrs, "start", diags)
	}
	w.Entry = attrRef(attrs, "entry", diags)

	if file.World != nil {
		// Two world blocks in one file; cross-file duplicates are the
		// linker's to report.
		diags.Add(diag.CodeDuplicateWorld, posOf(sp), "duplicate world block; the first was at %s:%d", file.World.Span.File, file.World.Span.Line)
		return
	}
	file.World = w
}

var typeSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "capabilities"}},
	Blocks:     []hcl.BlockHeaderSchema{{Type: "property", LabelNames: []string{"name"}}},
}

func decodeType(block *hcl.Block, diags *diag.List) *ast.TypeDecl {
	t := &ast.TypeDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(typeSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return t
	}
	t.Capabilities, _, _ = attrStringList(content.Attributes, "capabilities", diags)
	for _, pb := range content.Blocks {
		t.Properties = append(t.Properties, decodeProperty(pb, diags))
	}
	return t
}

func decodeProperty(block *hcl.Block, diags *diag.List) *ast.PropertyDecl {
	sp := spanOf(block.DefRange)
	attrs, hclDiags := block.Body.JustAttributes()
	appendHCLDiags(diags, hclDiags)

	p := &ast.PropertyDecl{Name: block.Labels[0], Span: sp}
	p.Type, _ = requireString(attrs, "type", sp, "property block", diags)
	if v, _, ok := attrValue(attrs, "default", diags); ok {
		p.Default = v
	}
	if v, _, ok := attrValue(attrs, "values", diags); ok && v.CanIterateElements() {
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			p.Values = append(p.Values, ev)
		}
	}
	p.Min, _ = attrInt64(attrs, "min", diags)
	p.Max, _ = attrInt64(attrs, "max", diags)
	return p
}

var entitySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"}, {Name: "location"}, {Name: "hidden"},
	},
	Blocks: []hcl.BlockHeaderSchema{{Type: "properties"}},
}

func decodeEntity(block *hcl.Block, diags *diag.List) *ast.EntityDecl {
	e := &ast.EntityDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(entitySchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return e
	}
	e.Type = attrRef(content.Attributes, "type", diags)
	e.Location = attrRef(content.Attributes, "location", diags)
	e.Hidden, _ = attrBool(content.Attributes, "hidden", diags)

	for _, pb := range content.Blocks {
		attrs, hclDiags := pb.Body.JustAttributes()
		appendHCLDiags(diags, hclDiags)
		for _, attr := range sortedAttrs(attrs) {
			v, hclDiags := attr.Expr.Value(nil)
			if hclDiags.HasErrors() {
				appendHCLDiags(diags, hclDiags)
				continue
			}
			e.Props = append(e.Props, ast.PropertyValue{
				Name:  attr.Name,
				Value: v,
				Span:  spanOf(attr.Range),
			})
		}
	}
	return e
}

var locationSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "description"}},
	Blocks:     []hcl.BlockHeaderSchema{{Type: "exit", LabelNames: []string{"name"}}},
}

func decodeLocation(block *hcl.Block, diags *diag.List) *ast.LocationDecl {
	l := &ast.LocationDecl{Heading: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(locationSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return l
	}
	l.Description, _, _ = attrString(content.Attributes, "description", diags)
	for _, eb := range content.Blocks {
		l.Exits = append(l.Exits, decodeExit(eb, diags))
	}
	return l
}

func decodeExit(block *hcl.Block, diags *diag.List) *ast.ExitDecl {
	sp := spanOf(block.DefRange)
	attrs, hclDiags := block.Body.JustAttributes()
	appendHCLDiags(diags, hclDiags)

	e := &ast.ExitDecl{Name: block.Labels[0], Span: sp}
	if _, ok := attrs["to"]; !ok {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "exit block requires attribute %q", "to")
	} else {
		e.To = attrRef(attrs, "to", diags)
	}
	// Exit guards are singular: zero or one condition, never a list.
	e.When = decodeSingularCondition(attrs, "when", diags)
	return e
}

var sectionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "location"}, {Name: "text"}, {Name: "next"},
	},
	Blocks: []hcl.BlockHeaderSchema{{Type: "choice", LabelNames: []string{"label"}}},
}

func decodeSection(block *hcl.Block, diags *diag.List) *ast.SectionDecl {
	s := &ast.SectionDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(sectionSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return s
	}
	s.Location = attrRef(content.Attributes, "location", diags)
	s.Text, _, _ = attrStringList(content.Attributes, "text", diags)
	if raw, sp, ok := attrString(content.Attributes, "next", diags); ok {
		s.Next = parseJump(raw, sp)
	}
	for _, cb := range content.Blocks {
		s.Choices = append(s.Choices, decodeChoice(cb, diags))
	}
	return s
}

var choiceSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "when"}, {Name: "when_any"}, {Name: "goto"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "choice", LabelNames: []string{"label"}},
		{Type: "set"}, {Type: "move"}, {Type: "unhide"}, {Type: "remove"}, {Type: "create"},
	},
}

func decodeChoice(block *hcl.Block, diags *diag.List) *ast.ChoiceDecl {
	c := &ast.ChoiceDecl{Label: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(choiceSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return c
	}
	c.When = decodeConditionSet(content.Attributes, diags)
	if raw, sp, ok := attrString(content.Attributes, "goto", diags); ok {
		c.Goto = parseJump(raw, sp)
	}
	for _, b := range content.Blocks {
		if b.Type == "choice" {
			c.Choices = append(c.Choices, decodeChoice(b, diags))
			continue
		}
		if eff := decodeEffect(b, diags); eff != nil {
			c.Effects = append(c.Effects, eff)
		}
	}
	return c
}

var actionSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "entity"}, {Name: "entity_type"}, {Name: "when"}, {Name: "when_any"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "set"}, {Type: "move"}, {Type: "unhide"}, {Type: "remove"}, {Type: "create"},
	},
}

func decodeAction(block *hcl.Block, diags *diag.List) *ast.ActionDecl {
	a := &ast.ActionDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(actionSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return a
	}
	a.Entity = attrRef(content.Attributes, "entity", diags)
	a.EntityType = attrRef(content.Attributes, "entity_type", diags)
	a.When = decodeConditionSet(content.Attributes, diags)
	for _, b := range content.Blocks {
		if eff := decodeEffect(b, diags); eff != nil {
			a.Effects = append(a.Effects, eff)
		}
	}
	return a
}

var ruleSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "phase"}},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "select"},
		{Type: "set"}, {Type: "move"}, {Type: "unhide"}, {Type: "remove"}, {Type: "create"},
	},
}

var selectSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "from_type"}, {Name: "when"}, {Name: "when_any"},
	},
}

func decodeRule(block *hcl.Block, diags *diag.List) *ast.RuleDecl {
	r := &ast.RuleDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(ruleSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return r
	}
	r.Phase = attrRef(content.Attributes, "phase", diags)
	for _, b := range content.Blocks {
		if b.Type == "select" {
			r.Select = decodeSelect(b, diags)
			continue
		}
		if eff := decodeEffect(b, diags); eff != nil {
			r.Effects = append(r.Effects, eff)
		}
	}
	return r
}

func decodeSelect(block *hcl.Block, diags *diag.List) *ast.SelectDecl {
	sp := spanOf(block.DefRange)
	content, hclDiags := block.Body.Content(selectSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return &ast.SelectDecl{Span: sp}
	}
	s := &ast.SelectDecl{Span: sp}
	if _, ok := content.Attributes["from_type"]; !ok {
		diags.Add(diag.CodeBadAttribute, posOf(sp), "select block requires attribute %q", "from_type")
	} else {
		s.FromType = attrRef(content.Attributes, "from_type", diags)
	}
	s.Where = decodeConditionSet(content.Attributes, diags)
	return s
}

var sequenceSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "phase", LabelNames: []string{"name"}}},
}

func decodeSequence(block *hcl.Block, diags *diag.List) *ast.SequenceDecl {
	s := &ast.SequenceDecl{Name: block.Labels[0], Span: spanOf(block.DefRange)}
	content, hclDiags := block.Body.Content(sequenceSchema)
	appendHCLDiags(diags, hclDiags)
	if content == nil {
		return s
	}
	for _, pb := range content.Blocks {
		sp := spanOf(pb.DefRange)
		attrs, hclDiags := pb.Body.JustAttributes()
		appendHCLDiags(diags, hclDiags)
		p := &ast.PhaseDecl{Name: pb.Labels[0], Span: sp}
		// Phase advance is the second singular condition shape.
		p.Advance = decodeSingularCondition(attrs, "advance", diags)
		s.Phases = append(s.Phases, p)
	}
	return s
}
