package pptx

import (
	"encoding/xml"
	"fmt"
)

const presentationPart = "ppt/presentation.xml"

// Presentation wraps a package opened from a .pptx file.
type Presentation struct {
	pkg *Package
}

// Open opens the .pptx at path and validates it is a presentation package.
func Open(path string) (*Presentation, error) {
	pkg, err := OpenPackage(path)
	if err != nil {
		return nil, err
	}
	if !pkg.Has(presentationPart) {
		return nil, fmt.Errorf("%w: %s", ErrNotPresentation, path)
	}
	return &Presentation{pkg: pkg}, nil
}

// Package exposes the underlying package for part-level mutation.
func (p *Presentation) Package() *Package {
	return p.pkg
}

// Save writes the presentation to path atomically.
func (p *Presentation) Save(path string) error {
	return p.pkg.Save(path)
}

// presentationXML is the subset of ppt/presentation.xml needed to order
// slides. The r:id attribute is matched by namespace so the numeric id
// attribute on the same element is not picked up instead.
type presentationXML struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
}

// SlideParts returns the slide part paths in presentation order.
func (p *Presentation) SlideParts() ([]string, error) {
	data, err := p.pkg.Read(presentationPart)
	if err != nil {
		return nil, err
	}
	var pres presentationXML
	if err := xml.Unmarshal(data, &pres); err != nil {
		return nil, fmt.Errorf("parse presentation.xml: %w", err)
	}

	relsData, err := p.pkg.Read(relsPathFor(presentationPart))
	if err != nil {
		return nil, err
	}
	rels, err := parseRels(relsData)
	if err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels))
	for _, rel := range rels {
		targets[rel.ID] = rel.Target
	}

	parts := make([]string, 0, len(pres.SlideIDs))
	for _, sld := range pres.SlideIDs {
		target, ok := targets[sld.RID]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", sld.RID)
		}
		parts = append(parts, resolveTarget("ppt", target))
	}
	return parts, nil
}
