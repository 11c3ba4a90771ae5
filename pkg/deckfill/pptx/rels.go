package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationshipsXML struct {
	Rels []Relationship `xml:"Relationship"`
}

func parseRels(data []byte) ([]Relationship, error) {
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("parse rels: %w", err)
	}
	return rels.Rels, nil
}

func marshalRels(rels []Relationship) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	buf.WriteString(`<Relationships xmlns="` + nsRelationships + `">`)
	for _, rel := range rels {
		buf.WriteString(fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"/>`,
			escapeXML(rel.ID), escapeXML(rel.Type), escapeXML(rel.Target)))
	}
	buf.WriteString(`</Relationships>`)
	return buf.Bytes()
}

// nextRelID returns the first free "rIdN" identifier.
func nextRelID(rels []Relationship) string {
	max := 0
	for _, rel := range rels {
		n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId"))
		if err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("rId%d", max+1)
}

// relsPathFor returns the .rels part path for a part
// (e.g. "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels").
func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// resolveTarget resolves a relationship target against the directory of the
// source part, honoring ".." segments and absolute targets.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}
