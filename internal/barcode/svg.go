package barcode

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	labelWidth  = 300
	labelHeight = 100
	barTop      = 10
	barHeight   = 60
	barStart    = 20
	barEnd      = 280
	maxNameLen  = 30
)

// SheetColumns is the number of labels per row on a label sheet.
const SheetColumns = 3

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	sheetGap  = 10
)

// Label is one entry of a label sheet.
type Label struct {
	Code string
	Name string
}

// RenderSVG draws a 300x100 label with decorative bars, the code and the
// product name. The bars are not decodable by a scanner.
func RenderSVG(code, name string) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", labelWidth, labelHeight)
	writeLabel(&sb, code, name, "  ")
	sb.WriteString("</svg>\n")
	return sb.String()
}

// RenderSheet lays labels out row by row, columns per row, as one printable
// SVG document. Each label keeps the size RenderSVG gives it.
func RenderSheet(labels []Label, columns int) string {
	if columns < 1 {
		columns = 1
	}
	cols := columns
	if len(labels) < cols {
		cols = len(labels)
	}
	rows := (len(labels) + columns - 1) / columns
	width := sheetGap + cols*(labelWidth+sheetGap)
	height := sheetGap + rows*(labelHeight+sheetGap)

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height)
	for i, l := range labels {
		x := sheetGap + (i%columns)*(labelWidth+sheetGap)
		y := sheetGap + (i/columns)*(labelHeight+sheetGap)
		fmt.Fprintf(&sb, `  <svg x="%d" y="%d" width="%d" height="%d">`+"\n", x, y, labelWidth, labelHeight)
		writeLabel(&sb, l.Code, l.Name, "    ")
		sb.WriteString("  </svg>\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeLabel(sb *strings.Builder, code, name, indent string) {
	fmt.Fprintf(sb, `%s<rect width="%d" height="%d" fill="white"/>`+"\n", indent, labelWidth, labelHeight)
	for _, bar := range bars(code) {
		fmt.Fprintf(sb, `%s<rect x="%d" y="%d" width="%d" height="%d" fill="black"/>`+"\n", indent, bar.x, barTop, bar.width, barHeight)
	}
	fmt.Fprintf(sb, `%s<text x="150" y="85" text-anchor="middle" font-family="monospace" font-size="12" fill="black">%s</text>`+"\n", indent, escape(code))
	fmt.Fprintf(sb, `%s<text x="150" y="98" text-anchor="middle" font-family="Arial" font-size="10" fill="black">%s</text>`+"\n", indent, escape(truncate(name, maxNameLen)))
}

type bar struct {
	x, width int
}

// bars cycles over the code to pick bar widths (1-3) and gaps (2-4).
func bars(code string) []bar {
	seed := []rune(code)
	if len(seed) == 0 {
		seed = []rune("0")
	}
	var out []bar
	x := barStart
	for i := 0; ; i++ {
		v := int(seed[i%len(seed)])
		width := 1 + v%3
		if x+width > barEnd {
			break
		}
		out = append(out, bar{x: x, width: width})
		x += width + 2 + (v/3)%3
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func escape(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
