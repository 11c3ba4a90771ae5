package deckfill

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmasato/deckfill/pkg/deckfill/models"
	"github.com/hmasato/deckfill/pkg/deckfill/placeholder"
	"github.com/hmasato/deckfill/pkg/deckfill/pptx"
	"github.com/hmasato/deckfill/pkg/deckfill/registry"
)

// Result is the missing-substitution log of one update cycle.
type Result struct {
	// MissingSheetTokens lists tokens encountered in the presentation with
	// no registry entry, once per match occurrence, in walk order.
	MissingSheetTokens []string `json:"missingSheetTokens"`
	// MissingPresentationTokens is part of the external contract but is
	// never populated by the walk.
	MissingPresentationTokens []string `json:"missingPresentationTokens"`
}

// Planned substitution actions.
const (
	ActionSubstitute = "substitute"
	ActionMissing    = "missing"
)

// PlannedAction describes what a walk does with one token occurrence.
type PlannedAction struct {
	SlidePart string `json:"slidePart"`
	Token     string `json:"token"`
	Kind      string `json:"kind"`
	Action    string `json:"action"`
}

// PlanReport is the dry-run result: the actions one walk would take,
// recorded without mutating either document.
type PlanReport struct {
	Actions            []PlannedAction `json:"actions"`
	MissingSheetTokens []string        `json:"missingSheetTokens,omitempty"`
}

// Update runs one substitution cycle: it builds a fresh registry from the
// workbook, walks the presentation's shapes, applies text, chart, and table
// substitutions, and writes the mutated presentation to outPath. The input
// presentation is never modified. Unresolved tokens are left literally in
// place and reported in the result.
func Update(pptxPath, xlsxPath, outPath string, opts Options) (*Result, error) {
	e, err := newEngine(pptxPath, xlsxPath, opts, true)
	if err != nil {
		return nil, err
	}
	defer e.close()

	if err := e.run(); err != nil {
		return nil, err
	}
	if err := e.pres.Save(outPath); err != nil {
		return nil, fmt.Errorf("save presentation: %w", err)
	}

	return &Result{
		MissingSheetTokens:        e.missing,
		MissingPresentationTokens: []string{},
	}, nil
}

// Plan runs the same walk as Update in record-only mode: both documents are
// left untouched and every token occurrence is reported with the action the
// walk would take.
func Plan(pptxPath, xlsxPath string, opts Options) (*PlanReport, error) {
	e, err := newEngine(pptxPath, xlsxPath, opts, false)
	if err != nil {
		return nil, err
	}
	defer e.close()

	if err := e.run(); err != nil {
		return nil, err
	}
	return &PlanReport{Actions: e.actions, MissingSheetTokens: e.missing}, nil
}

// scanState is the per-shape walk state. A chart or table hit moves the
// shape to resolved, which preempts every remaining run and match on that
// shape only; text hits keep scanning.
type scanState int

const (
	stateScanning scanState = iota
	stateResolved
)

type engine struct {
	xlsxPath string
	wb       *excelize.File
	reg      *registry.Registry
	pres     *pptx.Presentation
	log      *slog.Logger
	apply    bool

	// src is the workbook archive, opened lazily for chart part copies.
	src *zip.ReadCloser

	missing []string
	actions []PlannedAction
}

func newEngine(pptxPath, xlsxPath string, opts Options, apply bool) (*engine, error) {
	wb, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	reg, err := registry.Build(wb, xlsxPath, opts.sheet())
	if err != nil {
		wb.Close()
		return nil, fmt.Errorf("build registry: %w", err)
	}

	pres, err := pptx.Open(pptxPath)
	if err != nil {
		wb.Close()
		return nil, fmt.Errorf("open presentation: %w", err)
	}

	return &engine{
		xlsxPath: xlsxPath,
		wb:       wb,
		reg:      reg,
		pres:     pres,
		log:      opts.logger(),
		apply:    apply,
	}, nil
}

func (e *engine) close() {
	e.wb.Close()
	if e.src != nil {
		e.src.Close()
	}
}

func (e *engine) run() error {
	parts, err := e.pres.SlideParts()
	if err != nil {
		return err
	}
	for _, part := range parts {
		if err := e.processSlide(part); err != nil {
			return err
		}
	}
	return nil
}

// processSlide walks the slide's shapes one at a time, re-scanning after
// each mutation so byte offsets stay valid. The cursor counts shapes kept
// in place; a removed shape leaves the cursor where it is.
func (e *engine) processSlide(part string) error {
	data, err := e.pres.Package().Read(part)
	if err != nil {
		return err
	}

	next := 0
	for {
		shapes, err := pptx.ParseShapes(data)
		if err != nil {
			return err
		}
		if next >= len(shapes) {
			break
		}
		newData, removed, err := e.processShape(part, data, shapes[next])
		if err != nil {
			return err
		}
		data = newData
		if !removed {
			next++
		}
	}

	if e.apply {
		e.pres.Package().Write(part, data)
	}
	return nil
}

// processShape scans one shape's runs for placeholder matches and applies
// the appropriate substitutor per match. At most one chart-or-table
// substitution is applied per shape; it replaces the whole shape and
// preempts any remaining matches on it. Returns the new slide content and
// whether the shape was removed.
func (e *engine) processShape(part string, data []byte, sh pptx.Shape) ([]byte, bool, error) {
	state := stateScanning
	var edits []pptx.RunEdit

	for _, run := range sh.Runs {
		if state != stateScanning {
			break
		}
		if !placeholder.Pattern.MatchString(strings.TrimSpace(run.Text)) {
			continue
		}

		cur := run.Text
		for _, token := range placeholder.Find(run.Text) {
			kind := placeholder.Classify(token)

			switch kind {
			case placeholder.Chart:
				ref, ok := e.reg.Chart(token)
				if !ok {
					e.miss(part, token, kind)
					continue
				}
				e.record(part, token, kind, ActionSubstitute)
				if !e.apply {
					state = stateResolved
					break
				}
				out, err := e.substituteChart(part, data, sh, token, ref)
				if err != nil {
					return nil, false, err
				}
				return out, true, nil

			case placeholder.Table:
				ref, ok := e.reg.Range(token)
				if !ok {
					e.miss(part, token, kind)
					continue
				}
				e.record(part, token, kind, ActionSubstitute)
				if !e.apply {
					state = stateResolved
					break
				}
				out, err := e.substituteTable(part, data, sh, token, ref)
				if err != nil {
					return nil, false, err
				}
				return out, true, nil

			default:
				value, ok := e.reg.Scalar(token)
				if !ok {
					if err := e.reg.ScalarsErr(); err != nil {
						return nil, false, &SubstituteError{SlidePart: part, Token: token, Err: err}
					}
					e.miss(part, token, kind)
					continue
				}
				e.record(part, token, kind, ActionSubstitute)
				cur = strings.ReplaceAll(cur, token, value)
			}

			if state != stateScanning {
				break
			}
		}

		if e.apply && cur != run.Text {
			edits = append(edits, pptx.RunEdit{Run: run, Text: cur})
			e.log.Debug("replaced text", "slide", part, "runEdits", len(edits))
		}
	}

	if e.apply && len(edits) > 0 {
		data = pptx.ApplyRunEdits(data, edits)
	}
	return data, false, nil
}

// substituteChart imports the referenced chart from the workbook archive,
// places it at the placeholder's top-left scaled uniformly to fit the
// placeholder box, and removes the placeholder shape.
func (e *engine) substituteChart(part string, data []byte, sh pptx.Shape, token string, ref models.ChartRef) ([]byte, error) {
	if ref.Width <= 0 || ref.Height <= 0 {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: ErrZeroSizeChart}
	}

	src, err := e.sourceArchive()
	if err != nil {
		return nil, err
	}
	pkg := e.pres.Package()

	chartPart, err := pptx.ImportChart(pkg, src, ref.Part)
	if err != nil {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: err}
	}
	rid, err := pptx.AddSlideChartRel(pkg, part, chartPart)
	if err != nil {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: err}
	}

	natural := models.Rect{W: ref.Width, H: ref.Height}
	box := natural
	if sh.HasBox {
		scale := natural.ScaleToFit(sh.Box)
		box = models.Rect{
			X: sh.Box.X,
			Y: sh.Box.Y,
			W: int64(float64(ref.Width) * scale),
			H: int64(float64(ref.Height) * scale),
		}
	}

	frame := pptx.ChartFrameXML(pptx.NextShapeID(data), frameName(token), rid, box)
	out := pptx.RemoveShape(data, sh)
	out, err = pptx.AppendFrame(out, frame)
	if err != nil {
		return nil, err
	}

	e.log.Info("substituted chart", "slide", part, "token", token, "part", chartPart)
	return out, nil
}

// substituteTable converts the referenced range into a table frame sized to
// the component-wise minimum of the range's natural footprint and the
// placeholder box, with per-cell style transfer, and removes the
// placeholder shape.
func (e *engine) substituteTable(part string, data []byte, sh pptx.Shape, token string, ref models.RangeRef) ([]byte, error) {
	grid, err := e.reg.Grid(ref)
	if err != nil {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: err}
	}
	if grid.Rows() == 0 || grid.Cols() == 0 {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: ErrEmptyTableRange}
	}

	colWidths, err := e.reg.ColumnWidths(ref)
	if err != nil {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: err}
	}
	rowHeights, err := e.reg.RowHeights(ref)
	if err != nil {
		return nil, &SubstituteError{SlidePart: part, Token: token, Err: err}
	}

	var naturalW, naturalH int64
	for _, w := range colWidths {
		naturalW += w
	}
	for _, h := range rowHeights {
		naturalH += h
	}

	targetW, targetH := naturalW, naturalH
	var x, y int64
	if sh.HasBox {
		x, y = sh.Box.X, sh.Box.Y
		if sh.Box.W < targetW {
			targetW = sh.Box.W
		}
		if sh.Box.H < targetH {
			targetH = sh.Box.H
		}
	}

	frame := pptx.TableFrameXML(
		pptx.NextShapeID(data),
		frameName(token),
		grid,
		models.Rect{X: x, Y: y, W: targetW, H: targetH},
		pptx.ScaleLengths(colWidths, targetW),
		pptx.ScaleLengths(rowHeights, targetH),
	)

	out := pptx.RemoveShape(data, sh)
	out, err = pptx.AppendFrame(out, frame)
	if err != nil {
		return nil, err
	}

	e.log.Info("substituted table", "slide", part, "token", token,
		"rows", grid.Rows(), "cols", grid.Cols())
	return out, nil
}

// sourceArchive lazily opens the workbook archive for chart part copies.
func (e *engine) sourceArchive() (*zip.Reader, error) {
	if e.src == nil {
		src, err := zip.OpenReader(e.xlsxPath)
		if err != nil {
			return nil, fmt.Errorf("open workbook archive: %w", err)
		}
		e.src = src
	}
	return &e.src.Reader, nil
}

func (e *engine) miss(part, token string, kind placeholder.Kind) {
	e.missing = append(e.missing, token)
	e.record(part, token, kind, ActionMissing)
	e.log.Debug("unresolved token", "slide", part, "token", token, "kind", kind.String())
}

func (e *engine) record(part, token string, kind placeholder.Kind, action string) {
	if e.apply {
		return
	}
	e.actions = append(e.actions, PlannedAction{
		SlidePart: part,
		Token:     token,
		Kind:      kind.String(),
		Action:    action,
	})
}

// frameName derives a drawing object name from a token, without delimiters.
func frameName(token string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, "<%"), "%>")
}
