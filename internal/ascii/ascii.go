// Package ascii decodes the text-format PSF/"logFile" peer format. Per
// spec §1/§9 its full grammar is explicitly out of scope; this is a
// minimal reader for the subset psfascii.py actually exercises:
// quoted-string keys, PROP(...) lists, and the HEADER/TYPE/SWEEP/TRACE/
// VALUE keyword structure, restricted to scalar field types.
package ascii

import (
	"bytes"
	"fmt"
	"strconv"
	"text/scanner"

	"github.com/chwa/psfdata/internal/errs"
	"github.com/chwa/psfdata/internal/props"
)

// fieldKind is the scalar subset of the ASCII TYPE grammar this decoder
// understands; ARRAY and STRUCT are out of scope for the minimal reader.
type fieldKind int

const (
	fieldFloat fieldKind = iota
	fieldInt
	fieldComplex
	fieldString
)

type typeInfo struct {
	Kind       fieldKind
	Properties *props.List
}

// File is the decoded content of one ASCII PSF file.
type File struct {
	Header *props.List

	types map[string]typeInfo

	sweepName string
	sweepType string
	traceOrder []string
	traceType  map[string]string

	isSwept bool

	simpleValues map[string]any
	simpleOrder  []string
	sweepX       []float64
	sweepY       map[string][]float64
}

// IsSwept reports whether the file has a SWEEP section.
func (f *File) IsSwept() bool { return f.isSwept }

// Names returns signal names in declaration order: the sweep variable
// first (if any), then traces in declaration order, or simple-value names
// otherwise.
func (f *File) Names() []string {
	if f.isSwept {
		return append([]string{f.sweepName}, f.traceOrder...)
	}
	return append([]string(nil), f.simpleOrder...)
}

// SignalInfo returns the property list of the named signal's declared
// type.
func (f *File) SignalInfo(name string) (*props.List, bool) {
	var typeName string
	switch {
	case name == f.sweepName:
		typeName = f.sweepType
	default:
		tn, ok := f.traceType[name]
		if !ok {
			return nil, false
		}
		typeName = tn
	}
	ti, ok := f.types[typeName]
	if !ok {
		return nil, false
	}
	return ti.Properties, true
}

// SweepInfo returns the property list of the sweep variable's declared
// type.
func (f *File) SweepInfo() (*props.List, bool) {
	if !f.isSwept {
		return nil, false
	}
	return f.SignalInfo(f.sweepName)
}

// GetSignal returns a scalar value (non-swept files). For swept files a
// trace name yields its (x, y) pair as a struct{ X, Y []float64 }, from
// which callers reconstruct a psfdata.Waveform (this package cannot import
// the root package), and the sweep variable's own name yields its x values
// as a plain []float64.
func (f *File) GetSignal(name string) (any, error) {
	if f.isSwept {
		if name == f.sweepName {
			return f.sweepX, nil
		}
		y, ok := f.sweepY[name]
		if !ok {
			return nil, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q not found", name))
		}
		return struct {
			X, Y []float64
		}{f.sweepX, y}, nil
	}
	v, ok := f.simpleValues[name]
	if !ok {
		return nil, errs.New(errs.UnknownName, 0, fmt.Errorf("signal %q not found", name))
	}
	return v, nil
}

// parser wraps text/scanner with one token of lookahead.
type parser struct {
	s       scanner.Scanner
	tok     rune
	lookErr error
}

func newParser(data []byte) *parser {
	var s scanner.Scanner
	s.Init(bytes.NewReader(data))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanInts | scanner.ScanStrings
	p := &parser{s: s}
	p.advance()
	return p
}

func (p *parser) advance() { p.tok = p.s.Scan() }

func (p *parser) text() string { return p.s.TokenText() }

func (p *parser) errf(format string, args ...any) error {
	return errs.New(errs.MalformedSection, int64(p.s.Position.Offset), fmt.Errorf(format, args...))
}

// expectIdent consumes and returns an identifier or keyword token.
func (p *parser) expectIdent() (string, error) {
	if p.tok != scanner.Ident {
		return "", p.errf("expected identifier, got %q", p.text())
	}
	s := p.text()
	p.advance()
	return s, nil
}

// expectKeyword consumes an identifier token matching word exactly.
func (p *parser) expectKeyword(word string) error {
	s, err := p.expectIdent()
	if err != nil {
		return err
	}
	if s != word {
		return p.errf("expected %q, got %q", word, s)
	}
	return nil
}

func (p *parser) atKeyword(word string) bool {
	return p.tok == scanner.Ident && p.text() == word
}

// expectQuoted consumes and returns a quoted-string token's unquoted
// value.
func (p *parser) expectQuoted() (string, error) {
	if p.tok != scanner.String {
		return "", p.errf("expected quoted string, got %q", p.text())
	}
	s, err := strconv.Unquote(p.text())
	if err != nil {
		return "", p.errf("invalid quoted string %q: %v", p.text(), err)
	}
	p.advance()
	return s, nil
}

// Parse decodes the text-format PSF content in data.
func Parse(data []byte) (*File, error) {
	p := newParser(data)
	f := &File{
		Header:    props.New(),
		types:     make(map[string]typeInfo),
		traceType: make(map[string]string),
	}

	if err := p.expectKeyword("HEADER"); err != nil {
		return nil, err
	}
	if err := parsePropRun(p, f.Header, "TYPE"); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("TYPE"); err != nil {
		return nil, err
	}
	for p.tok == scanner.String {
		name, ti, err := parseTypeDef(p)
		if err != nil {
			return nil, err
		}
		f.types[name] = ti
	}

	if p.atKeyword("SWEEP") {
		f.isSwept = true
		p.advance()
		name, err := p.expectQuoted()
		if err != nil {
			return nil, err
		}
		typeName, err := p.expectQuoted()
		if err != nil {
			return nil, err
		}
		f.sweepName, f.sweepType = name, typeName
		if p.atKeyword("PROP") {
			if _, err := parsePropList(p); err != nil {
				return nil, err
			}
		}
	}

	if p.atKeyword("TRACE") {
		p.advance()
		for p.tok == scanner.String {
			name, err := p.expectQuoted()
			if err != nil {
				return nil, err
			}
			typeName, err := p.expectQuoted()
			if err != nil {
				return nil, err
			}
			f.traceOrder = append(f.traceOrder, name)
			f.traceType[name] = typeName
		}
	}

	if err := p.expectKeyword("VALUE"); err != nil {
		return nil, err
	}
	if f.isSwept {
		return f, parseSweepValues(p, f)
	}
	return f, parseSimpleValues(p, f)
}

// parsePropRun reads zero or more `"name" value` pairs into list until the
// stopKeyword identifier is seen.
func parsePropRun(p *parser, list *props.List, stopKeyword string) error {
	for p.tok == scanner.String {
		name, err := p.expectQuoted()
		if err != nil {
			return err
		}
		if err := readPropValue(p, list, name); err != nil {
			return err
		}
	}
	if !p.atKeyword(stopKeyword) {
		return p.errf("expected %q, got %q", stopKeyword, p.text())
	}
	return nil
}

func readPropValue(p *parser, list *props.List, name string) error {
	if p.tok == scanner.String {
		v, err := p.expectQuoted()
		if err != nil {
			return err
		}
		list.SetString(name, v)
		return nil
	}

	neg := false
	if p.tok == '-' {
		neg = true
		p.advance()
	}
	switch p.tok {
	case scanner.Int:
		v, err := strconv.ParseInt(p.text(), 10, 32)
		if err != nil {
			return p.errf("invalid int property %q: %v", name, err)
		}
		if neg {
			v = -v
		}
		list.SetInt(name, int32(v))
		p.advance()
	case scanner.Float:
		v, err := strconv.ParseFloat(p.text(), 64)
		if err != nil {
			return p.errf("invalid float property %q: %v", name, err)
		}
		if neg {
			v = -v
		}
		list.SetDouble(name, v)
		p.advance()
	default:
		return p.errf("property %q: unexpected value token %q", name, p.text())
	}
	return nil
}

// parsePropList reads a PROP(...) list into a fresh property list.
func parsePropList(p *parser) (*props.List, error) {
	if err := p.expectKeyword("PROP"); err != nil {
		return nil, err
	}
	if p.tok != '(' {
		return nil, p.errf("expected '(' after PROP, got %q", p.text())
	}
	p.advance()

	list := props.New()
	for p.tok == scanner.String {
		name, err := p.expectQuoted()
		if err != nil {
			return nil, err
		}
		if err := readPropValue(p, list, name); err != nil {
			return nil, err
		}
	}
	if p.tok != ')' {
		return nil, p.errf("expected ')' to close PROP, got %q", p.text())
	}
	p.advance()
	return list, nil
}

// parseTypeDef reads one `"name" KIND [PROP(...)]` entry. Only the scalar
// subset of the grammar (FLOAT, DOUBLE, INT, BYTE, LONG, COMPLEX, STRING)
// is supported; ARRAY and STRUCT are out of scope for this minimal reader.
func parseTypeDef(p *parser) (string, typeInfo, error) {
	name, err := p.expectQuoted()
	if err != nil {
		return "", typeInfo{}, err
	}

	kindWord, err := p.expectIdent()
	if err != nil {
		return "", typeInfo{}, err
	}

	var kind fieldKind
	switch kindWord {
	case "FLOAT":
		kind = fieldFloat
		if p.atKeyword("DOUBLE") { // spectre files spell it "FLOAT DOUBLE"
			p.advance()
		}
	case "DOUBLE":
		kind = fieldFloat
	case "INT", "BYTE", "LONG":
		kind = fieldInt
	case "COMPLEX":
		kind = fieldComplex
	case "STRING":
		kind = fieldString
		if p.tok == scanner.Int { // optional fixed length
			p.advance()
		} else if p.tok == '*' {
			p.advance()
		}
	case "ARRAY", "STRUCT":
		return "", typeInfo{}, p.errf("type %q: %s fields are not supported by the minimal text decoder", name, kindWord)
	default:
		return "", typeInfo{}, p.errf("type %q: unknown field kind %q", name, kindWord)
	}

	ti := typeInfo{Kind: kind, Properties: props.New()}
	if p.atKeyword("PROP") {
		list, err := parsePropList(p)
		if err != nil {
			return "", typeInfo{}, err
		}
		ti.Properties = list
	}
	return name, ti, nil
}

func parseValueScalar(p *parser, kind fieldKind) (any, error) {
	switch kind {
	case fieldString:
		return p.expectQuoted()
	case fieldInt:
		neg := false
		if p.tok == '-' {
			neg = true
			p.advance()
		}
		if p.tok != scanner.Int {
			return nil, p.errf("expected integer value, got %q", p.text())
		}
		v, err := strconv.ParseInt(p.text(), 10, 32)
		if err != nil {
			return nil, p.errf("invalid int value %q: %v", p.text(), err)
		}
		if neg {
			v = -v
		}
		p.advance()
		return int32(v), nil
	case fieldComplex:
		re, err := parseNumber(p)
		if err != nil {
			return nil, err
		}
		im, err := parseNumber(p)
		if err != nil {
			return nil, err
		}
		return complex(re, im), nil
	default: // fieldFloat
		return parseNumber(p)
	}
}

func parseNumber(p *parser) (float64, error) {
	neg := false
	if p.tok == '-' {
		neg = true
		p.advance()
	}
	switch p.tok {
	case scanner.Float, scanner.Int:
		v, err := strconv.ParseFloat(p.text(), 64)
		if err != nil {
			return 0, p.errf("invalid numeric value %q: %v", p.text(), err)
		}
		p.advance()
		if neg {
			v = -v
		}
		return v, nil
	default:
		return 0, p.errf("expected numeric value, got %q", p.text())
	}
}

// parseSimpleValues reads `"name" value [PROP(...)]` entries until END.
// A value whose name matches a TYPE entry is read as that type; otherwise
// its kind follows its first token: a quoted string, an unsigned integer
// (int32), or else a floating-point number, so a negative integer without
// a matching TYPE entry reads as float64.
func parseSimpleValues(p *parser, f *File) error {
	f.simpleValues = make(map[string]any)
	for p.tok == scanner.String {
		name, err := p.expectQuoted()
		if err != nil {
			return err
		}
		kind := fieldFloat
		if ti, ok := f.types[name]; ok {
			kind = ti.Kind
		} else if p.tok == scanner.String {
			kind = fieldString
		} else if p.tok == scanner.Int {
			kind = fieldInt
		}
		v, err := parseValueScalar(p, kind)
		if err != nil {
			return err
		}
		if p.atKeyword("PROP") {
			if _, err := parsePropList(p); err != nil {
				return err
			}
		}
		if _, dup := f.simpleValues[name]; !dup {
			f.simpleOrder = append(f.simpleOrder, name)
		}
		f.simpleValues[name] = v
	}
	return p.expectKeyword("END")
}

// parseSweepValues reads repeated groups of `"sweepvar" v0 "traceA" v0
// "traceB" v0 "sweepvar" v1 ...` rows until END.
func parseSweepValues(p *parser, f *File) error {
	f.sweepY = make(map[string][]float64, len(f.traceOrder))
	for p.tok == scanner.String {
		name, err := p.expectQuoted()
		if err != nil {
			return err
		}
		if name != f.sweepName {
			return p.errf("sweep row: expected sweep variable %q, got %q", f.sweepName, name)
		}
		sv, err := parseNumber(p)
		if err != nil {
			return err
		}
		f.sweepX = append(f.sweepX, sv)

		for _, trace := range f.traceOrder {
			tn, err := p.expectQuoted()
			if err != nil {
				return err
			}
			if tn != trace {
				return p.errf("sweep row: expected trace %q, got %q", trace, tn)
			}
			ti := f.types[f.traceType[trace]]
			v, err := parseValueScalar(p, ti.Kind)
			if err != nil {
				return err
			}
			fv, ok := v.(float64)
			if !ok {
				return p.errf("trace %q: swept value must be numeric", trace)
			}
			f.sweepY[trace] = append(f.sweepY[trace], fv)
		}
	}
	return p.expectKeyword("END")
}
