// Package analysis holds the records a sonification backend returns for an
// uploaded graph image.
package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Result describes a graph as the backend classified it. It is immutable
// once received and replaced wholesale on the next upload.
type Result struct {
	GraphType  string
	Trend      string
	XIntercept Value
	YIntercept Value
}

// AudioReference is a retrievable location of a synthesized audio asset.
// The zero value means "no audio".
type AudioReference string

// IsZero reports whether no audio is referenced.
func (r AudioReference) IsZero() bool {
	return r == ""
}

func (r AudioReference) String() string {
	return string(r)
}

// Axis selects which coordinate of a point-shaped intercept is meaningful.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Value is an intercept: a number, a symbolic label, or absent.
type Value struct {
	text  string
	num   float64
	isNum bool
}

// Number builds a numeric Value.
func Number(f float64) Value {
	return Value{text: formatNumber(f), num: f, isNum: true}
}

// Symbol builds a symbolic Value such as "undefined".
func Symbol(s string) Value {
	return Value{text: s}
}

// Present reports whether the backend supplied the value.
func (v Value) Present() bool {
	return v.text != ""
}

// Float returns the numeric value, if any.
func (v Value) Float() (float64, bool) {
	return v.num, v.isNum
}

// String renders the value verbatim, or "none" when absent.
func (v Value) String() string {
	if !v.Present() {
		return "none"
	}

	return v.text
}

// ValueFromJSON converts one intercept field. Points such as [0, -2.5] are
// reduced to the coordinate on the crossing axis.
func ValueFromJSON(r gjson.Result, axis Axis) Value {
	switch {
	case !r.Exists(), r.Type == gjson.Null:
		return Value{}
	case r.Type == gjson.Number:
		return Number(r.Float())
	case r.Type == gjson.String:
		s := strings.TrimSpace(r.Str)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			// keep the backend's spelling
			return Value{text: s, num: f, isNum: true}
		}
		return Symbol(s)
	case r.IsArray():
		coords := r.Array()
		idx := int(axis)
		if len(coords) != 2 {
			return Value{}
		}
		return ValueFromJSON(coords[idx], axis)
	default:
		return Value{}
	}
}

// FromJSON extracts a Result from an analysis object. ok is false when the
// object is missing or carries none of the known fields.
func FromJSON(r gjson.Result) (Result, bool) {
	if !r.IsObject() {
		return Result{}, false
	}

	res := Result{
		GraphType:  strings.TrimSpace(r.Get("graph_type").String()),
		Trend:      strings.TrimSpace(r.Get("trend").String()),
		XIntercept: ValueFromJSON(r.Get("x_intercept"), AxisX),
		YIntercept: ValueFromJSON(r.Get("y_intercept"), AxisY),
	}

	if res.GraphType == "" && res.Trend == "" && !res.XIntercept.Present() && !res.YIntercept.Present() {
		return Result{}, false
	}

	return res, true
}

// Summary is the spoken description of a result. It always names the trend
// and both intercepts verbatim.
func (r Result) Summary() string {
	var sb strings.Builder

	sb.WriteString("Analysis complete.")
	if r.GraphType != "" {
		fmt.Fprintf(&sb, " This is a %s graph.", Humanize(r.GraphType))
	}

	trend := r.Trend
	if trend == "" {
		trend = "unknown"
	}

	fmt.Fprintf(&sb, " Trend: %s.", trend)
	fmt.Fprintf(&sb, " X-intercept: %s.", r.XIntercept)
	fmt.Fprintf(&sb, " Y-intercept: %s.", r.YIntercept)

	return sb.String()
}

// Humanize turns backend labels like "concave_up" into "concave up".
func Humanize(label string) string {
	return strings.ReplaceAll(label, "_", " ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
