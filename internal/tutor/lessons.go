// Package tutor teaches what sonified graphs sound like and explains
// individual results.
package tutor

import (
	"github.com/alkime/sonify/internal/analysis"
	"github.com/alkime/sonify/internal/audio"
	"github.com/alkime/sonify/pkg/collections"
)

// Lesson describes one sound pattern.
type Lesson struct {
	Trend string
	Title string
	Text  string
}

var lessons = []Lesson{
	{
		Trend: "increasing",
		Title: "Increasing line",
		Text:  "The pitch rises steadily from low to high as the line climbs from left to right.",
	},
	{
		Trend: "decreasing",
		Title: "Decreasing line",
		Text:  "The pitch falls steadily from high to low as the line drops from left to right.",
	},
	{
		Trend: "concave_up",
		Title: "Concave up curve",
		Text:  "The pitch falls to a low point and rises again, tracing a valley shape.",
	},
	{
		Trend: "concave_down",
		Title: "Concave down curve",
		Text:  "The pitch rises to a high point and falls again, tracing a hill shape.",
	},
}

// InterceptLesson explains the axis chimes heard on top of every graph.
const InterceptLesson = "A short chime marks where the graph crosses an axis. " +
	"A higher chime near the start means it crosses the y-axis. " +
	"A lower chime near the middle means it crosses the x-axis."

// Lessons returns every trend lesson in teaching order.
func Lessons() []Lesson {
	return append([]Lesson(nil), lessons...)
}

// LessonFor finds the lesson for a backend trend label.
func LessonFor(trend string) (Lesson, bool) {
	return collections.Find(lessons, func(l Lesson) bool {
		return l.Trend == trend
	})
}

// Titles lists lesson titles, for menus.
func Titles() []string {
	return collections.Apply(lessons, func(l Lesson) string { return l.Title })
}

// Example renders a demonstration clip for the lesson, with both chimes.
func (l Lesson) Example() audio.Clip {
	return audio.Sketch(l.Trend, true, true)
}

// Spoken is the lesson as one utterance.
func (l Lesson) Spoken() string {
	return l.Title + ". " + l.Text
}

// Describe explains a result in plain words without any network calls.
func Describe(r analysis.Result) string {
	text := r.Summary()

	if l, ok := LessonFor(r.Trend); ok {
		text += " " + l.Text
	}

	if r.XIntercept.Present() || r.YIntercept.Present() {
		text += " " + InterceptLesson
	}

	return text
}
