// Package charts turns backend history into chart-ready series.
package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/erazemk/healthpilot/internal/model"
)

// Band classifies a day's intake against the calorie goal.
type Band string

const (
	BandLow  Band = "low"  // under 70 % of the goal
	BandNear Band = "near" // under 90 %
	BandMet  Band = "met"
)

// BandFor classifies a percentage of the goal.
func BandFor(percent float64) Band {
	switch {
	case percent < 70:
		return BandLow
	case percent < 90:
		return BandNear
	default:
		return BandMet
	}
}

// Point is one bar of the calorie history chart.
type Point struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Calories int     `json:"calories"`
	Percent  float64 `json:"percent"`
	Band     Band    `json:"band"`
	// Height is the bar height relative to the largest day, 0-100.
	Height float64 `json:"height"`
}

// CalorieSeries builds one point per history entry, in the order given.
// A non-positive goal falls back to the default calorie goal.
func CalorieSeries(history []model.MealHistoryEntry, goal float64) []Point {
	if goal <= 0 {
		goal = model.DefaultCalorieGoal
	}

	points := make([]Point, 0, len(history))
	largest := 0
	for _, entry := range history {
		total := entry.Meals.Total()
		percent := float64(total) / goal * 100
		points = append(points, Point{
			Date:     entry.Date,
			Label:    Label(entry.Date),
			Calories: total,
			Percent:  percent,
			Band:     BandFor(percent),
		})
		largest = max(largest, total)
	}

	if largest > 0 {
		for i := range points {
			points[i].Height = float64(points[i].Calories) / float64(largest) * 100
		}
	}
	return points
}

// Label shortens a YYYY-MM-DD date to MM/DD.
func Label(date string) string {
	if len(date) > 10 {
		date = date[:10]
	}
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return date
	}
	return strings.Join(parts[1:], "/")
}

// Progress returns consumed as a percentage of goal, clamped to [0, 100].
func Progress(consumed, goal float64) float64 {
	if goal <= 0 || consumed <= 0 || math.IsNaN(consumed) {
		return 0
	}
	return math.Min(consumed/goal*100, 100)
}

// WorkoutOn returns the first workout logged on date.
func WorkoutOn(workouts []model.Workout, date string) (model.Workout, bool) {
	for _, w := range workouts {
		if sameDay(w.Date, date) {
			return w, true
		}
	}
	return model.Workout{}, false
}

// sameDay compares calendar dates, tolerating timestamps on the left.
func sameDay(stamp, date string) bool {
	if len(stamp) > len(date) && len(date) == 10 {
		stamp = stamp[:10]
	}
	return stamp == date
}

// RingGeometry is the stroke layout of an SVG progress ring.
type RingGeometry struct {
	Radius        float64
	Circumference float64
	Filled        float64
	Percent       float64
}

// DashArray is the stroke-dasharray value that draws the filled arc.
func (r RingGeometry) DashArray() string {
	return fmt.Sprintf("%.2f %.2f", r.Filled, r.Circumference-r.Filled)
}

// Ring lays out a ring of radius r filled to percent, clamped to [0, 100].
func Ring(percent, radius float64) RingGeometry {
	percent = math.Max(0, math.Min(percent, 100))
	if math.IsNaN(percent) {
		percent = 0
	}
	c := 2 * math.Pi * radius
	return RingGeometry{
		Radius:        radius,
		Circumference: c,
		Filled:        c * percent / 100,
		Percent:       percent,
	}
}

// Bar chart layout in SVG user units.
const (
	BarSlot     = 10
	BarWidth    = 6
	PlotHeight  = 100
	ChartHeight = 120
)

// Bar is one positioned bar of a BarChart.
type Bar struct {
	Point               Point
	X, Y, Width, Height float64
	LabelX              float64
}

// BarChart is the SVG layout of a calorie series.
type BarChart struct {
	Width, Height float64
	LabelY        float64
	Bars          []Bar
}

// Layout positions the points as bars, one BarSlot apart, growing up from
// the bottom of the plot area.
func Layout(points []Point) BarChart {
	c := BarChart{
		Width:  float64(len(points) * BarSlot),
		Height: ChartHeight,
		LabelY: ChartHeight - 4,
		Bars:   make([]Bar, 0, len(points)),
	}
	for i, p := range points {
		x := float64(i * BarSlot)
		h := p.Height * PlotHeight / 100
		c.Bars = append(c.Bars, Bar{
			Point:  p,
			X:      x + (BarSlot-BarWidth)/2,
			Y:      PlotHeight - h,
			Width:  BarWidth,
			Height: h,
			LabelX: x + BarSlot/2,
		})
	}
	return c
}
