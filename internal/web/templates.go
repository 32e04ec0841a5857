package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	webembed "github.com/erazemk/healthpilot/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"ring":  charts.Ring,
		"chart": charts.Layout,
		"pct": func(p float64) string {
			return strconv.FormatFloat(p, 'f', 0, 64) + "%"
		},
		"liters": func(l float64) string {
			return strconv.FormatFloat(l, 'f', -1, 64) + " L"
		},
		"num": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
		"slotName": func(slot model.MealSlot) string {
			s := string(slot)
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"mealSlots":     func() []model.MealSlot { return model.MealSlots },
		"waterPortions": func() []int { return app.WaterPortions },
		"add":           func(a, b int) int { return a + b },
		"sets":          setCount,
		"thumb": func(gifURL string) string {
			return "/exercises/thumb?src=" + url.QueryEscape(gifURL)
		},
		"noticeClass": func(l notify.Level) string {
			return "toast toast-" + string(l)
		},
	}
}

// pages lists every page template; each is parsed together with the layout.
var pages = []string{
	"login.html",
	"register.html",
	"home.html",
	"profile.html",
	"calories.html",
	"workout.html",
	"workouts.html",
	"workout_detail.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title  string
	User   string
	Token  string
	Active string
	Notice *notify.Notice
}

// Server holds all dependencies for page handlers.
type Server struct {
	*app.Services
	Templates *Templates
}
