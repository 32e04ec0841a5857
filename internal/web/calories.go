package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

type slotView struct {
	Slot  model.MealSlot
	Items []model.MealItem
	Total int
}

type caloriesPage struct {
	PageData
	Date     string
	Goal     float64
	Consumed int
	Percent  float64
	Slots    []slotView
	History  []charts.Point
	Query    string
	Slot     model.MealSlot
	Results  []model.Food
	Searched bool
}

func caloriesURL(date string) string {
	return "/calories?date=" + url.QueryEscape(date)
}

// CaloriesPage handles GET /calories?date=&q=&slot=. With q set, the page
// also lists matching foods so food can be added without scripts.
func (s *Server) CaloriesPage(w http.ResponseWriter, r *http.Request) {
	sess := GetWebSession(r.Context())
	pd := s.page(w, r, "Calories", "calories")

	date := s.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := diary.ParseDate(raw)
		if err != nil {
			n := notify.Warnf("Invalid date %q, showing today.", raw)
			pd.Notice = &n
		} else {
			date = d
		}
	}

	data := &caloriesPage{
		PageData: pd,
		Date:     date,
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Slot:     model.Breakfast,
	}
	if slot, err := diary.ParseSlot(r.URL.Query().Get("slot")); err == nil {
		data.Slot = slot
	}

	var (
		g        errgroup.Group
		profile  *model.Profile
		meals    model.DayMeals
		history  []model.MealHistoryEntry
		errs     [4]error
	)
	g.Go(func() error {
		profile, errs[0] = s.Backend.Profile(r.Context(), sess)
		return nil
	})
	g.Go(func() error {
		meals, errs[1] = s.Backend.Meals(r.Context(), sess, date)
		return nil
	})
	g.Go(func() error {
		history, errs[2] = s.Backend.MealHistory(r.Context(), sess)
		return nil
	})
	if data.Query != "" {
		g.Go(func() error {
			data.Results, errs[3] = s.SuggestFoods(r.Context(), data.Query)
			data.Searched = true
			return nil
		})
	}
	g.Wait()

	if err := errors.Join(errs[:3]...); err != nil {
		if app.SessionRejected(err) {
			s.fail(w, r, "Failed to load calories", err, "/login")
			return
		}
		slog.Error("failed to load calories page", "user", sess.Username, "error", err)
		n := app.Explain("Failed to load calorie data", err)
		data.Notice = &n
	}
	if errs[3] != nil {
		n := app.Explain("Food search failed", errs[3])
		data.Notice = &n
	}

	meals.Normalize()
	data.Goal = profile.CalorieGoalOrDefault()
	data.Consumed = meals.Total()
	data.Percent = charts.Progress(float64(data.Consumed), data.Goal)
	for _, slot := range model.MealSlots {
		data.Slots = append(data.Slots, slotView{
			Slot:  slot,
			Items: meals.Items(slot),
			Total: meals.SlotTotal(slot),
		})
	}
	data.History = charts.CalorieSeries(history, data.Goal)

	s.Templates.Render(w, "calories.html", data)
}

// CaloriesAddSubmit handles POST /calories/add. The logged item is built
// here from the chosen food's per-100 g calories and the quantity.
func (s *Server) CaloriesAddSubmit(w http.ResponseWriter, r *http.Request) {
	date, err := diary.ParseDate(r.FormValue("date"))
	if err != nil {
		done(w, r, notify.Warnf("Invalid date."), "/calories")
		return
	}
	back := caloriesURL(date)

	slot, err := diary.ParseSlot(r.FormValue("slot"))
	if err != nil {
		s.fail(w, r, "Failed to add food", err, back)
		return
	}

	label := strings.TrimSpace(r.FormValue("label"))
	kcal, kcalErr := strconv.ParseFloat(r.FormValue("kcal"), 64)
	if label == "" || kcalErr != nil || !(kcal >= 0 && kcal <= diary.MaxCaloriesPer100) {
		done(w, r, notify.Warnf("Choose a food first."), back)
		return
	}

	quantity, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("quantity")), 64)
	if err != nil {
		quantity = 0
	}

	food := model.Food{
		ID:        r.FormValue("food_id"),
		Label:     label,
		Nutrients: model.Nutrients{Calories: kcal},
	}
	item, err := s.AddFood(r.Context(), GetWebSession(r.Context()), date, slot, food, quantity)
	if err != nil {
		s.fail(w, r, "Failed to add food", err, back)
		return
	}

	slog.Info("food logged", "date", date, "slot", slot, "food", item.Name, "calories", item.Calories)
	done(w, r, notify.Successf("%s added to %s (%d kcal).", item.Name, slot, item.Calories), back)
}
