// Package diary builds meal log entries from food lookups.
package diary

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/erazemk/healthpilot/internal/model"
)

// DateLayout is the wire format of diary dates.
const DateLayout = "2006-01-02"

// DefaultQuantity is the portion preselected when a food is chosen, in grams.
const DefaultQuantity = 100

// Unit is the unit logged portions are measured in.
const Unit = "g"

// Upper bounds for a single logged portion.
const (
	MaxQuantity       = 100_000
	MaxCaloriesPer100 = 10_000
)

var (
	// ErrInvalidQuantity is returned for a portion that is not a positive
	// number of grams up to MaxQuantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive number up to 100000 g")
	// ErrInvalidCalories is returned for a calorie density outside
	// 0..MaxCaloriesPer100.
	ErrInvalidCalories = errors.New("calories per 100 g must be between 0 and 10000")
	ErrUnknownSlot     = errors.New("unknown meal slot")
)

// ParseSlot validates a meal slot name.
func ParseSlot(s string) (model.MealSlot, error) {
	slot, err := model.ParseMealSlot(s)
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknownSlot, s)
	}
	return slot, nil
}

// Calories scales a per-100 value to a portion and rounds to whole calories.
func Calories(per100, quantity float64) int {
	return int(math.Round(per100 * quantity / 100))
}

// NewMealItem logs quantity grams of food.
func NewMealItem(food model.Food, quantity float64) (model.MealItem, error) {
	if !(quantity > 0 && quantity <= MaxQuantity) {
		return model.MealItem{}, ErrInvalidQuantity
	}
	if kcal := food.Nutrients.Calories; !(kcal >= 0 && kcal <= MaxCaloriesPer100) {
		return model.MealItem{}, ErrInvalidCalories
	}
	return model.MealItem{
		Name:     food.Label,
		Calories: Calories(food.Nutrients.Calories, quantity),
		Quantity: model.Number(quantity),
		Unit:     Unit,
	}, nil
}

// Today returns t's calendar date in diary format.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate validates a diary date.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.Format(DateLayout), nil
}

// Draft is one day of meals being edited before it is saved. The backend
// replaces the whole day on save, so the draft always carries every slot.
type Draft struct {
	Date  string
	Meals model.DayMeals
}

// NewDraft starts editing a day fetched from the backend.
func NewDraft(date string, meals model.DayMeals) *Draft {
	meals.Normalize()
	return &Draft{Date: date, Meals: meals}
}

// Add logs quantity grams of food in slot and returns the new entry.
func (d *Draft) Add(slot model.MealSlot, food model.Food, quantity float64) (model.MealItem, error) {
	if _, err := ParseSlot(string(slot)); err != nil {
		return model.MealItem{}, err
	}
	item, err := NewMealItem(food, quantity)
	if err != nil {
		return model.MealItem{}, err
	}
	if err := d.Meals.Add(slot, item); err != nil {
		return model.MealItem{}, err
	}
	return item, nil
}
