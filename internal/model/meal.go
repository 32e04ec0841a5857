package model

import "fmt"

// MealSlot names one of the four meals of a day.
type MealSlot string

// Meal slots, in display order.
const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Dinner    MealSlot = "dinner"
	Snacks    MealSlot = "snacks"
)

// MealSlots lists all slots in display order.
var MealSlots = []MealSlot{Breakfast, Lunch, Dinner, Snacks}

// ParseMealSlot validates a slot name.
func ParseMealSlot(s string) (MealSlot, error) {
	for _, slot := range MealSlots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown meal slot %q", s)
}

// MealItem is one logged food portion.
type MealItem struct {
	Name     string `json:"name"`
	Calories int    `json:"calories"`
	Quantity Number `json:"quantity"`
	Unit     string `json:"unit"`
}

// DayMeals holds everything eaten on one day, by slot.
type DayMeals struct {
	Breakfast []MealItem `json:"breakfast"`
	Lunch     []MealItem `json:"lunch"`
	Dinner    []MealItem `json:"dinner"`
	Snacks    []MealItem `json:"snacks"`
}

// Items returns the items logged in a slot.
func (d *DayMeals) Items(slot MealSlot) []MealItem {
	if p := d.slot(slot); p != nil {
		return *p
	}
	return nil
}

// Add appends an item to a slot.
func (d *DayMeals) Add(slot MealSlot, item MealItem) error {
	p := d.slot(slot)
	if p == nil {
		return fmt.Errorf("unknown meal slot %q", slot)
	}
	*p = append(*p, item)
	return nil
}

// SlotTotal sums the calories of one slot.
func (d *DayMeals) SlotTotal(slot MealSlot) int {
	total := 0
	for _, item := range d.Items(slot) {
		total += item.Calories
	}
	return total
}

// Total sums the calories of all slots.
func (d *DayMeals) Total() int {
	total := 0
	for _, slot := range MealSlots {
		total += d.SlotTotal(slot)
	}
	return total
}

// Normalize replaces nil slots with empty ones so the day encodes as
// arrays rather than nulls.
func (d *DayMeals) Normalize() {
	for _, slot := range MealSlots {
		if p := d.slot(slot); *p == nil {
			*p = []MealItem{}
		}
	}
}

func (d *DayMeals) slot(slot MealSlot) *[]MealItem {
	switch slot {
	case Breakfast:
		return &d.Breakfast
	case Lunch:
		return &d.Lunch
	case Dinner:
		return &d.Dinner
	case Snacks:
		return &d.Snacks
	}
	return nil
}

// MealHistoryEntry is one day of the meal history.
type MealHistoryEntry struct {
	Date  string   `json:"date"`
	Meals DayMeals `json:"meals"`
}
