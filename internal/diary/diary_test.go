package diary

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/healthpilot/internal/model"
)

func apple() model.Food {
	return model.Food{ID: "food_apple", Label: "Apple", Nutrients: model.Nutrients{Calories: 52}}
}

func TestNewMealItemScalesAndRounds(t *testing.T) {
	tests := []struct {
		per100   float64
		quantity float64
		want     int
	}{
		{52, 150, 78},
		{52, 100, 52},
		{52, 1, 1},   // 0.52
		{89, 50, 45}, // 44.5 rounds up
		{0, 300, 0},
		{380.6, 35, 133}, // 133.21
	}

	for _, tt := range tests {
		food := model.Food{Label: "x", Nutrients: model.Nutrients{Calories: tt.per100}}
		item, err := NewMealItem(food, tt.quantity)
		require.NoError(t, err)
		assert.Equal(t, tt.want, item.Calories, "%v kcal/100g x %vg", tt.per100, tt.quantity)
		assert.Equal(t, int(math.Round(tt.per100*tt.quantity/100)), item.Calories)
	}
}

func TestNewMealItemFields(t *testing.T) {
	item, err := NewMealItem(apple(), 150)
	require.NoError(t, err)
	assert.Equal(t, model.MealItem{Name: "Apple", Calories: 78, Quantity: 150, Unit: "g"}, item)
}

func TestNewMealItemRejectsBadQuantity(t *testing.T) {
	for _, q := range []float64{0, -5, math.NaN(), math.Inf(1), MaxQuantity + 1, 1e300} {
		_, err := NewMealItem(apple(), q)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %v", q)
	}

	item, err := NewMealItem(apple(), MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, 52_000, item.Calories)
}

func TestNewMealItemRejectsBadCalories(t *testing.T) {
	for _, kcal := range []float64{-1, math.NaN(), math.Inf(1), MaxCaloriesPer100 + 1, 1e300} {
		food := model.Food{Label: "x", Nutrients: model.Nutrients{Calories: kcal}}
		_, err := NewMealItem(food, 100)
		assert.ErrorIs(t, err, ErrInvalidCalories, "kcal %v", kcal)
	}

	food := model.Food{Label: "x", Nutrients: model.Nutrients{Calories: MaxCaloriesPer100}}
	item, err := NewMealItem(food, MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, 10_000_000, item.Calories)
}

func TestDraftAdd(t *testing.T) {
	d := NewDraft("2025-06-01", model.DayMeals{
		Lunch: []model.MealItem{{Name: "Soup", Calories: 120, Quantity: 250, Unit: "g"}},
	})
	assert.NotNil(t, d.Meals.Breakfast, "slots are normalized")

	item, err := d.Add(model.Snacks, apple(), 150)
	require.NoError(t, err)
	assert.Equal(t, 78, item.Calories)
	assert.Equal(t, 198, d.Meals.Total())
	assert.Len(t, d.Meals.Items(model.Snacks), 1)

	_, err = d.Add("elevenses", apple(), 100)
	assert.ErrorIs(t, err, ErrUnknownSlot)
	_, err = d.Add(model.Dinner, apple(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 198, d.Meals.Total(), "failed adds leave the day unchanged")
}

func TestDates(t *testing.T) {
	assert.Equal(t, "2025-03-09", Today(time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local)))

	got, err := ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", got)

	_, err = ParseDate("31/12/2025")
	assert.Error(t, err)
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("dinner")
	require.NoError(t, err)
	assert.Equal(t, model.Dinner, slot)

	_, err = ParseSlot("Dinner")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}
