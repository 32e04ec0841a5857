package model

import "fmt"

// Profile holds body measurements and goals.
type Profile struct {
	Username        string `json:"username"`
	Email           string `json:"email,omitempty"`
	Weight          Number `json:"weight"`
	Height          Number `json:"height"`
	CalorieGoal     Number `json:"calorieGoal"`
	WaterIntakeGoal Number `json:"waterIntakeGoal"`
	WeightGoal      Number `json:"weightGoal"`
	ArmSize         Number `json:"armSize"`
	ChestSize       Number `json:"chestSize"`
	QuadsSize       Number `json:"quadsSize"`
	ForearmSize     Number `json:"forearmSize"`
}

// Default goals used when the profile has none set.
const (
	DefaultCalorieGoal = 2000
	DefaultWaterGoal   = 3
)

// CalorieGoalOrDefault returns the calorie goal, or DefaultCalorieGoal if unset.
func (p *Profile) CalorieGoalOrDefault() float64 {
	if p == nil || p.CalorieGoal <= 0 {
		return DefaultCalorieGoal
	}
	return float64(p.CalorieGoal)
}

// WaterGoalOrDefault returns the water goal in liters, or DefaultWaterGoal if unset.
func (p *Profile) WaterGoalOrDefault() float64 {
	if p == nil || p.WaterIntakeGoal <= 0 {
		return DefaultWaterGoal
	}
	return float64(p.WaterIntakeGoal)
}

// ProfileField describes one editable profile field.
type ProfileField struct {
	Name  string
	Label string
}

// ProfileFields lists the editable fields in display order.
var ProfileFields = []ProfileField{
	{"username", "Username"},
	{"weight", "Weight (kg)"},
	{"height", "Height (cm)"},
	{"calorieGoal", "Calorie Goal"},
	{"waterIntakeGoal", "Water Intake Goal (L)"},
	{"weightGoal", "Weight Goal (kg)"},
	{"armSize", "Arm Size (in)"},
	{"chestSize", "Chest Size (in)"},
	{"quadsSize", "Quads Size (in)"},
	{"forearmSize", "Forearm Size (in)"},
}

// Field returns the display value of a profile field by its JSON name.
func (p *Profile) Field(name string) string {
	if ptr := p.number(name); ptr != nil {
		return ptr.String()
	}
	if name == "username" {
		return p.Username
	}
	return ""
}

// SetField sets a profile field by its JSON name. It reports whether the
// value changed.
func (p *Profile) SetField(name, value string) (bool, error) {
	if name == "username" {
		changed := p.Username != value
		p.Username = value
		return changed, nil
	}

	ptr := p.number(name)
	if ptr == nil {
		return false, fmt.Errorf("unknown profile field %q", name)
	}
	v, err := ParseNumber(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	changed := *ptr != v
	*ptr = v
	return changed, nil
}

func (p *Profile) number(name string) *Number {
	switch name {
	case "weight":
		return &p.Weight
	case "height":
		return &p.Height
	case "calorieGoal":
		return &p.CalorieGoal
	case "waterIntakeGoal":
		return &p.WaterIntakeGoal
	case "weightGoal":
		return &p.WeightGoal
	case "armSize":
		return &p.ArmSize
	case "chestSize":
		return &p.ChestSize
	case "quadsSize":
		return &p.QuadsSize
	case "forearmSize":
		return &p.ForearmSize
	}
	return nil
}
