package model

// Nutrients are per 100 g of a food.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// Food is a candidate returned by the food database.
type Food struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	Nutrients Nutrients `json:"nutrients"`
}

// ExerciseInfo is a candidate returned by the exercise database.
type ExerciseInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Target    string `json:"target"`
	BodyPart  string `json:"bodyPart"`
	Equipment string `json:"equipment"`
	GifURL    string `json:"gifUrl"`
}
