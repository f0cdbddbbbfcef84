package models

// Macros holds the four tracked quantities, either as consumed totals or goals.
type Macros struct {
	Calories float64 `json:"calories"`
	Carbs    float64 `json:"carbs"`
	Protein  float64 `json:"protein"`
	Fiber    float64 `json:"fiber"`
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Carbs:    m.Carbs + o.Carbs,
		Protein:  m.Protein + o.Protein,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Map applies fn to every macro.
func (m Macros) Map(fn func(float64) float64) Macros {
	return Macros{
		Calories: fn(m.Calories),
		Carbs:    fn(m.Carbs),
		Protein:  fn(m.Protein),
		Fiber:    fn(m.Fiber),
	}
}
