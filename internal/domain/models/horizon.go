package models

// Horizon is a forward offset, in trading days, for which models are trained.
type Horizon int

const (
	HorizonDay   Horizon = 1
	HorizonWeek  Horizon = 5
	HorizonMonth Horizon = 21
)

// Offset returns the forward shift in trading days.
func (h Horizon) Offset() int { return int(h) }

// Name returns the report key for the horizon.
func (h Horizon) Name() string {
	switch h {
	case HorizonDay:
		return "Tomorrow"
	case HorizonWeek:
		return "Week"
	case HorizonMonth:
		return "Month"
	default:
		return "Unknown"
	}
}

// AllHorizons lists every supported horizon in ascending order.
func AllHorizons() []Horizon {
	return []Horizon{HorizonDay, HorizonWeek, HorizonMonth}
}
