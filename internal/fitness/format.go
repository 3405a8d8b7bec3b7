package fitness

import "fmt"

const (
	kmPerMile  = 1.60934
	milesPerKm = 0.621371
)

// FormatPace renders a min/km pace as "M:SS/mi (M:SS/km)"
func FormatPace(minPerKm float64) string {
	return fmt.Sprintf("%s/mi (%s/km)", clock(minPerKm*kmPerMile), clock(minPerKm))
}

// FormatDistance renders kilometers as "X.X mi / Y.Y km"
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f mi / %.1f km", km*milesPerKm, km)
}

func clock(minutes float64) string {
	if minutes <= 0 {
		return "-"
	}
	m := int(minutes)
	s := int((minutes - float64(m)) * 60)
	return fmt.Sprintf("%d:%02d", m, s)
}
