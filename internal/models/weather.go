package models

// KelvinOffset is the difference between the Kelvin and Celsius scales.
const KelvinOffset = 273.15

// WeatherData is the typed result of one successful fetch. It is built fresh
// per call and not mutated afterwards.
type WeatherData struct {
	CityName             string  `json:"cityName"`
	TemperatureInCelsius float64 `json:"temperatureInCelsius"`
	PrimaryDescription   string  `json:"primaryDescription"`
	IsValid              bool    `json:"isValid"`
}

// KelvinToCelsius converts an upstream temperature reading to Celsius.
func KelvinToCelsius(kelvin float64) float64 {
	return kelvin - KelvinOffset
}
