package interact

import (
	"github.com/TFMV/forcegraph/errors"
)

// Config bounds zoom and tunes gesture handling
type Config struct {
	ScaleMin         float64 `mapstructure:"scale_min"`
	ScaleMax         float64 `mapstructure:"scale_max"`
	WheelSensitivity float64 `mapstructure:"wheel_sensitivity"` // scale *= 2^(-deltaY * sensitivity)
	ClickTolerance   float64 `mapstructure:"click_tolerance"`   // pixels a press may travel and still count as a click
	DragReheat       float64 `mapstructure:"drag_reheat"`       // temperature added when a drag starts
	DragTemperature  float64 `mapstructure:"drag_temperature"`  // floor kept while a drag is in progress
}

// DefaultConfig returns the zoom range [0.1, 4] used by the network view
func DefaultConfig() Config {
	return Config{
		ScaleMin:         0.1,
		ScaleMax:         4,
		WheelSensitivity: 0.002,
		ClickTolerance:   3,
		DragReheat:       0.3,
		DragTemperature:  0.3,
	}
}

// Validate rejects an empty or inverted zoom range and out-of-range temperatures
func (c Config) Validate() error {
	switch {
	case !(c.ScaleMin > 0):
		return errors.NewInvalidConfigError("scale_min = %v, must be > 0", c.ScaleMin)
	case !(c.ScaleMax >= c.ScaleMin):
		return errors.WithHint(
			errors.NewInvalidConfigError("scale_max = %v is below scale_min = %v", c.ScaleMax, c.ScaleMin),
			"scale_min must not exceed scale_max",
		)
	case !(c.WheelSensitivity > 0):
		return errors.NewInvalidConfigError("wheel_sensitivity = %v, must be > 0", c.WheelSensitivity)
	case !(c.ClickTolerance >= 0):
		return errors.NewInvalidConfigError("click_tolerance = %v, must be >= 0", c.ClickTolerance)
	case !(c.DragReheat >= 0 && c.DragReheat <= 1):
		return errors.NewInvalidConfigError("drag_reheat = %v, must be in [0,1]", c.DragReheat)
	case !(c.DragTemperature >= 0 && c.DragTemperature <= 1):
		return errors.NewInvalidConfigError("drag_temperature = %v, must be in [0,1]", c.DragTemperature)
	}
	return nil
}
