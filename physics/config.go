package physics

import (
	"math"

	"github.com/TFMV/forcegraph/errors"
)

// Config holds the constants of the force model and the cooling schedule.
type Config struct {
	// Link (spring) force
	LinkDistanceBase   float64 `mapstructure:"link_distance_base"`   // Rest length of a zero-weight link
	LinkDistanceFactor float64 `mapstructure:"link_distance_factor"` // Rest length lost per unit of weight
	MinLinkDistance    float64 `mapstructure:"min_link_distance"`    // Floor for the rest length
	LinkStrengthScale  float64 `mapstructure:"link_strength_scale"`  // strength = weight / scale, clamped to [0,1]

	// Repulsion (charge) force
	RepulsionBase   float64 `mapstructure:"repulsion_base"`   // Charge of an importance-0 node
	RepulsionFactor float64 `mapstructure:"repulsion_factor"` // Charge added per unit of importance
	MinDistance     float64 `mapstructure:"min_distance"`     // Singularity floor for charge distance

	// Barnes-Hut approximation for large graphs; 0 disables it
	BarnesHutThreshold int     `mapstructure:"barnes_hut_threshold"`
	Theta              float64 `mapstructure:"theta"`

	// Centering and collision
	CenteringStrength float64 `mapstructure:"centering_strength"`
	CollisionPadding  float64 `mapstructure:"collision_padding"`  // Added to the visual radius
	CollisionStrength float64 `mapstructure:"collision_strength"` // Fraction of the overlap resolved per step

	// Integration and cooling
	VelocityDamping float64 `mapstructure:"velocity_damping"`
	DecayRate       float64 `mapstructure:"decay_rate"`
	MinTemperature  float64 `mapstructure:"min_temperature"`

	// Seed for the initial placement noise
	Seed int64 `mapstructure:"seed"`
}

// DefaultConfig returns the configuration used by the network view:
// rest length 100-5w, strength w/10, charge 400+30*importance, and a cooling
// schedule that reaches the floor in 300 steps.
func DefaultConfig() Config {
	return Config{
		LinkDistanceBase:   100,
		LinkDistanceFactor: 5,
		MinLinkDistance:    10,
		LinkStrengthScale:  10,
		RepulsionBase:      400,
		RepulsionFactor:    30,
		MinDistance:        1,
		BarnesHutThreshold: 200,
		Theta:              0.9,
		CenteringStrength:  0.05,
		CollisionPadding:   5,
		CollisionStrength:  0.7,
		VelocityDamping:    0.6,
		DecayRate:          math.Pow(0.001, 1.0/300),
		MinTemperature:     0.001,
		Seed:               1,
	}
}

// Validate rejects configurations the simulation cannot run with
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
		want string
		val  float64
	}{
		{"link_distance_base", c.LinkDistanceBase > 0, "> 0", c.LinkDistanceBase},
		{"link_distance_factor", c.LinkDistanceFactor >= 0, ">= 0", c.LinkDistanceFactor},
		{"min_link_distance", c.MinLinkDistance > 0, "> 0", c.MinLinkDistance},
		{"link_strength_scale", c.LinkStrengthScale > 0, "> 0", c.LinkStrengthScale},
		{"repulsion_base", c.RepulsionBase >= 0, ">= 0", c.RepulsionBase},
		{"repulsion_factor", c.RepulsionFactor >= 0, ">= 0", c.RepulsionFactor},
		{"min_distance", c.MinDistance > 0, "> 0", c.MinDistance},
		{"barnes_hut_threshold", c.BarnesHutThreshold >= 0, ">= 0", float64(c.BarnesHutThreshold)},
		{"theta", c.BarnesHutThreshold == 0 || c.Theta > 0, "> 0", c.Theta},
		{"centering_strength", c.CenteringStrength >= 0, ">= 0", c.CenteringStrength},
		{"collision_padding", c.CollisionPadding >= 0, ">= 0", c.CollisionPadding},
		{"collision_strength", c.CollisionStrength >= 0 && c.CollisionStrength <= 1, "in [0,1]", c.CollisionStrength},
		{"velocity_damping", c.VelocityDamping > 0 && c.VelocityDamping <= 1, "in (0,1]", c.VelocityDamping},
		{"decay_rate", c.DecayRate > 0 && c.DecayRate < 1, "in (0,1)", c.DecayRate},
		{"min_temperature", c.MinTemperature > 0 && c.MinTemperature < 1, "in (0,1)", c.MinTemperature},
	}

	for _, check := range checks {
		// NaN fails every comparison above, so it is rejected here too
		if !check.ok {
			return errors.WithHint(
				errors.NewInvalidConfigError("%s = %v, must be %s", check.name, check.val, check.want),
				"check the [physics] section of the configuration file",
			)
		}
	}
	return nil
}

// restDistance returns the spring rest length for an edge weight
func (c *Config) restDistance(weight float64) float64 {
	return math.Max(c.MinLinkDistance, c.LinkDistanceBase-weight*c.LinkDistanceFactor)
}

// linkStrength returns the spring stiffness for an edge weight
func (c *Config) linkStrength(weight float64) float64 {
	return math.Min(1, math.Max(0, weight/c.LinkStrengthScale))
}

// charge returns the repulsion strength of a node
func (c *Config) charge(importance int) float64 {
	return c.RepulsionBase + float64(importance)*c.RepulsionFactor
}

// RestDistance exposes the derived rest length of an edge weight
func (c Config) RestDistance(weight float64) float64 { return c.restDistance(weight) }

// LinkStrength exposes the derived link strength of an edge weight
func (c Config) LinkStrength(weight float64) float64 { return c.linkStrength(weight) }
