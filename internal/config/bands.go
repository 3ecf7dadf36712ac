package config

import "github.com/banshee-data/blockvr/internal/hysteresis"

// WeaponBand assembles the weapon-style enter and exit thresholds.
func (c *BlockConfig) WeaponBand() hysteresis.WeaponBand {
	return hysteresis.WeaponBand{
		Enter: hysteresis.WeaponThresholds{
			SpeedMax:    c.GetMaxSpeedEnter(),
			DownMin:     c.GetHandForwardDotWithHmdDownEnter(),
			ForwardMax:  c.GetHandForwardDotWithHmdForwardEnter(),
			VerticalMax: c.GetHmdToHandVerticalDistanceEnter(),
		},
		Exit: hysteresis.WeaponThresholds{
			SpeedMax:    c.GetMaxSpeedExit(),
			DownMin:     c.GetHandForwardDotWithHmdDownExit(),
			ForwardMax:  c.GetHandForwardDotWithHmdForwardExit(),
			VerticalMax: c.GetHmdToHandVerticalDistanceExit(),
		},
	}
}

// UnarmedBand assembles the unarmed enter and exit thresholds.
func (c *BlockConfig) UnarmedBand() hysteresis.UnarmedBand {
	return hysteresis.UnarmedBand{
		Enter: hysteresis.UnarmedThresholds{
			SpeedMax:    c.GetMaxSpeedUnarmedEnter(),
			OutwardMin:  c.GetHandForwardDotWithHmdRightUnarmedEnter(),
			VerticalMax: c.GetHmdToHandVerticalDistanceUnarmedEnter(),
		},
		Exit: hysteresis.UnarmedThresholds{
			SpeedMax:    c.GetMaxSpeedUnarmedExit(),
			OutwardMin:  c.GetHandForwardDotWithHmdRightUnarmedExit(),
			VerticalMax: c.GetHmdToHandVerticalDistanceUnarmedExit(),
		},
	}
}
