//go:build tinygo

package main

import (
	"dotclock/app"
	"dotclock/clockos/clock"
	"dotclock/hal"
)

func main() {
	app.Run(hal.New(), app.Config{Settings: clock.DefaultSettings()})
}
