package entity

import (
	"github.com/tsinghua-fib-lab/streetflow-sim/clock"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	StreetManager() IStreetManager
	IntersectionManager() IIntersectionManager
	VehicleManager() IVehicleManager
	RuntimeConfig() *config.RuntimeConfig
}
