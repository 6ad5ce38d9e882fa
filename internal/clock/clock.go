package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so SLA checks and scheduler jobs are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
