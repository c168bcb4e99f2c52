package core

// Indicator is an out-of-band status signal, the equivalent of a panel LED.
// The engine only ever toggles it as a side effect and never reads it back.
//
// Two indicators are wired into each dispatcher: one toggled on any deadline
// miss or admission skip, one toggled once per completed hyperperiod.
// Implementations must be non-blocking; a slow indicator would eat into the
// frame budget of the tick handler that raises it.
type Indicator interface {
	Toggle()
}

// IndicatorFunc adapts a plain function to the Indicator interface.
type IndicatorFunc func()

func (f IndicatorFunc) Toggle() { f() }

// NoOpIndicator ignores all toggles. It is the default when no indicator is
// configured.
type NoOpIndicator struct{}

func (NoOpIndicator) Toggle() {}
