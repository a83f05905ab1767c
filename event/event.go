package event

// Event is the record handed to every handler of one trigger.
//
// Name and Handled are reset by each Trigger call; Sender is filled with the
// triggering instance when unset; Data is replaced with the data of the
// binding being invoked. Params carries caller-supplied values untouched.
type Event struct {
	Name    string
	Sender  any
	Data    any
	Params  map[string]any
	Handled bool
}

// NewEvent creates a record with the given params (nil means none)
func NewEvent(params map[string]any) *Event {
	if params == nil {
		params = make(map[string]any)
	}
	return &Event{Params: params}
}

// StopPropagation marks the event handled: no further handler runs for
// this trigger, at this level or any ancestor level.
func (e *Event) StopPropagation() {
	e.Handled = true
}

// Param returns a caller-supplied parameter
func (e *Event) Param(key string) (any, bool) {
	v, ok := e.Params[key]
	return v, ok
}

// SetParam sets a parameter, allocating Params when needed
func (e *Event) SetParam(key string, value any) {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
}
