package taskweaver

// UnknownPolicy decides what the parser does with definitions that match
// no registered kind.
type UnknownPolicy int

const (
	UnknownFallback UnknownPolicy = iota // keep as UnknownTask so validation reports it
	UnknownDrop                          // skip silently, logged at debug level
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownFallback:
		return "fallback"
	case UnknownDrop:
		return "drop"
	default:
		return "unknown"
	}
}
