package webhook

// State is a step of the inbound webhook pipeline
type State string

const (
	StateReceived                State = "RECEIVED"
	StateRawBodyCaptured         State = "RAW_BODY_CAPTURED"
	StateSignatureVerified       State = "SIGNATURE_VERIFIED"
	StateEventParsed             State = "EVENT_PARSED"
	StateDispatched              State = "DISPATCHED"
	StateAcknowledged            State = "ACKNOWLEDGED"
	StateAcknowledgedWithWarning State = "ACKNOWLEDGED_WITH_WARNING"
	StateRejected                State = "REJECTED"
)

// IsTerminal reports whether the pipeline stops at s
func (s State) IsTerminal() bool {
	switch s {
	case StateAcknowledged, StateAcknowledgedWithWarning, StateRejected:
		return true
	default:
		return false
	}
}

// IsAcknowledged reports whether the provider is told the delivery was received
func (s State) IsAcknowledged() bool {
	return s == StateAcknowledged || s == StateAcknowledgedWithWarning
}

func (s State) String() string {
	return string(s)
}
