// Package proto holds the message kinds, scroll tags and remote line commands shared
// between the clock core, its services and external collaborators.
package proto

import "dotclock/clockos/setup"

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgEnterSetup
	MsgForceStep
)

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgEnterSetup:
		return "enter_setup"
	case MsgForceStep:
		return "force_step"
	default:
		return "unknown"
	}
}

// LogLinePayload copies b for a MsgLogLine payload: UTF-8 without a trailing newline.
// Delivery is best-effort; senders drop on overflow.
func LogLinePayload(b []byte) []byte {
	if b == nil {
		return nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// EnterSetupPayload encodes a MsgEnterSetup payload.
func EnterSetupPayload(m setup.Mode) []byte { return []byte{byte(m)} }

// DecodeEnterSetup decodes a MsgEnterSetup payload.
func DecodeEnterSetup(payload []byte) (setup.Mode, bool) {
	if len(payload) != 1 {
		return setup.ModeNone, false
	}
	return setup.Mode(payload[0]), true
}

// ForceStepPayload encodes a MsgForceStep payload.
func ForceStepPayload(s setup.Step) []byte { return []byte{byte(s)} }

// DecodeForceStep decodes a MsgForceStep payload.
func DecodeForceStep(payload []byte) (setup.Step, bool) {
	if len(payload) != 1 || setup.Step(payload[0]) >= setup.NumSteps {
		return setup.StepNone, false
	}
	return setup.Step(payload[0]), true
}
