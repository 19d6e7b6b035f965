package tui

import "github.com/agbru/glmeal/internal/orchestration"

// StateMsg carries a controller snapshot into the event loop.
type StateMsg struct {
	State orchestration.State
}

// opKind identifies the controller operation an opDoneMsg reports on.
type opKind int

const (
	opSubmit opKind = iota
	opDisambiguate
	opCalculate
	opReset
)

// opDoneMsg reports the end of a controller operation run as a command.
type opDoneMsg struct {
	op      opKind
	outcome orchestration.SmartOutcome
	smart   bool
	err     error
}

// portionsMsg delivers portion descriptors for the Portions screen. seq
// ties the answer to the lookup that produced it.
type portionsMsg struct {
	seq   int
	infos []orchestration.PortionInfo
}
