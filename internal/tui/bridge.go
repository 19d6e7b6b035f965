package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/glmeal/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// bubbletea copies the model on every Update, so the controller subscription
// needs a pointer that survives copies to send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe). It is a no-op
// before SetProgram.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// forwardState is registered with Controller.Subscribe. Send blocks until
// the event loop takes the message, so snapshots reach Update in commit
// order and before the result message of the command that caused them.
// Update must therefore never call a mutating controller operation itself;
// those run inside commands.
func (r *programRef) forwardState(s orchestration.State) {
	r.Send(StateMsg{State: s})
}
