// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"context"
	"sync"
)

// defaultHistoryLimit bounds the undo stack of a session.
const defaultHistoryLimit = 100

type (
	// record is one reversible invocation.
	record struct {
		cmd Command
		inv *Invocation
	}

	// history keeps the undo and redo stacks of one session.
	history struct {
		mu    sync.Mutex
		limit int
		undo  []record
		redo  []record
	}
)

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &history{limit: limit}
}

// push records a fresh invocation and drops the redo stack.
func (h *history) push(cmd Command, inv *Invocation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = append(h.undo, record{cmd: cmd, inv: inv})
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Undo reverts the most recent reversible invocation of this session.
func (e *Evaluator) Undo(ctx context.Context) error {
	h := e.history
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	rec := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.mu.Unlock()

	if err := rec.cmd.Undo(ctx, rec.inv); err != nil {
		h.mu.Lock()
		h.undo = append(h.undo, rec)
		h.mu.Unlock()
		return &CommandError{Name: rec.inv.Name, Err: err}
	}

	h.mu.Lock()
	h.redo = append(h.redo, rec)
	h.mu.Unlock()
	e.logger.Debug("undid invocation", "command", rec.inv.Name)
	return nil
}

// Redo re-applies the most recently undone invocation.
func (e *Evaluator) Redo(ctx context.Context) error {
	h := e.history
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	rec := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.mu.Unlock()

	if err := rec.cmd.Redo(ctx, rec.inv); err != nil {
		h.mu.Lock()
		h.redo = append(h.redo, rec)
		h.mu.Unlock()
		return &CommandError{Name: rec.inv.Name, Err: err}
	}

	h.mu.Lock()
	h.undo = append(h.undo, rec)
	h.mu.Unlock()
	e.logger.Debug("redid invocation", "command", rec.inv.Name)
	return nil
}

func isReversible(cmd Command) bool {
	r, ok := cmd.(Reversible)
	return ok && r.Reversible()
}
