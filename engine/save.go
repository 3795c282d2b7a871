package engine

// SaveFunc persists the conversation tree after a successful mutation.
// Engines call it last, once their state is fully consistent
// (mutate-then-notify). A nil SaveFunc is a no-op.
type SaveFunc func()

// Fire invokes the callback if set.
func (f SaveFunc) Fire() {
	if f != nil {
		f()
	}
}
