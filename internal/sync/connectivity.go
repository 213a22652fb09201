package sync

// SetOnline feeds a network-reachability transition into the engine. Going
// offline is silent; the offline-to-online transition surfaces exactly one
// "back online" notice regardless of how long the offline period lasted.
// Writes attempted while offline are not queued or replayed here; the
// transport's own retry behavior covers them.
func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	was := e.online
	e.online = online
	e.mu.Unlock()

	if online && !was {
		e.notifier.Show(msgBackOnline)
	}
}

// Online reports the last known reachability state.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}
