package position

import (
	"sync"
)

// LiveSource forwards a watcher's stream. Errors never end the watch.
type LiveSource struct {
	watcher Watcher

	mu     sync.Mutex
	id     WatchID
	active bool
}

// NewLive creates a live source. A nil watcher makes Start fail with ErrUnsupported.
func NewLive(w Watcher) *LiveSource {
	return &LiveSource{watcher: w}
}

func (l *LiveSource) Mode() Mode { return Live }

// Start subscribes to the watcher with high accuracy.
func (l *LiveSource) Start(sink Sink) error {
	if l.watcher == nil {
		return ErrUnsupported
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		return nil
	}

	id, err := l.watcher.Watch(
		func(s Sample) { sink.HandleSample(l, s) },
		func(err error) { sink.HandleError(l, err) },
		HighAccuracy,
	)
	if err != nil {
		return err
	}
	l.id = id
	l.active = true
	return nil
}

// Stop clears the watch. Calling it again is a no-op.
func (l *LiveSource) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.watcher.ClearWatch(l.id)
	l.active = false
}

// Active reports whether a watch is registered.
func (l *LiveSource) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}
