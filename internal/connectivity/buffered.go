package connectivity

import "sync"

// defaultBufferSize is used by WatchBuffered when size is not positive.
const defaultBufferSize = 64

// Watcher registers change observers. *Tracker implements it.
type Watcher interface {
	Watch(fn ChangeFunc) (cancel func())
}

// WatchBuffered registers fn with w through a queue of size changes. fn runs
// on its own goroutine, in transition order, so a slow fn never holds up the
// goroutine that mutates the tracker. A change arriving while the queue is
// full is handed to onDrop, when set, and discarded.
//
// cancel returns once every change already queued has been handled.
// It is safe to call more than once.
func WatchBuffered(w Watcher, size int, fn ChangeFunc, onDrop ChangeFunc) (cancel func()) {
	if size <= 0 {
		size = defaultBufferSize
	}
	queue := make(chan Change, size)
	stop := make(chan struct{})
	done := make(chan struct{})

	unwatch := w.Watch(func(c Change) {
		select {
		case <-stop:
			return
		default:
		}
		select {
		case queue <- c:
		default:
			if onDrop != nil {
				onDrop(c)
			}
		}
	})

	go func() {
		defer close(done)
		for {
			select {
			case c := <-queue:
				fn(c)
			case <-stop:
				for {
					select {
					case c := <-queue:
						fn(c)
					default:
						return
					}
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unwatch()
			close(stop)
			<-done
		})
	}
}
