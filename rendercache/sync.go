package rendercache

import "golang.org/x/sync/singleflight"

// parallelGroup runs at most n distinct calls at once,
// and collapses concurrent calls with the same key.
type parallelGroup struct {
	ch chan struct{}
	g  singleflight.Group
}

func newParallelGroup(n int) *parallelGroup {
	if n < 1 {
		n = 1
	}
	return &parallelGroup{ch: make(chan struct{}, n)}
}

// Do runs fn for key unless a call for key is already running, in which
// case it waits for that call and returns its pixels or error. Cache
// lookups and renders for one dataset and config share a key, so a burst
// of identical requests renders once.
func (p *parallelGroup) Do(key string, fn func() (interface{}, error)) (interface{}, error) {
	v, err, _ := p.g.Do(key, func() (interface{}, error) {
		p.ch <- struct{}{}
		defer func() {
			<-p.ch
		}()
		return fn()
	})
	return v, err
}
