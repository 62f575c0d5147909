package memory

import "sync"

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	locks sync.Map
}

func (k *keyedMutex) Lock(key int64) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
