package locks

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestAcquireSerializesSameAddress(t *testing.T) {
	m := NewManager()
	addr := common.BytesToHash([]byte("user-proof"))

	var holders int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := m.Acquire(addr)
			defer release()

			if atomic.AddInt32(&holders, 1) != 1 {
				t.Errorf("more than one goroutine held the lock for %v at once", addr)
			}
			atomic.AddInt32(&holders, -1)
		}()
	}
	wg.Wait()
}

func TestAcquireDistinctAddressesDoNotBlockEachOther(t *testing.T) {
	m := NewManager()
	a := common.BytesToHash([]byte("account-a"))
	b := common.BytesToHash([]byte("account-b"))

	releaseA := m.Acquire(a)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB := m.Acquire(b)
		defer releaseB()
		close(done)
	}()

	<-done
}

func TestAcquireSameSetReverseOrderNoDeadlock(t *testing.T) {
	m := NewManager()
	a := common.BytesToHash([]byte("x"))
	b := common.BytesToHash([]byte("y"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		release := m.Acquire(a, b)
		release()
	}()
	go func() {
		defer wg.Done()
		release := m.Acquire(b, a)
		release()
	}()
	wg.Wait()
}

func TestAcquireDedupesDuplicateAddresses(t *testing.T) {
	m := NewManager()
	addr := common.BytesToHash([]byte("dup"))

	release := m.Acquire(addr, addr, addr)
	release()
}
