package pool_test

import (
	"testing"

	"github.com/nordholt/portkey/pool"
)

func TestRingBufferFIFO(t *testing.T) {
	r := pool.NewRingBuffer[int](4)
	for i := 0; i < 4; i++ {
		if !r.PushBack(i) {
			t.Fatalf("push %d: unexpected full", i)
		}
	}
	if r.PushBack(99) {
		t.Fatal("expected full ring buffer to reject push")
	}
	for i := 0; i < 4; i++ {
		v, ok := r.PopFront()
		if !ok || v != i {
			t.Fatalf("pop %d: got (%d, %v)", i, v, ok)
		}
	}
	if _, ok := r.PopFront(); ok {
		t.Fatal("expected empty ring buffer")
	}
}

func TestRingBufferLIFOViaPushFront(t *testing.T) {
	r := pool.NewRingBuffer[int](4)
	r.PushBack(0)
	r.PushBack(1)
	r.PushFront(2) // most recently freed
	v, ok := r.PopFront()
	if !ok || v != 2 {
		t.Fatalf("expected LIFO front item 2, got (%d, %v)", v, ok)
	}
}

func TestRingBufferWrapsAround(t *testing.T) {
	r := pool.NewRingBuffer[int](3)
	r.PushBack(1)
	r.PushBack(2)
	r.PopFront()
	r.PushBack(3)
	r.PushBack(4)
	if r.Len() != 3 {
		t.Fatalf("expected len 3, got %d", r.Len())
	}
	var got []int
	for {
		v, ok := r.PopFront()
		if !ok {
			break
		}
		got = append(got, v)
	}
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
