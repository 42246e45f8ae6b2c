package history

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestAddAndList(t *testing.T) {
	r := New(3)
	r.Add("job-1")
	r.Add("job-2")
	r.Add("job-3")

	expected := []string{"job-3", "job-2", "job-1"}
	if got := r.List(); !reflect.DeepEqual(got, expected) {
		t.Errorf("List() = %v, want %v", got, expected)
	}
}

func TestAddEvictsOldest(t *testing.T) {
	r := New(2)
	r.Add("a")
	r.Add("b")
	r.Add("c")

	expected := []string{"c", "b"}
	if got := r.List(); !reflect.DeepEqual(got, expected) {
		t.Errorf("List() = %v, want %v", got, expected)
	}
}

func TestAddMovesExistingToFront(t *testing.T) {
	r := New(3)
	r.Add("a")
	r.Add("b")
	r.Add("a")

	expected := []string{"a", "b"}
	if got := r.List(); !reflect.DeepEqual(got, expected) {
		t.Errorf("List() = %v, want %v", got, expected)
	}
}

func TestNewDefaultLimit(t *testing.T) {
	r := New(0)
	for i := 0; i < DefaultLimit+5; i++ {
		r.Add(fmt.Sprintf("job-%d", i))
	}
	if got := len(r.List()); got != DefaultLimit {
		t.Errorf("len = %d, want %d", got, DefaultLimit)
	}
}

func TestConcurrentAdds(t *testing.T) {
	r := New(DefaultLimit)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("job-%d", i%7))
			r.List()
		}(i)
	}
	wg.Wait()

	if got := len(r.List()); got > 7 {
		t.Errorf("len = %d, want at most 7 distinct IDs", got)
	}
}
