// Package sparse implements sparse-set index structures: a bijection
// between a sparse index space (component ids, entity ids) and a dense
// [0, count) slot space, giving O(1) insert, membership test, lookup, and
// swap-remove. Membership is encoded with a 1-based slot so the sparse
// array can be zero-initialized with 0 meaning "absent", matching
// spec §4.B.
package sparse

import (
	"fmt"

	"github.com/kestrelforge/strata/internal/blob"
)

// Set is a typed sparse set: dense values of type T, indexed by an integer
// sparse key.
type Set[T any] struct {
	sparse  []int // 1-based slot, 0 = absent
	dense   []T
	indices []int // dense[k] belongs to sparse index indices[k]
}

// New returns an empty typed sparse set.
func New[T any]() *Set[T] {
	return &Set[T]{}
}

// Len reports the number of stored values.
func (s *Set[T]) Len() int {
	return len(s.dense)
}

// Contains reports whether index currently holds a value.
func (s *Set[T]) Contains(index int) bool {
	return index >= 0 && index < len(s.sparse) && s.sparse[index] != 0
}

// GetOpt returns a pointer to the value at index, or nil if absent.
func (s *Set[T]) GetOpt(index int) *T {
	if !s.Contains(index) {
		return nil
	}
	return &s.dense[s.sparse[index]-1]
}

// GetOrCreate returns a pointer to the value at index, creating a
// zero-valued entry (growing sparse with zero fill as needed) if absent.
func (s *Set[T]) GetOrCreate(index int) *T {
	if index < 0 {
		panic(fmt.Sprintf("sparse: negative index %d", index))
	}
	if index >= len(s.sparse) {
		grown := make([]int, index+1)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	if s.sparse[index] == 0 {
		var zero T
		s.dense = append(s.dense, zero)
		s.indices = append(s.indices, index)
		s.sparse[index] = len(s.dense)
	}
	return &s.dense[s.sparse[index]-1]
}

// SwapRemove removes the value at index and returns it. It panics if index
// is absent, matching the "asserts presence" contract in spec §4.B.
func (s *Set[T]) SwapRemove(index int) T {
	if !s.Contains(index) {
		panic(fmt.Sprintf("sparse: swap-remove of absent index %d", index))
	}
	slot := s.sparse[index] - 1
	removed := s.dense[slot]
	last := len(s.dense) - 1

	s.sparse[index] = 0
	if slot != last {
		s.dense[slot] = s.dense[last]
		s.indices[slot] = s.indices[last]
		s.sparse[s.indices[slot]] = slot + 1
	}
	s.dense = s.dense[:last]
	s.indices = s.indices[:last]
	return removed
}

// Dense exposes the dense backing array for read-only iteration.
func (s *Set[T]) Dense() []T {
	return s.dense
}

// DenseIndices exposes the sparse index owning each dense slot, parallel
// to Dense.
func (s *Set[T]) DenseIndices() []int {
	return s.indices
}

// BlobSet is the opaque-value counterpart of Set, backing component
// columns: the dense array is a blob.Vector of fixed-size rows rather than
// a Go slice of T.
type BlobSet struct {
	sparse  []int
	dense   *blob.Vector
	indices []int
}

// NewBlob returns an empty blob sparse set whose dense rows are itemSize
// bytes each.
func NewBlob(itemSize int) *BlobSet {
	return &BlobSet{dense: blob.New(itemSize)}
}

// Len reports the number of stored rows.
func (s *BlobSet) Len() int {
	return s.dense.Len()
}

// Contains reports whether index currently holds a row.
func (s *BlobSet) Contains(index int) bool {
	return index >= 0 && index < len(s.sparse) && s.sparse[index] != 0
}

// BytesAt returns the row bytes for index, or nil if absent.
func (s *BlobSet) BytesAt(index int) []byte {
	if !s.Contains(index) {
		return nil
	}
	return s.dense.BytesAt(s.sparse[index] - 1)
}

// Reserve grows the backing blob vector to at least n rows.
func (s *BlobSet) Reserve(n int) {
	s.dense.Reserve(n)
}

// Insert appends src as the row for index, growing capacity first if
// necessary. Re-inserting an already-present index overwrites its row in
// place rather than appending a duplicate.
func (s *BlobSet) Insert(index int, src []byte) {
	if index < 0 {
		panic(fmt.Sprintf("sparse: negative index %d", index))
	}
	if index >= len(s.sparse) {
		grown := make([]int, index+1)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	if s.sparse[index] != 0 {
		copy(s.dense.BytesAt(s.sparse[index]-1), src)
		return
	}
	if s.dense.Len() >= s.dense.Capacity() {
		s.dense.Reserve(max(1, s.dense.Capacity()*2))
	}
	s.dense.PushBytes(src)
	s.indices = append(s.indices, index)
	s.sparse[index] = s.dense.Len()
}

// Discard swap-removes the row at index, shrinking the dense and indices
// arrays by exactly one. This corrects the source-language bug noted in
// spec §9 where the analogous operation left the indices array's length
// inconsistent with the dense array's.
func (s *BlobSet) Discard(index int) {
	if !s.Contains(index) {
		panic(fmt.Sprintf("sparse: discard of absent index %d", index))
	}
	slot := s.sparse[index] - 1
	last := s.dense.Len() - 1

	s.sparse[index] = 0
	if slot != last {
		s.dense.Swap(slot, last)
		s.indices[slot] = s.indices[last]
		s.sparse[s.indices[slot]] = slot + 1
	}
	var discarded []byte
	if s.dense.ItemSize() != 0 {
		discarded = make([]byte, s.dense.ItemSize())
	}
	s.dense.PopBytes(discarded)
	s.indices = s.indices[:last]
}

// Dense exposes the backing blob vector for column-level access.
func (s *BlobSet) Dense() *blob.Vector {
	return s.dense
}

// DenseIndices exposes the sparse index owning each dense row, parallel to
// Dense's rows.
func (s *BlobSet) DenseIndices() []int {
	return s.indices
}
