package strata

import (
	"fmt"
	"unsafe"

	"github.com/kestrelforge/strata/internal/blob"
	"github.com/kestrelforge/strata/internal/sparse"
)

// column is one archetype's storage for a single component, per spec
// §3's ComponentColumn: component_id, drop_fn, and a row-major blob vector
// of itemSize-byte rows.
type column struct {
	componentID ComponentID
	descriptor  ComponentDescriptor
	rows        *blob.Vector
}

func newColumn(id ComponentID, desc ComponentDescriptor) *column {
	return &column{
		componentID: id,
		descriptor:  desc,
		rows:        blob.New(int(desc.Size)),
	}
}

func (c *column) reserve(n int) {
	c.rows.Reserve(n)
}

func (c *column) dropRow(row int) {
	if c.descriptor.DropFn == nil {
		return
	}
	bytes := c.rows.BytesAt(row)
	if len(bytes) == 0 {
		c.descriptor.DropFn(nil)
		return
	}
	c.descriptor.DropFn(unsafe.Pointer(&bytes[0]))
}

// table is one archetype's storage, per spec §4.E: a column set plus a
// parallel roster of the entities occupying each row. The column set is
// fixed once the table has any rows.
type table struct {
	columns  *sparse.Set[*column] // keyed by ComponentID
	entities []Entity
	frozen   bool
}

func newTable() *table {
	return &table{columns: sparse.New[*column]()}
}

// addColumn registers a column for componentID. Per spec §4.E this is only
// valid before the table has any rows; calling it afterward is a
// programmer error.
func (t *table) addColumn(id ComponentID, desc ComponentDescriptor) *column {
	if t.frozen {
		panic(fmt.Sprintf("strata: add_column after rows exist (component %s)", desc.TypeName))
	}
	if t.columns.Contains(int(id)) {
		panic(fmt.Sprintf("strata: duplicate add_column for component %s", desc.TypeName))
	}
	col := newColumn(id, desc)
	col.reserve(Config.DefaultTableCapacity)
	*t.columns.GetOrCreate(int(id)) = col
	return col
}

func (t *table) hasColumn(id ComponentID) bool {
	return t.columns.Contains(int(id))
}

func (t *table) column(id ComponentID) *column {
	c := t.columns.GetOpt(int(id))
	if c == nil {
		return nil
	}
	return *c
}

func (t *table) componentIDs() []ComponentID {
	ids := make([]ComponentID, 0, t.columns.Len())
	for _, idx := range t.columns.DenseIndices() {
		ids = append(ids, ComponentID(idx))
	}
	return ids
}

func (t *table) len() int {
	return len(t.entities)
}

// capacity reports the table's current row capacity, shared uniformly
// across entities and every column per the invariant in spec §4.E. Callers
// use it to detect capacity growth around addEntity/transferRow calls,
// since table itself carries no logger to report growth with.
func (t *table) capacity() int {
	return cap(t.entities)
}

func (t *table) reserve(n int) {
	if cap(t.entities) < n {
		grown := make([]Entity, len(t.entities), n)
		copy(grown, t.entities)
		t.entities = grown
	}
	for _, col := range t.columns.Dense() {
		col.reserve(n)
	}
}

// addEntity appends e to the roster and extends every column's logical
// length by one row (zero-valued), growing capacity uniformly first when
// needed. It returns the new row index.
func (t *table) addEntity(e Entity) int {
	t.frozen = true
	if len(t.entities) >= cap(t.entities) {
		newCap := max(Config.DefaultTableCapacity, cap(t.entities)*2)
		t.reserve(newCap)
	}
	t.entities = append(t.entities, e)
	row := len(t.entities) - 1
	for _, col := range t.columns.Dense() {
		if col.rows.Len() >= col.rows.Capacity() {
			col.reserve(max(1, col.rows.Capacity()*2))
		}
		zero := make([]byte, col.descriptor.Size)
		col.rows.PushBytes(zero)
	}
	return row
}

// swapRemove removes row, dropping every column's value there first, then
// swap-removing the hole. It returns the entity that moved into the hole,
// if any.
func (t *table) swapRemove(row int) *Entity {
	for _, col := range t.columns.Dense() {
		col.dropRow(row)
		col.rows.SwapRemove(row)
	}
	last := len(t.entities) - 1
	var replacement *Entity
	if row != last {
		t.entities[row] = t.entities[last]
		replacement = &t.entities[row]
	}
	t.entities = t.entities[:last]
	return replacement
}

// transferRow moves the row at row_index from t into dst, which must have
// a column set that is a superset of t's. Shared columns are copied
// byte-wise (ownership moves, no drop); columns present only in t are
// dropped. It returns the entity that replaced the vacated row in t (if
// any) and the new row index in dst.
func (t *table) transferRow(row int, dst *table, e Entity) (*Entity, int) {
	dstRow := dst.addEntity(e)
	for _, col := range t.columns.Dense() {
		if dstCol := dst.column(col.componentID); dstCol != nil {
			copy(dstCol.rows.BytesAt(dstRow), col.rows.BytesAt(row))
		} else {
			col.dropRow(row)
		}
		col.rows.SwapRemove(row)
	}
	last := len(t.entities) - 1
	var replacement *Entity
	if row != last {
		t.entities[row] = t.entities[last]
		replacement = &t.entities[row]
	}
	t.entities = t.entities[:last]
	return replacement, dstRow
}
