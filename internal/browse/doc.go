// Package browse holds the state controllers that sit between a presentation
// layer and the query layer.
//
// Each controller pairs a pure transition function (ReduceList, ReduceDetail)
// with a small amount of mutable bookkeeping: the pagination cursor, the
// has-more flag and the debounce timer. Presentation code reads snapshots via
// State and subscribes for change events; it never mutates state directly.
package browse
