// Package schedule turns a schedule document into renderable state: the
// check-in roster, track badges, grid cells, the current day and slot, and
// annotated text. Every function here is total and free of I/O; the current
// instant and the roster are always passed in explicitly.
package schedule
