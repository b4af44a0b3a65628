// Package pool provides the fixed-capacity building blocks the rest of
// portkey is built on: a bounded ring buffer and an index-stable slot
// allocator with O(1) allocate/free. Nothing in this package allocates
// after construction.
package pool
