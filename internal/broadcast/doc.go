// Package broadcast implements the lossy one-to-many fan-out of display updates.
//
// Every subscriber owns a bounded mailbox. Announce never blocks: a subscriber
// whose mailbox is full is treated as gone and evicted. A single mutex guards
// the subscriber set; contention is low (writes on subscribe/evict, one
// announce per tick).
package broadcast
