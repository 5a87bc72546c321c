package badger

import (
	"fmt"

	"github.com/poiesic/bookvec/core"
)

// Key prefixes for different data types
const (
	pointPrefix = "pt"
	indexPrefix = "idx"
)

// makePointKey generates a key for a point within an index.
// Format: prefix:index:key
func makePointKey(index string, key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", pointPrefix, index, key))
}

// makePointPrefix generates the prefix shared by all points of an index.
func makePointPrefix(index string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", pointPrefix, index))
}

// makeIndexKey generates a key for an index spec.
func makeIndexKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexPrefix, name))
}
