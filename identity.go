package hikaku

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// identityVersion prefixes every hashed label stream. Bump it whenever the
// encoding below changes, since identities are compared across runs.
const identityVersion = 1

// ID identifies a registration or a selection.
type ID uint64

func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// registrationID hashes a normalized label set.
func registrationID[L Label[L]](labels []L) ID {
	return ID(xxhash.Sum64(appendLabelKeys(nil, labels)))
}

// selectionID hashes a normalized label set and a statistic.
func selectionID[L Label[L]](labels []L, stat Statistic) ID {
	b := appendLabelKeys(nil, labels)
	b = append(b, 0xff, byte(stat))
	return ID(xxhash.Sum64(b))
}

func appendLabelKeys[L Label[L]](b []byte, labels []L) []byte {
	b = append(b, identityVersion)
	var key []byte
	for _, l := range labels {
		key = l.AppendKey(key[:0])
		b = binary.AppendUvarint(b, uint64(len(key)))
		b = append(b, key...)
	}
	return b
}
