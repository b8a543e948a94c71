package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/melitton/internal/common"
)

// LocalIDPrefix tags identities synthesized by the client while the server
// was unreachable. Server identities are UUIDs and never carry it.
const LocalIDPrefix = "local-"

// NewLocalID returns a placeholder identity of the form local-<unix-nanos>-<hex>.
func NewLocalID(now time.Time) string {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		suffix = "0000"
	}
	return fmt.Sprintf("%s%d-%s", LocalIDPrefix, now.UnixNano(), suffix)
}

// IsLocalID reports whether id was synthesized by the client.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
