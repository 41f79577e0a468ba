// Package serializer is a unified, bidirectional serialization facade.
//
// Application code describes the structure of its data once, against the
// serde.Serializer visitor, and uses that description to read or write the
// data in any of the supported formats:
// - a compact custom binary format (serde/binary)
// - JSON (serde/json)
// - YAML, as a read-only source (serde/yaml)
package serializer

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.WarnLevel)
