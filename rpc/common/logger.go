package common

import (
	"github.com/kvquill/quill/lib/log"
)

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers levels every named component logger from the server config.
func InitLoggers(config ServerConfig) {
	log.InitLoggers(config.LogLevel)
}
