package logtrace

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global logger. Unknown levels fall back to info.
func InitLogger(level ...string) {
	initLogger(os.Stderr, level...)
}

func initLogger(w io.Writer, level ...string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl := zerolog.InfoLevel
	if len(level) > 0 && level[0] != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(level[0])); err == nil {
			lvl = l
		}
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
