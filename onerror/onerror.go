package onerror

import (
	"os"

	"github.com/hlmerscher/jackc/logger"
)

var exit = os.Exit

func Log(err error) {
	Logf("", err)
}

// Logf reports err prefixed by msg and terminates the process. A nil err
// is a no-op.
func Logf(msg string, err error) {
	if err != nil {
		logger.Errorf("\n%s%s\n", msg, err)
		exit(1)
	}
}
