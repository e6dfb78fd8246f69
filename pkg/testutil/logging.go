package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Importing testutil routes component logs to the test output only when the
// test binary runs verbosely.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v" || (strings.HasPrefix(arg, "-test.v=") && arg != "-test.v=false") {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}
