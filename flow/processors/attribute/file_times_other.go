//go:build !unix

package attribute

import (
	"os"
	"time"
)

type unixTimes struct {
	atime, ctime time.Time
}

func platformTimes(info os.FileInfo) (unixTimes, bool) {
	return unixTimes{}, false
}
