//go:build unix

package attribute

import (
	"os"
	"syscall"
	"time"
)

type unixTimes struct {
	atime, ctime time.Time
}

// platformTimes recovers atime/ctime from the platform-specific syscall.Stat_t
// embedded in os.FileInfo.Sys(), mirroring file_path_info_extractor.rs's use
// of std::os::unix::fs::MetadataExt (atime/ctime have no portable Go stdlib
// accessor, so this is the one place the extractor is unix-only).
func platformTimes(info os.FileInfo) (unixTimes, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return unixTimes{}, false
	}
	return unixTimes{
		atime: time.Unix(stat.Atim.Sec, stat.Atim.Nsec),
		ctime: time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec),
	}, true
}
