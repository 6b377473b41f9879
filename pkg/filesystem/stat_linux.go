package filesystem

import (
	"syscall"
	"time"
)

// statFromRaw adapts a Linux syscall.Stat_t to a RawStat.
func statFromRaw(raw *syscall.Stat_t) *RawStat {
	return &RawStat{
		Mode:              Mode(raw.Mode),
		Size:              raw.Size,
		Blocks:            raw.Blocks,
		Nlink:             uint64(raw.Nlink),
		ModificationTime:  time.Unix(raw.Mtim.Sec, raw.Mtim.Nsec),
		UID:               raw.Uid,
		GID:               raw.Gid,
		Device:            uint64(raw.Dev),
	}
}
