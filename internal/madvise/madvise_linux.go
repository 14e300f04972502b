//go:build linux

package madvise

import "golang.org/x/sys/unix"

func random(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
