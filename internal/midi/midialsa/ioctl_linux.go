//go:build linux

package midialsa

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Generic _IOC encoding from <asm-generic/ioctl.h>, shared by amd64, 386,
// arm, arm64, riscv64, loong64 and s390x.
const (
	iocWrite = 1
	iocRead  = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

// Stream numbers from <sound/asound.h>.
const (
	rawmidiStreamOutput = 0
	rawmidiStreamInput  = 1
)

// sndCtlCardInfo mirrors struct snd_ctl_card_info.
type sndCtlCardInfo struct {
	Card       int32
	Pad        int32
	ID         [16]byte
	Driver     [16]byte
	Name       [32]byte
	LongName   [80]byte
	Reserved   [16]byte
	MixerName  [80]byte
	Components [128]byte
}

// sndRawmidiInfo mirrors struct snd_rawmidi_info.
type sndRawmidiInfo struct {
	Device          uint32
	Subdevice       uint32
	Stream          int32
	Card            int32
	Flags           uint32
	ID              [64]byte
	Name            [80]byte
	SubName         [32]byte
	SubdevicesCount uint32
	SubdevicesAvail uint32
	Reserved        [64]byte
}

const (
	ctlIoctlCardInfo = iocRead<<iocDirShift |
		unsafe.Sizeof(sndCtlCardInfo{})<<iocSizeShift |
		'U'<<iocTypeShift | 0x01<<iocNrShift

	ctlIoctlRawmidiNextDevice = (iocRead|iocWrite)<<iocDirShift |
		unsafe.Sizeof(int32(0))<<iocSizeShift |
		'U'<<iocTypeShift | 0x40<<iocNrShift

	ctlIoctlRawmidiInfo = (iocRead|iocWrite)<<iocDirShift |
		unsafe.Sizeof(sndRawmidiInfo{})<<iocSizeShift |
		'U'<<iocTypeShift | 0x41<<iocNrShift

	ctlIoctlRawmidiPreferSubdevice = iocWrite<<iocDirShift |
		unsafe.Sizeof(int32(0))<<iocSizeShift |
		'U'<<iocTypeShift | 0x42<<iocNrShift

	rawmidiIoctlInfo = iocRead<<iocDirShift |
		unsafe.Sizeof(sndRawmidiInfo{})<<iocSizeShift |
		'W'<<iocTypeShift | 0x01<<iocNrShift

	rawmidiIoctlDrain = iocWrite<<iocDirShift |
		unsafe.Sizeof(int32(0))<<iocSizeShift |
		'W'<<iocTypeShift | 0x31<<iocNrShift
)

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// cString returns the NUL-terminated prefix of a fixed-size kernel string.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
