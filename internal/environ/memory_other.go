//go:build !linux

package environ

func availableMemory() (uint64, error) {
	return 0, ErrUnsupported
}
