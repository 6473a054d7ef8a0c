//go:build !linux

package lfdemod

// DiscoverReaders needs udev.  Elsewhere the port has to be given.
func DiscoverReaders() ([]ReaderDevice, error) {
	return nil, nil
}
