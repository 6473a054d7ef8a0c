//go:build linux

package lfdemod

import (
	"github.com/jochenvg/go-udev"
)

/*-------------------------------------------------------------------
 *
 * Name:	DiscoverReaders
 *
 * Purpose:	List tty devices whose USB parent carries a reader ID.
 *
 * Description:	Walk the tty subsystem.  For each device with a device
 *		node, go up to the USB device it hangs off and compare
 *		idVendor and idProduct.
 *
 *---------------------------------------------------------------*/

func DiscoverReaders() ([]ReaderDevice, error) {
	var u udev.Udev
	var enumerate = u.NewEnumerate()

	if err := enumerate.AddMatchSubsystem("tty"); err != nil {
		return nil, demodErr("DiscoverReaders", ErrInternal, "udev match: %s", err)
	}

	var devices, err = enumerate.Devices()
	if err != nil {
		return nil, demodErr("DiscoverReaders", ErrInternal, "udev scan: %s", err)
	}

	var found []ReaderDevice

	for _, dev := range devices {
		var devnode = dev.Devnode()
		if devnode == "" {
			continue
		}

		var parent = dev.ParentWithSubsystemDevtype("usb", "usb_device")
		if parent == nil {
			continue
		}

		var vendor = parent.SysattrValue("idVendor")
		var product = parent.SysattrValue("idProduct")

		if isReaderUSBID(vendor, product) {
			found = append(found, ReaderDevice{
				Devnode: devnode,
				Vendor:  vendor,
				Product: product,
				Serial:  parent.SysattrValue("serial"),
			})
		}
	}

	return found, nil
}
