package lfdemod

/*------------------------------------------------------------------
 *
 * Purpose:	Find attached readers so the user does not have to
 *		know which tty the reader landed on.
 *
 *---------------------------------------------------------------*/

import (
	"strings"
)

// USB IDs the reader firmware has shipped with.
var readerUSBIDs = []struct {
	vendor  string
	product string
}{
	{"9ac4", "4b8f"},
	{"2d2d", "504d"},
}

type ReaderDevice struct {
	Devnode string // e.g. /dev/ttyACM0
	Vendor  string
	Product string
	Serial  string
}

func isReaderUSBID(vendor string, product string) bool {
	for _, id := range readerUSBIDs {
		if strings.EqualFold(vendor, id.vendor) && strings.EqualFold(product, id.product) {
			return true
		}
	}

	return false
}

/*-------------------------------------------------------------------
 *
 * Name:	ResolvePort
 *
 * Purpose:	Turn the configured port into a device name.
 *
 * Description:	"auto" or empty picks the first reader found.  Anything
 *		else is taken as the device name.
 *
 *---------------------------------------------------------------*/

func ResolvePort(port string) (string, error) {
	if port != "" && port != "auto" {
		return port, nil
	}

	var found, err = DiscoverReaders()
	if err != nil {
		return "", err
	}

	if len(found) == 0 {
		return "", demodErr("ResolvePort", ErrNoPatternFound, "no reader attached")
	}

	return found[0].Devnode, nil
}

/* end discover.go */
