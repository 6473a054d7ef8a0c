package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Demodulate LF RFID traces from a file or a reader.
 *
 *---------------------------------------------------------------*/

import (
	lfdemod "github.com/RfidResearchGroup/proxmark3-sub006/src"
)

func main() {
	lfdemod.LFDemodMain()
}
