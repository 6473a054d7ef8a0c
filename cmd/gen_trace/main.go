package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Generate synthetic LF RFID traces.
 *
 *---------------------------------------------------------------*/

import (
	lfdemod "github.com/RfidResearchGroup/proxmark3-sub006/src"
)

func main() {
	lfdemod.GenTraceMain()
}
