package cmd

import (
	"fmt"
)

const banner = `
   _____          _    _       _
  / ____|        | |  | |     | |
 | |     ___  ___| |__| |_   _| |__
 | |    / _ \/ __|  __  | | | | '_ \
 | |___| (_) \__ \ |  | | |_| | |_) |
  \_____\___/|___/_|  |_|\__,_|_.__/

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Object Storage Console - Version %s\x1b[0m\n\n", Version)
}
