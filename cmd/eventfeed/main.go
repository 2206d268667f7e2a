// Command eventfeed streams a synthetic feed of system statuses and business
// operations, filtered and rendered per viewer.
//
//	eventfeed run --role manager --lower 100 --upper 900
//	eventfeed serve --config ./config.yml
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
