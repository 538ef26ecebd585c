// Command browsercompare serves the fixture pages, fetches drivers and
// browsers, and prints the library comparison.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
)

func main() {
	// glog registers its flags on the standard flag set; the app has its own.
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if err := newApp().Run(os.Args); err != nil {
		glog.Exit(err)
	}
}
