// Command smppclient is a small demo binary exercising the smpp package
// end to end: it binds to an SMSC, submits one short message, and unbinds.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
