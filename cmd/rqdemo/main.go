// Command rqdemo drives a render queue from concurrent producers and writes
// the software-rendered result to a PNG.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
