// file: main.go
// version: 1.0.0
// guid: aec3872b-6b07-409f-85bb-5585aafb72b5

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/music-tagger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
