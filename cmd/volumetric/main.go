// Command volumetric serves agent-driven template panels.
//
// Run with:
//
//	volumetric serve --config volumetric.yaml
//
// Then open http://localhost:8080/ and point an agent bridge at the
// configured channels.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
