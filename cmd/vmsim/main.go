// Command vmsim replays memory access traces against a simulated MMU.
package main

import "github.com/sarchlab/vmsim/cmd/vmsim/cmd"

func main() {
	cmd.Execute()
}
