//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "codeveinfix only targets windows/amd64; cross compile with GOOS=windows")
	os.Exit(1)
}
