//go:build !rp2040 && !rp2350

package main

func main() {
	println("selftest targets rp2040/rp2350 boards, build with tinygo; use go test ./bus on the host")
}
