//go:build !rp2040 && !rp2350

package main

func main() {
	println("boardtest targets rp2040/rp2350 boards, build with tinygo")
}
