//go:build !windows

package main

const defaultPort = "/dev/ttyUSB0"
