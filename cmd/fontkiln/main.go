// Package main provides the fontkiln CLI for validating font binaries.
package main

func main() {
	Execute()
}
