// Package main provides the qmcchain CLI for planning QMC workflow pipelines.
package main

func main() {
	Execute()
}
