package main

import "github.com/ogulcanaydogan/disk-guardian/internal/cli"

func main() {
	cli.Execute()
}
