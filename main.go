package main

import (
	cmd "github.com/nunit-reporter/nunit-reporter/cmd/nunit-reporter"
)

func main() {
	cmd.Execute()
}
