package main

import (
	"github.com/loanprep/loanprep/pkg/cli"
)

func main() {
	cli.Execute()
}
