package main

import (
	"context"
	"fmt"
	"os"

	"github.com/crowdforge/contest-api/cmd/tokenctl/cmds"
)

func main() {
	if err := cmds.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
