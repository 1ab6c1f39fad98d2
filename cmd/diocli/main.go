package main

import (
	"github.com/robotalks/dio.go/pkg/cli/sh"
	env "github.com/robotalks/dio.go/pkg/env/connector"

	_ "github.com/robotalks/dio.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
