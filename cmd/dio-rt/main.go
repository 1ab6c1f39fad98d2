package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	env "github.com/robotalks/dio.go/pkg/env/controller"
	fx "github.com/robotalks/dio.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	e := env.NewConfig().MustNewEnv()
	defer e.Close()

	fx.NewLoop().
		Add(e).
		RunOrFail()
}
