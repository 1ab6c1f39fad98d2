// Package all registers every shell command.
package all

import (
	_ "github.com/robotalks/dio.go/pkg/cli/cmds/di"
	_ "github.com/robotalks/dio.go/pkg/cli/cmds/do"
)
