package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dio.go/pkg/dio"
)

// Args consumes positional arguments of a command. The first failure
// is kept in Err and later reads return zero values.
type Args struct {
	args []string
	pos  int
	err  error
}

// ArgsOf creates Args from the command context.
func ArgsOf(c *ishell.Context) *Args {
	return &Args{args: c.Args}
}

// Err returns the first failure.
func (a *Args) Err() error {
	return a.err
}

// More tells whether unread arguments remain.
func (a *Args) More() bool {
	return a.err == nil && a.pos < len(a.args)
}

func (a *Args) next(name string) (string, bool) {
	if a.err != nil {
		return "", false
	}
	if a.pos >= len(a.args) {
		a.err = fmt.Errorf("%s required", name)
		return "", false
	}
	a.pos++
	return a.args[a.pos-1], true
}

func (a *Args) fail(name, val string, err error) {
	a.err = fmt.Errorf("invalid %s %q: %v", name, val, err)
}

// Uint reads an unsigned 32-bit integer.
func (a *Args) Uint(name string) uint32 {
	str, ok := a.next(name)
	if !ok {
		return 0
	}
	val, err := strconv.ParseUint(str, 0, 32)
	if err != nil {
		a.fail(name, str, err)
	}
	return uint32(val)
}

// OptUint reads an unsigned integer if present.
func (a *Args) OptUint(name string, def uint32) uint32 {
	if !a.More() {
		return def
	}
	return a.Uint(name)
}

// Float reads a float.
func (a *Args) Float(name string) float64 {
	str, ok := a.next(name)
	if !ok {
		return 0
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		a.fail(name, str, err)
	}
	return val
}

// Pin reads a pin id.
func (a *Args) Pin(name string) dio.PinID {
	return dio.PinID(a.Uint(name))
}

// Level reads high/low, 1/0 or true/false.
func (a *Args) Level(name string) bool {
	str, ok := a.next(name)
	if !ok {
		return false
	}
	switch strings.ToLower(str) {
	case "high", "h", "1", "true", "on":
		return true
	case "low", "l", "0", "false", "off":
		return false
	}
	a.fail(name, str, fmt.Errorf("expect high or low"))
	return false
}

// Function reads a DO function name.
func (a *Args) Function(name string) dio.FunctionType {
	str, ok := a.next(name)
	if !ok {
		return dio.FunctionNotSelected
	}
	fn, err := dio.ParseFunctionType(str)
	if err != nil {
		a.fail(name, str, err)
	}
	return fn
}

// Edge reads an edge name.
func (a *Args) Edge(name string) dio.EdgeType {
	str, ok := a.next(name)
	if !ok {
		return dio.EdgeRising
	}
	edge, err := dio.ParseEdgeType(str)
	if err != nil {
		a.fail(name, str, err)
	}
	return edge
}
