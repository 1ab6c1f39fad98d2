package di

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/dio.go/pkg/cli/sh"
	"github.com/robotalks/dio.go/pkg/client"
	"github.com/robotalks/dio.go/pkg/dio"
)

var (
	// ConfigCmd configures and starts a pulse counter.
	ConfigCmd = ishell.Cmd{
		Name:    "di.config",
		Aliases: []string{"dic"},
		Help:    "PIN high|low MIN_WIDTH(ticks) [MAX_COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			activeHigh := args.Level("POLARITY")
			minWidth := args.Uint("MIN_WIDTH")
			maxCount := args.OptUint("MAX_COUNT", ^uint32(0))
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.ConfigPulseCounter(pin, activeHigh, minWidth, maxCount)
			})
		}),
	}

	// ResetCmd resets a pulse count.
	ResetCmd = ishell.Cmd{
		Name:    "di.reset",
		Aliases: []string{"dir"},
		Help:    "PIN [INIT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			initVal := args.OptUint("INIT", 0)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.ResetPulseCount(pin, initVal)
			})
		}),
	}

	// CountCmd reads a pulse count.
	CountCmd = ishell.Cmd{
		Name:    "di.count",
		Aliases: []string{"din"},
		Help:    "PIN",
		Func: pinCmd(func(cli *client.Client, pin dio.PinID) (interface{}, error) {
			return cli.PulseCount(pin)
		}),
	}

	// DutyCmd reads the accumulated on-time.
	DutyCmd = ishell.Cmd{
		Name:    "di.duty",
		Aliases: []string{"did"},
		Help:    "PIN",
		Func: pinCmd(func(cli *client.Client, pin dio.PinID) (interface{}, error) {
			return cli.DutySumTime(pin)
		}),
	}

	// LevelsCmd reads levels of all inputs.
	LevelsCmd = ishell.Cmd{
		Name:    "di.levels",
		Aliases: []string{"dil"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return cli.Levels()
			})
		}),
	}

	// PinCmd reads the level of an input.
	PinCmd = ishell.Cmd{
		Name:    "di.pin",
		Aliases: []string{"dip"},
		Help:    "PIN",
		Func: pinCmd(func(cli *client.Client, pin dio.PinID) (interface{}, error) {
			return cli.PinLevel(pin)
		}),
	}
)

func pinCmd(fn func(*client.Client, dio.PinID) (interface{}, error)) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		args := sh.ArgsOf(c)
		pin := args.Pin("PIN")
		if err := args.Err(); err != nil {
			c.Err(err)
			return
		}
		sh.Do(c, func(cli *client.Client) (interface{}, error) {
			return fn(cli, pin)
		})
	})
}

func init() {
	sh.AddCmds(
		&ConfigCmd,
		&ResetCmd,
		&CountCmd,
		&DutyCmd,
		&LevelsCmd,
		&PinCmd,
	)
}
