package do

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dio.go/pkg/cli/sh"
	"github.com/robotalks/dio.go/pkg/client"
	"github.com/robotalks/dio.go/pkg/dio"
)

const outputHelp = "LEVEL DELAY(ticks) OUTPUT(ticks) [FREQ(Hz) DUTY(%)]"

// outputArgs reads the output settings shared by all configure commands.
func outputArgs(args *sh.Args) client.Output {
	out := client.Output{
		Level:       args.Level("LEVEL"),
		DelayTicks:  args.Uint("DELAY"),
		OutputTicks: args.Uint("OUTPUT"),
	}
	if args.More() {
		out.Pulse = client.PulseFor(args.Float("FREQ"), args.Float("DUTY"))
	}
	return out
}

// Status is printed by do.status.
type Status struct {
	Pin      dio.PinID `json:"pin"`
	Relation bool      `json:"relation"`
}

func (s Status) String() string {
	return fmt.Sprintf("DO[%d] relation=%v", s.Pin, s.Relation)
}

// Pulse is printed by pulse.
type Pulse struct {
	Clock          dio.PulseClock `json:"clock"`
	EffectiveTicks uint32         `json:"effective"`
	PeriodTicks    uint32         `json:"period"`
}

func (p Pulse) String() string {
	return fmt.Sprintf("clock=%d effective=%d period=%d", p.Clock, p.EffectiveTicks, p.PeriodTicks)
}

var (
	// SingleCmd configures a DO without relation.
	SingleCmd = ishell.Cmd{
		Name:    "do.single",
		Aliases: []string{"dos"},
		Help:    "PIN oneshot|pulse " + outputHelp,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			fn := args.Function("FUNC")
			out := outputArgs(args)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.ConfigSingle(pin, fn, out)
			})
		}),
	}

	// EdgeCmd configures a DO triggered by edges of a DI.
	EdgeCmd = ishell.Cmd{
		Name:    "do.edge",
		Aliases: []string{"doe"},
		Help:    "PIN interlock|invert|generate|pulse INPUT rising|falling|both CHATTERING(ticks) " + outputHelp,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			fn := args.Function("FUNC")
			input := args.Pin("INPUT")
			edge := args.Edge("EDGE")
			chattering := args.Uint("CHATTERING")
			out := outputArgs(args)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.ConfigEdgeTrigger(pin, fn, input, edge, chattering, out)
			})
		}),
	}

	// CountCmd configures a DO active in a pulse count window of a DI.
	CountCmd = ishell.Cmd{
		Name:    "do.count",
		Aliases: []string{"don"},
		Help:    "PIN oneshot|pulse INPUT START STOP " + outputHelp,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			fn := args.Function("FUNC")
			input := args.Pin("INPUT")
			start := args.Uint("START")
			stop := args.Uint("STOP")
			out := outputArgs(args)
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.ConfigCountTrigger(pin, fn, input, start, stop, out)
			})
		}),
	}

	// StopCmd stops a DO.
	StopCmd = ishell.Cmd{
		Name:    "do.stop",
		Aliases: []string{"dox"},
		Help:    "PIN",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return nil, cli.StopOutput(pin)
			})
		}),
	}

	// StatusCmd reads the relation status of a DO.
	StatusCmd = ishell.Cmd{
		Name:    "do.status",
		Aliases: []string{"dot"},
		Help:    "PIN",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			pin := args.Pin("PIN")
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				st, err := cli.RelationStatus(pin)
				if err != nil {
					return nil, err
				}
				return Status{Pin: pin, Relation: st}, nil
			})
		}),
	}

	// PulseCmd prints the pulse settings of a waveform.
	PulseCmd = ishell.Cmd{
		Name: "pulse",
		Help: "FREQ(Hz) DUTY(%)",
		Func: func(c *ishell.Context) {
			args := sh.ArgsOf(c)
			freq, duty := args.Float("FREQ"), args.Float("DUTY")
			if err := args.Err(); err != nil {
				c.Err(err)
				return
			}
			s := client.PulseFor(freq, duty)
			sh.ShellFrom(c).Print(c, Pulse{Clock: s.Clock, EffectiveTicks: s.EffectiveTicks, PeriodTicks: s.PeriodTicks})
		},
	}

	// VersionCmd reads the engine version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"ver"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.Do(c, func(cli *client.Client) (interface{}, error) {
				return cli.Version()
			})
		}),
	}
)

func init() {
	sh.AddCmds(
		&SingleCmd,
		&EdgeCmd,
		&CountCmd,
		&StopCmd,
		&StatusCmd,
		&PulseCmd,
		&VersionCmd,
	)
}
