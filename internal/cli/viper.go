// Package cli binds command line flags, environment variables and an
// optional config file to program options through viper.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option
type Opt struct {
	DestP   interface{} // pointer to the destination
	Flag    string
	Default interface{}
	Desc    string
}

// NewOpt creates a new command line option.
func NewOpt(destP interface{}, flag string, dflt interface{}, desc string) Opt {
	return Opt{
		DestP:   destP,
		Flag:    flag,
		Default: dflt,
		Desc:    desc,
	}
}

// Program parses CLI options
type Program struct {
	// Run is invoked by cobra on execute with the command's context.
	Run func(ctx context.Context, args []string) error
	// Name is the name of the program in help usage.
	Name string
	// EnvPrefix prefixes all environment variables. Defaults to Name.
	EnvPrefix string
	// Short is the one line help text.
	Short string
	// Args validates positional arguments. Defaults to cobra.NoArgs.
	Args cobra.PositionalArgs
	// Opts are the command line/env var options to the program
	Opts []Opt
}

// ConfigFlag names the flag (and <NAME>_CONFIG environment variable) that
// points at a config file. Keys in the file are the flag names.
const ConfigFlag = "config"

// NewCommand creates a new cobra command to be executed that respects env
// vars and an optional config file.
//
// Uses the upper-case version of the program's env prefix as a prefix
// to all environment variables. Precedence is flag, env var, config file,
// default.
func NewCommand(v *viper.Viper, p *Program) *cobra.Command {
	args := p.Args
	if args == nil {
		args = cobra.NoArgs
	}

	cmd := &cobra.Command{
		Use:   p.Name,
		Short: p.Short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath := v.GetString(ConfigFlag); configPath != "" {
				v.SetConfigFile(configPath)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config %s: %w", configPath, err)
				}
			}
			if err := load(v, p.Opts); err != nil {
				return err
			}
			return p.Run(cmd.Context(), args)
		},
	}
	cmd.SilenceUsage = true

	prefix := p.EnvPrefix
	if prefix == "" {
		prefix = p.Name
	}
	v.SetEnvPrefix(strings.ToUpper(prefix))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	cmd.Flags().String(ConfigFlag, "", "path to a config file")
	mustBindPFlag(v, ConfigFlag, cmd)

	BindOptions(v, cmd, p.Opts)

	return cmd
}

// BindOptions adds opts to the specified command and automatically
// registers those options with viper.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) {
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			cmd.Flags().StringVar(destP, o.Flag, d, o.Desc)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			cmd.Flags().IntVar(destP, o.Flag, d, o.Desc)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			cmd.Flags().BoolVar(destP, o.Flag, d, o.Desc)
		case *[]string:
			var d []string
			if o.Default != nil {
				d = o.Default.([]string)
			}
			cmd.Flags().StringSliceVar(destP, o.Flag, d, o.Desc)
		case *zapcore.Level:
			var d zapcore.Level
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			LevelVar(cmd.Flags(), destP, o.Flag, d, o.Desc)
		default:
			// if you get a panic here, sorry about that!
			// anyway, go ahead and add another type.
			panic(fmt.Errorf("unknown destination type %T", o.DestP))
		}
		mustBindPFlag(v, o.Flag, cmd)
	}
}

// load copies the resolved viper values back into the option destinations
// once flags are parsed and the config file is read.
func load(v *viper.Viper, opts []Opt) error {
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			*destP = v.GetString(o.Flag)
		case *int:
			*destP = v.GetInt(o.Flag)
		case *bool:
			*destP = v.GetBool(o.Flag)
		case *[]string:
			*destP = v.GetStringSlice(o.Flag)
		case *zapcore.Level:
			var l levelValue
			if err := l.Set(v.GetString(o.Flag)); err != nil {
				return fmt.Errorf("%s: %w", o.Flag, err)
			}
			*destP = zapcore.Level(l)
		}
	}
	return nil
}

func mustBindPFlag(v *viper.Viper, key string, cmd *cobra.Command) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
		panic(err)
	}
}
