package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type console struct {
	cmd *commandContext
}

var errArgumentNumber = errors.New("invalid number of arguments")
var errInvalidCommand = errors.New("invalid command")

func checkSummary(cmd *commandContext) []string {
	res := cmd.Check()
	var out []string
	for _, p := range res.Pairs {
		out = append(out, fmt.Sprintf("%s may overlap %s by %.3f percent", p.NameA, p.NameB, 100*p.Fraction))
	}
	out = append(out, res.Warnings...)
	if len(out) == 0 {
		out = append(out, "no overlaps found")
	}
	return out
}

var consoleCommands = map[string]func(cmd *commandContext, args []string) ([]string, error){
	"load": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 1 {
			return nil, errArgumentNumber
		}
		if err := cmd.LoadFile(args[0]); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%d components", cmd.Count())}, nil
	},
	"check": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		return checkSummary(cmd), nil
	},
	"list": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		return cmd.List(), nil
	},
	"count": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		return []string{strconv.Itoa(cmd.Count())}, nil
	},
	"clear": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		cmd.Clear()
		return nil, nil
	},
	"tolerance": func(cmd *commandContext, args []string) ([]string, error) {
		switch len(args) {
		case 0:
		case 1:
			f, err := strconv.ParseFloat(args[0], 32)
			if err != nil {
				return nil, err
			}
			if err := cmd.SetTolerance(float32(f)); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		return []string{strconv.FormatFloat(float64(cmd.Tolerance()), 'f', -1, 32)}, nil
	},
	"samples": func(cmd *commandContext, args []string) ([]string, error) {
		switch len(args) {
		case 0:
		case 1:
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, err
			}
			if err := cmd.SetSamples(n); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		return []string{strconv.Itoa(cmd.Samples())}, nil
	},
	"seed": func(cmd *commandContext, args []string) ([]string, error) {
		switch len(args) {
		case 0:
		case 1:
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return nil, err
			}
			cmd.SetSeed(n)
		default:
			return nil, errArgumentNumber
		}
		return []string{strconv.FormatInt(cmd.Seed(), 10)}, nil
	},
	"export_witness": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 1 {
			return nil, errArgumentNumber
		}
		if err := cmd.ExportWitness(args[0]); err != nil {
			return nil, err
		}
		return nil, nil
	},
	"viewpoint": func(cmd *commandContext, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		v := cmd.Viewpoint()
		if v == nil {
			return []string{"no viewpoint loaded"}, nil
		}
		var out []string
		if v.FOV != nil {
			out = append(out, fmt.Sprintf("fov %g", *v.FOV))
		}
		if v.Position != nil {
			out = append(out, fmt.Sprintf("position %g %g %g", v.Position[0], v.Position[1], v.Position[2]))
		}
		if v.Orientation != nil {
			o := *v.Orientation
			out = append(out, fmt.Sprintf("orientation %g %g %g %g", o[0], o[1], o[2], o[3]))
		}
		if len(out) == 0 {
			out = append(out, "no viewpoint loaded")
		}
		return out, nil
	},
}

func (c *console) Run(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	fn, ok := consoleCommands[args[0]]
	if !ok {
		return "", errInvalidCommand
	}
	res, err := fn(c.cmd, args[1:])
	if err != nil {
		return "", err
	}
	return strings.Join(res, "\n"), nil
}
