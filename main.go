package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/detgeo/gxviewer/internal/logging"
)

func main() {
	configPath := flag.String("config", "gxviewer.yaml", "configuration file")
	tolerance := flag.Float64("tolerance", 0, "overlap tolerance override")
	samples := flag.Int("samples", 0, "Monte Carlo samples per pair override")
	seed := flag.Int64("seed", 0, "random seed, 0 for nondeterministic")
	logLevel := flag.String("log-level", "", "log level override")
	check := flag.Bool("check", false, "run the overlap check and exit")
	witness := flag.String("witness", "", "write overlap witness points to this PCD file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logging.Errorf("config: %v", err)
		os.Exit(1)
	}
	if *tolerance != 0 {
		cfg.Tolerance = float32(*tolerance)
	}
	if *samples != 0 {
		cfg.Samples = *samples
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logging.SetLevel(cfg.LogLevel)

	cmd := newCommandContext(cfg)
	for _, path := range flag.Args() {
		if err := cmd.LoadFile(path); err != nil {
			logging.Errorf("load %s: %v", path, err)
			os.Exit(1)
		}
	}

	if *check {
		for _, line := range checkSummary(cmd) {
			fmt.Println(line)
		}
		if *witness != "" && len(cmd.lastResult.Witness) > 0 {
			if err := cmd.ExportWitness(*witness); err != nil {
				logging.Errorf("witness: %v", err)
				os.Exit(1)
			}
		}
		if len(cmd.lastResult.Pairs) > 0 {
			os.Exit(1)
		}
		return
	}

	con := &console{cmd: cmd}
	sc := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for sc.Scan() {
		line := sc.Text()
		if line == "exit" || line == "quit" {
			return
		}
		out, err := con.Run(line)
		if err != nil {
			fmt.Println("error:", err)
		} else if out != "" {
			fmt.Println(out)
		}
		fmt.Print("> ")
	}
}
