package tools

import (
	"flag"
	"log"
)

const (
	CommandPlan = "plan"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// PlanFlags mirrors the config JSON keys internal/config.Resolve reads
// (see SPEC_FULL.md §6), letting a caller build a whole plan from flags
// alone when -config isn't given.
type PlanFlags struct {
	Config         *string
	Root           *string
	Input          *string
	Output         *string
	Tmp            *string
	Threads        *int
	TrustHeaders   *bool
	PointsPerChunk *int
	NullDepth      *int
	BaseDepth      *int
	Compress       *bool
	Absolute       *bool
	Force          *bool
	Verbose        *bool
	SubsetID       *int
	SubsetOf       *int
	Help           *bool
	Version        *bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of entwine-plan.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func ParseFlagsForCommandPlan(args []string) PlanFlags {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-plan", flag.ExitOnError)

	config := defineStringFlagCommand(flagCommand, "config", "c", "", "Path to a JSON configuration document; when given, the flags that map to config keys are ignored.")
	root := defineStringFlagCommand(flagCommand, "root", "", "", "Base directory input/output paths are resolved against. Defaults to ENTWINE_PLAN_WORKDIR, else the executable's directory.")
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Input file, directory, glob, or *.entwine-inference path.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Output location for the build.")
	tmp := defineStringFlagCommand(flagCommand, "tmp", "", "tmp", "Local staging directory for inference and reopened builds.")
	threads := defineIntFlagCommand(flagCommand, "threads", "t", 8, "Worker pool size for inference.")
	trustHeaders := defineBoolFlagCommand(flagCommand, "trust-headers", "", true, "Trust each file's declared header instead of scanning every point.")
	pointsPerChunk := defineIntFlagCommand(flagCommand, "points-per-chunk", "", 262144, "Nominal point count per tree chunk.")
	nullDepth := defineIntFlagCommand(flagCommand, "null-depth", "", 7, "Depth below which no chunks are written.")
	baseDepth := defineIntFlagCommand(flagCommand, "base-depth", "", 10, "Depth at which fixed-size chunking begins.")
	compress := defineBoolFlagCommand(flagCommand, "compress", "", true, "Compress the hierarchy index.")
	absolute := defineBoolFlagCommand(flagCommand, "absolute", "", false, "Disable delta quantization.")
	force := defineBoolFlagCommand(flagCommand, "force", "f", false, "Ignore an existing build marker and start fresh.")
	verbose := defineBoolFlagCommand(flagCommand, "verbose", "V", false, "Log inference progress.")
	subsetID := defineIntFlagCommand(flagCommand, "subset-id", "", 0, "1-based subset id; requires -subset-of.")
	subsetOf := defineIntFlagCommand(flagCommand, "subset-of", "", 0, "Total subset count; 0 disables subset mode.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of entwine-plan.")

	flagCommand.Parse(args)

	return PlanFlags{
		Config:         config,
		Root:           root,
		Input:          input,
		Output:         output,
		Tmp:            tmp,
		Threads:        threads,
		TrustHeaders:   trustHeaders,
		PointsPerChunk: pointsPerChunk,
		NullDepth:      nullDepth,
		BaseDepth:      baseDepth,
		Compress:       compress,
		Absolute:       absolute,
		Force:          force,
		Verbose:        verbose,
		SubsetID:       subsetID,
		SubsetOf:       subsetOf,
		Help:           help,
		Version:        version,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
