package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/hobu-go/entwine/internal/config"
	"github.com/hobu-go/entwine/internal/storage"
	"github.com/hobu-go/entwine/pkg/planner"
	"github.com/hobu-go/entwine/tools"
)

const version = "0.1.0"

const logo = `
  ___ _ __ | |___      _(_)_ __   ___
 / _ \ '_ \| __\ \ /\ / / | '_ \ / _ \
|  __/ | | | |\ V  V /| | | | | |  __/
 \___|_| |_|\__|\_/\_/ |_|_| |_|\___|
 build planner
`

func main() {
	log.SetPrefix("[entwine-plan] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()
	log.Println(tools.FmtJSONString(flagsGlobal))

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [plan].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandPlan:
		mainCommandPlan(args)
	default:
		log.Fatalf("Unrecognized command %q. Command must be one of [plan]", cmd)
	}
}

func mainCommandPlan(args []string) {
	flags := tools.ParseFlagsForCommandPlan(args)

	if *flags.Help {
		printUsage()
		return
	}
	if *flags.Version {
		fmt.Println(version)
		return
	}

	if !*flags.Verbose {
		tools.DisableLogger()
	} else {
		fmt.Println(logo)
	}

	raw := buildRawConfig(flags)

	root := *flags.Root
	if root == "" {
		root = tools.GetRootFolder()
	}

	ep, err := storage.Dispatch(root)
	if err != nil {
		log.Fatalf("resolving root endpoint: %v", err)
	}

	if local, ok := ep.(*storage.Local); ok {
		if err := tools.CreateDirectoryIfDoesNotExist(local.AbsPath(*flags.Tmp)); err != nil {
			log.Fatalf("creating tmp directory: %v", err)
		}
	}

	result, err := planner.Plan(context.Background(), raw, ep)
	if err != nil {
		log.Fatalf("planning failed: %v", err)
	}

	if result.Resumed {
		tools.LogOutput(fmt.Sprintf("resuming existing build at %q (%d files queued)", result.Config.Output, len(result.Handle.Pending())))
		return
	}

	data, err := result.Metadata.ToJSON()
	if err != nil {
		log.Fatalf("serializing metadata: %v", err)
	}

	outEp, err := ep.GetEndpoint(result.Config.Output)
	if err != nil {
		log.Fatalf("resolving output endpoint: %v", err)
	}
	if err := outEp.Put(context.Background(), "entwine", data); err != nil {
		log.Fatalf("writing build marker: %v", err)
	}

	tools.LogOutput(fmt.Sprintf(
		"planned build at %q: %d files, %d points",
		result.Config.Output,
		result.Metadata.Manifest().Size(),
		result.Config.NumPointsHint,
	))
}

// buildRawConfig assembles the raw JSON-shaped config map internal/
// config.Resolve expects, either by parsing -config or by translating
// individual flags into the same key set.
func buildRawConfig(flags tools.PlanFlags) map[string]interface{} {
	if *flags.Config != "" {
		file := tools.OpenFileOrFail(*flags.Config)
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			log.Fatalf("reading %q: %v", *flags.Config, err)
		}
		raw, err := config.Parse(data)
		if err != nil {
			log.Fatalf("parsing %q: %v", *flags.Config, err)
		}
		return raw
	}

	raw := map[string]interface{}{
		"output":         *flags.Output,
		"tmp":            *flags.Tmp,
		"threads":        float64(*flags.Threads),
		"trustHeaders":   *flags.TrustHeaders,
		"pointsPerChunk": float64(*flags.PointsPerChunk),
		"nullDepth":      float64(*flags.NullDepth),
		"baseDepth":      float64(*flags.BaseDepth),
		"compress":       *flags.Compress,
		"absolute":       *flags.Absolute,
		"force":          *flags.Force,
		"verbose":        *flags.Verbose,
	}
	if *flags.Input != "" {
		raw["input"] = *flags.Input
	}
	if *flags.SubsetOf > 0 {
		raw["subset"] = map[string]interface{}{
			"id": float64(*flags.SubsetID),
			"of": float64(*flags.SubsetOf),
		}
	}
	return raw
}

func printUsage() {
	fmt.Println(logo)
	fmt.Println("Usage: entwine-plan plan [flags]")
	fmt.Println("Run 'entwine-plan plan -help' for the full flag list.")
}
