package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/llcpolicy/datarecording"
	"github.com/sarchlab/llcpolicy/replacement"
	"github.com/sarchlab/llcpolicy/trace"
)

var runFlags = struct {
	configPath string
	tracePath  string
	dbPath     string
	variant    string
	accesses   uint64
	heartbeat  uint64
	seed       int64
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a trace against a replacement engine",
	RunE:  runExperiment,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.configPath, "config", "",
		"YAML engine configuration file")
	runCmd.Flags().StringVar(&runFlags.tracePath, "trace", "",
		"CSV access trace; a synthetic workload is used when omitted")
	runCmd.Flags().StringVar(&runFlags.dbPath, "db",
		os.Getenv("LLCPOLICY_DB"),
		"output database path, without the .sqlite3 suffix")
	runCmd.Flags().StringVar(&runFlags.variant, "variant", "hybrid",
		"engine variant when no config file is given")
	runCmd.Flags().Uint64Var(&runFlags.accesses, "accesses", 1000000,
		"number of synthetic accesses to generate")
	runCmd.Flags().Uint64Var(&runFlags.heartbeat, "heartbeat", 100000,
		"accesses between recorded heartbeat snapshots")
	runCmd.Flags().Int64Var(&runFlags.seed, "seed", 1,
		"seed for the synthetic workload and the engine")

	rootCmd.AddCommand(runCmd)
}

// heartbeatEntry is one row in the recorded heartbeat table.
type heartbeatEntry struct {
	Accesses      uint64
	Hits          uint64
	Misses        uint64
	Bypasses      uint64
	HotSignatures int
	StreamingSets int
	DeadLines     int
	PSEL          uint16
}

func runExperiment(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "llcpolicy ", log.LstdFlags)

	engine, err := buildEngine(logger)
	if err != nil {
		return err
	}

	recorder := datarecording.New(runFlags.dbPath)
	recorder.CreateTable("heartbeat", heartbeatEntry{})

	next, cleanup, err := accessSource()
	if err != nil {
		return err
	}
	defer cleanup()

	host := newHostCache(engine.NumSets(), engine.NumWays())

	var count uint64
	for {
		rec, err := next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		host.access(engine, rec)

		count++
		if runFlags.heartbeat != 0 && count%runFlags.heartbeat == 0 {
			recordHeartbeat(recorder, engine)
		}
	}

	recordHeartbeat(recorder, engine)
	recorder.Flush()

	s := engine.Stats()
	logger.Printf("%s: %d accesses, %d hits, %d misses, %d bypasses",
		engine.Name(), s.Accesses, s.Hits, s.Misses, s.Bypasses)

	return nil
}

func buildEngine(logger *log.Logger) (*replacement.Engine, error) {
	var builder replacement.Builder

	if runFlags.configPath != "" {
		config, err := replacement.LoadConfig(runFlags.configPath)
		if err != nil {
			return nil, err
		}

		builder, err = config.Builder()
		if err != nil {
			return nil, err
		}
	} else {
		config := replacement.Config{Variant: runFlags.variant}

		var err error
		builder, err = config.Builder()
		if err != nil {
			return nil, err
		}
	}

	builder = builder.WithSeed(runFlags.seed).WithLogger(logger)

	return builder.Build("LLC"), nil
}

// accessSource returns a record generator: the trace file when one is
// given, otherwise the synthetic workload.
func accessSource() (func() (trace.Record, error), func(), error) {
	if runFlags.tracePath == "" {
		next := syntheticWorkload(runFlags.accesses, runFlags.seed)
		return next, func() {}, nil
	}

	reader, err := trace.NewReader(runFlags.tracePath)
	if err != nil {
		return nil, nil, err
	}

	return reader.Next, func() { reader.Close() }, nil
}

func recordHeartbeat(
	recorder datarecording.DataRecorder,
	engine *replacement.Engine,
) {
	s := engine.Stats()
	recorder.InsertData("heartbeat", heartbeatEntry{
		Accesses:      s.Accesses,
		Hits:          s.Hits,
		Misses:        s.Misses,
		Bypasses:      s.Bypasses,
		HotSignatures: s.HotSignatures,
		StreamingSets: s.StreamingSets,
		DeadLines:     s.DeadLines,
		PSEL:          s.PSEL,
	})
}
