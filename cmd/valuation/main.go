// Command valuation runs the valuation engine against a case file and writes
// the structured report as JSON. It is a thin operator tool: everything of
// substance lives in pkg/core.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"smb_valuation/pkg/config"
	"smb_valuation/pkg/core/montecarlo"
	"smb_valuation/pkg/core/pipeline"
)

func main() {
	casePath := flag.String("case", "case.yaml", "path to the case file (.yaml, .hjson, or .json)")
	outPath := flag.String("out", "", "write the JSON report here instead of stdout")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	// Optional .env for local defaults; absence is fine.
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := run(log, *casePath, *outPath, *timeout); err != nil {
		log.Fatal().Err(err).Msg("valuation failed")
	}
}

func run(log zerolog.Logger, casePath, outPath string, timeout time.Duration) error {
	cf, err := config.Load(casePath)
	if err != nil {
		return err
	}

	engine := pipeline.NewEngine(log)

	if mc := cf.Config.MonteCarlo; mc != nil {
		bar := progressbar.NewOptions(mc.Iterations,
			progressbar.OptionSetDescription("monte carlo"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		engine.SetMonteCarloOptions(montecarlo.Options{
			Progress: func(done, total int) {
				_ = bar.Set(done)
			},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := engine.Run(ctx, cf.Case, cf.Config)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if outPath == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", outPath).Str("recommendation", string(report.Recommendation)).Msg("report written")
	return nil
}
