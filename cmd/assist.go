package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `cfo assist [question...]

  Start an interactive session with the AI assistant. The question, if any,
  is asked first. The Gemini API key is read from the environment variable
  named by 'api_key_env' in the [assist] configuration.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := newLogger(cfg)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv(cfg.Assist.APIKeyEnv),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	// the files are read on every call, so edits are seen during the session.
	summary := func(ctx context.Context) (cryptofolio.PortfolioAnalyticsSummary, error) {
		ds, err := loadDataset(cfg)
		if err != nil {
			return cryptofolio.PortfolioAnalyticsSummary{}, err
		}
		log.Debug().Int("assets", len(ds.Assets)).Msg("portfolio read by the assistant")
		return cryptofolio.CalculatePortfolioAnalytics(ds.Assets, ds.Transactions, portfolioOptions(ds, 0, 0, time.Now().UnixMilli())), nil
	}

	a := agent.New(stdout, os.Stdin, agent.NewAnalyst(cfg.Assist.Model, summary))
	a.Print = printMarkdown

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := a.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
