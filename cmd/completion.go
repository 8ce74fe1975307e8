package cmd

import (
	"flag"

	"github.com/etnz/cryptofolio"
	"github.com/etnz/cryptofolio/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors complete the values of flags that have a known set of
// values or name files. Other flags accept anything.
var flagPredictors = map[string]complete.Predictor{
	"config":       predict.Files("*.toml"),
	"transactions": predict.Files("*.jsonl"),
	"transfers":    predict.Files("*.jsonl"),
	"assets":       predict.Files("*.jsonl"),
	"period":       predict.Set{"day", "week", "month", "quarter", "year"},
	"kind":         predict.Set{string(cryptofolio.TransactionRecords), string(cryptofolio.TransferRecords)},
	"mapping":      predict.Or(predict.Set(cryptofolio.BuiltinImporters()), predict.Files("*.toml")),
}

// argPredictors complete the positional arguments of subcommands.
var argPredictors = map[string]complete.Predictor{
	"import": predict.Files("*.json"),
}

// Completion returns the shell completion of the global flags in fs and of
// every subcommand.
func Completion(fs *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(fs),
	}
	for _, e := range commands {
		sub := flag.NewFlagSet(e.cmd.Name(), flag.ContinueOnError)
		e.cmd.SetFlags(sub)
		root.Sub[e.cmd.Name()] = &complete.Command{
			Flags: flags(sub),
			Args:  argPredictors[e.cmd.Name()],
		}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}

func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch p, ok := flagPredictors[f.Name]; {
		case ok:
			m[f.Name] = p
		case isBool(f):
			m[f.Name] = predict.Nothing
		default:
			m[f.Name] = predict.Something
		}
	})
	return m
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
