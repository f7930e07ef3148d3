package cmd

import (
	"flag"

	"github.com/etnz/janitor/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete handles shell completion requests (COMP_LINE is set) for the
// program name, and returns otherwise.
func Complete(name string) {
	Completion().Complete(name)
}

// Completion describes the command line of the janitor for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(f)}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub[(&topicCmd{}).Name()].Args = predict.Set(append(topics, "readme", "*"))
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{Args: commandNames()}
	}
	return root
}

func commandNames() predict.Set {
	var names predict.Set
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}

// flagPredictors predicts files for keypair and config flags, nothing for
// booleans, and anything for the rest.
func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch {
		case fl.Name == "k":
			flags[fl.Name] = predict.Files("*.json")
		case fl.Name == "config":
			flags[fl.Name] = predict.Files("*.toml")
		case isBool(fl):
			flags[fl.Name] = predict.Nothing
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
