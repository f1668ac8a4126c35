package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/cli/config"
	"github.com/m-mizutani/meteo/pkg/lang"
	"github.com/m-mizutani/meteo/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdQuery() *cli.Command {
	var storageCfg config.Storage

	return &cli.Command{
		Name:      "query",
		Usage:     "Evaluate a pipeline over every stored report",
		ArgsUsage: "<expr>",
		Flags:     storageCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			expr := strings.Join(c.Args().Slice(), " ")
			if expr == "" {
				return goerr.New("query expression is required")
			}

			store, err := storageCfg.NewStore(ctx)
			if err != nil {
				return err
			}

			result, err := usecase.NewCatalog(store).Query(ctx, expr)
			if err != nil {
				var langErr *lang.Error
				var parenErr *lang.MissingParenError
				if errors.As(err, &langErr) || errors.As(err, &parenErr) {
					fmt.Fprint(os.Stderr, lang.Render(expr, err))
				}
				return goerr.Wrap(err, "failed to evaluate query")
			}

			printResult(os.Stdout, result)
			return nil
		},
	}
}

// printResult writes the drawn series, or the value when nothing was drawn
func printResult(w io.Writer, result *lang.Result) {
	if len(result.Drawn) == 0 {
		fmt.Fprintln(w, lang.Format(result.Value))
		return
	}

	for _, s := range result.Drawn {
		headerColor.Fprintf(w, "%s (%d points)\n", s.Name, len(s.Points))
		for _, p := range s.Points {
			fmt.Fprintf(w, "  %s\t%s\n", lang.Format(p.X), lang.Format(p.Y))
		}
	}
}
