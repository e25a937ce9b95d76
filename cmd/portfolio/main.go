package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"portfolio/entity"
	"portfolio/logger"
	"portfolio/portfolio"
	"portfolio/record"
	"portfolio/store"
)

var kinds = []string{record.KindProperty, record.KindTenant, record.KindEvent, record.KindMaintenance, record.KindMarket}

func main() {
	app := &cli.App{
		Name:  "portfolio",
		Usage: "browse and edit the portfolio through the local cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "base URL of the portfolio API",
				Value:   "http://127.0.0.1:8080",
				EnvVars: []string{"PORTFOLIO_API_URL"},
			},
			&cli.StringFlag{
				Name:    "cacheStore",
				Aliases: []string{"cs"},
				Usage:   `store type of the local cache, allowed values: "persisted", "sqlite", "memory"`,
				Value:   store.Persisted,
				EnvVars: []string{"PORTFOLIO_CACHE_STORE"},
				Action: func(ctx *cli.Context, v string) error {
					if v != store.Memory && v != store.Persisted && v != store.SQLite {
						return errors.New(`invalid cacheStore, allowed values: "persisted", "sqlite", "memory"`)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "cachePath",
				Usage:   "file of the local cache",
				Value:   "portfolio-cache.db",
				EnvVars: []string{"PORTFOLIO_CACHE_PATH"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout of every API request",
				Value: 30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "logLevel",
				Aliases: []string{"l"},
				Usage:   fmt.Sprintf("minimum log level, allowed values: %s", strings.Join(logger.Levels, ", ")),
				Value:   "warn",
				EnvVars: []string{"PORTFOLIO_LOG_LEVEL"},
				Action: func(ctx *cli.Context, v string) error {
					if !logger.ValidLevel(v) {
						return fmt.Errorf("invalid logLevel, allowed values: %s", strings.Join(logger.Levels, ", "))
					}
					return nil
				},
			},
		},
		Before: func(ctx *cli.Context) error {
			logger.SetupConsole(ctx.String("logLevel"), "portfolio")
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list the records of a kind, from the cache when it is fresh",
				ArgsUsage: kindsUsage(),
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "bypass the cache"},
				},
				Action: withKind(1, func(ctx *cli.Context, c kindCommands) error {
					return printJSON(c.list(ctx.Context, ctx.Bool("force")))
				}),
			},
			{
				Name:      "get",
				Usage:     "get one record",
				ArgsUsage: kindsUsage() + " <id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "bypass the cache"},
				},
				Action: withKind(2, func(ctx *cli.Context, c kindCommands) error {
					id, err := parseID(ctx.Args().Get(1))
					if err != nil {
						return err
					}
					return printJSON(c.get(ctx.Context, id, ctx.Bool("force")))
				}),
			},
			{
				Name:      "create",
				Usage:     "create a record from its JSON representation",
				ArgsUsage: kindsUsage() + " <json>",
				Action: withKind(2, func(ctx *cli.Context, c kindCommands) error {
					return printJSON(c.create(ctx.Context, []byte(ctx.Args().Get(1))))
				}),
			},
			{
				Name:      "update",
				Usage:     "merge a JSON patch into a record",
				ArgsUsage: kindsUsage() + " <id> <json>",
				Action: withKind(3, func(ctx *cli.Context, c kindCommands) error {
					id, err := parseID(ctx.Args().Get(1))
					if err != nil {
						return err
					}
					var patch record.Patch
					if err := json.Unmarshal([]byte(ctx.Args().Get(2)), &patch); err != nil {
						return fmt.Errorf("invalid json patch: %w", err)
					}
					return printJSON(c.update(ctx.Context, id, patch))
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a record",
				ArgsUsage: kindsUsage() + " <id>",
				Action: withKind(2, func(ctx *cli.Context, c kindCommands) error {
					id, err := parseID(ctx.Args().Get(1))
					if err != nil {
						return err
					}
					if err := c.delete(ctx.Context, id); err != nil {
						return err
					}
					if msg := c.lastError(); msg != "" {
						fmt.Printf("[WARN] %s\n", msg)
					}
					fmt.Println("[OK] record deleted")
					return nil
				}),
			},
			{
				Name:  "refresh",
				Usage: "reload every list from the API",
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					if err := p.LoadAll(ctx.Context, true); err != nil {
						return err
					}
					fmt.Println("[OK] all lists refreshed")
					return nil
				}),
			},
			{
				Name:  "watch",
				Usage: "keep running and refresh stale lists on the weekly refresh day",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "how often to check",
						Value: time.Hour,
						Action: func(ctx *cli.Context, v time.Duration) error {
							if v <= 0 {
								return fmt.Errorf("invalid interval %v, must be positive", v)
							}
							return nil
						},
					},
				},
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					p.Runner.Interval = ctx.Duration("interval")
					c, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()
					p.AutoRefresh(c)
					return nil
				}),
			},
			{
				Name:  "scrape",
				Usage: "ask the API to record fresh market data",
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					if err := p.TriggerScrape(ctx.Context); err != nil {
						return err
					}
					fmt.Println("[OK] market scrape request successfully submitted")
					return nil
				}),
			},
			{
				Name:  "cache-info",
				Usage: "show the age and expiry of the cached lists",
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					for _, info := range p.CacheInfo() {
						if !info.Cached {
							fmt.Printf("%-15s not cached\n", info.Key)
							continue
						}
						fmt.Printf("%-15s age %-12v expires in %v\n", info.Key, info.Age.Round(time.Second), info.ExpiresIn.Round(time.Second))
					}
					return nil
				}),
			},
			{
				Name:  "cache-clear",
				Usage: "drop every cached list and record",
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					p.ClearCache()
					fmt.Println("[OK] cache cleared")
					return nil
				}),
			},
			{
				Name:  "summary",
				Usage: "show portfolio totals",
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					if _, err := p.Properties.FetchAll(ctx.Context, false); err != nil {
						return err
					}
					return printJSON(p.Summary(), nil)
				}),
			},
			{
				Name:  "roi",
				Usage: "compute the return on investment, remembering the inputs",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "purchasePrice"},
					&cli.Float64Flag{Name: "currentValue"},
					&cli.Float64Flag{Name: "annualRent"},
					&cli.Float64Flag{Name: "annualExpenses"},
				},
				Action: withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
					in, _ := p.LoadROIInputs()
					for name, field := range map[string]**float64{
						"purchasePrice":  &in.PurchasePrice,
						"currentValue":   &in.CurrentValue,
						"annualRent":     &in.AnnualRent,
						"annualExpenses": &in.AnnualExpenses,
					} {
						if ctx.IsSet(name) {
							v := ctx.Float64(name)
							*field = &v
						}
					}
					p.SaveROIInputs(in)

					roi, err := in.Compute()
					if err != nil {
						return err
					}
					return printJSON(roi, nil)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// kindCommands are the store operations of one kind with the record type erased.
type kindCommands struct {
	list      func(ctx context.Context, force bool) (any, error)
	get       func(ctx context.Context, id int64, force bool) (any, error)
	create    func(ctx context.Context, raw []byte) (any, error)
	update    func(ctx context.Context, id int64, patch record.Patch) (any, error)
	delete    func(ctx context.Context, id int64) error
	lastError func() string
}

func commandsFor[T record.Record](s *entity.Store[T]) kindCommands {
	return kindCommands{
		list: func(ctx context.Context, force bool) (any, error) {
			return s.FetchAll(ctx, force)
		},
		get: func(ctx context.Context, id int64, force bool) (any, error) {
			return s.FetchOne(ctx, id, force)
		},
		create: func(ctx context.Context, raw []byte) (any, error) {
			var draft T
			if err := json.Unmarshal(raw, &draft); err != nil {
				return nil, fmt.Errorf("invalid json %s: %w", s.Kind(), err)
			}
			return s.Create(ctx, draft)
		},
		update: func(ctx context.Context, id int64, patch record.Patch) (any, error) {
			return s.Update(ctx, id, patch)
		},
		delete: s.Delete,
		lastError: func() string {
			return s.State().LastError
		},
	}
}

func commands(p *portfolio.Portfolio, kind string) (kindCommands, error) {
	switch kind {
	case record.KindProperty:
		return commandsFor(p.Properties), nil
	case record.KindTenant:
		return commandsFor(p.Tenants), nil
	case record.KindEvent:
		return commandsFor(p.Events), nil
	case record.KindMaintenance:
		return commandsFor(p.Maintenance), nil
	case record.KindMarket:
		return commandsFor(p.Market), nil
	default:
		return kindCommands{}, fmt.Errorf("unknown kind %q, allowed values: %s", kind, strings.Join(kinds, ", "))
	}
}

func withPortfolio(action func(ctx *cli.Context, p *portfolio.Portfolio) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		db, err := store.New(ctx.String("cacheStore"), ctx.String("cachePath"), "cache")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Err(err).Msg("failed to close cache")
			}
		}()

		p, err := portfolio.New(portfolio.Config{
			BaseURL: ctx.String("api"),
			Db:      db,
			Client:  &http.Client{Timeout: ctx.Duration("timeout")},
		})
		if err != nil {
			return err
		}
		return action(ctx, p)
	}
}

func withKind(argsCount int, action func(ctx *cli.Context, c kindCommands) error) cli.ActionFunc {
	return withPortfolio(func(ctx *cli.Context, p *portfolio.Portfolio) error {
		if ctx.Args().Len() != argsCount {
			return fmt.Errorf("wrong arguments count, expected=%d, got=%d", argsCount, ctx.Args().Len())
		}
		c, err := commands(p, ctx.Args().First())
		if err != nil {
			return err
		}
		return action(ctx, c)
	})
}

func kindsUsage() string {
	return "<" + strings.Join(kinds, "|") + ">"
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", s)
	}
	return id, nil
}

func printJSON(v any, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
