package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	cl "landlord/internal/cli"
	"landlord/internal/config"
	"landlord/internal/game"
	"landlord/internal/syncq"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type options struct {
	apiBase string
	slot    string
}

func main() {
	cfg := config.LoadCLIFromEnv()
	o := &options{apiBase: cfg.APIBaseURL, slot: cfg.Slot}
	if p, err := cl.LoadProfile(); err == nil && p.APIBaseURL != "" && os.Getenv("LL_API_BASE_URL") == "" {
		o.apiBase = p.APIBaseURL
	}

	root := &cobra.Command{
		Use:          "ll",
		Short:        "Run a pub, one night at a time",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&o.apiBase, "api", o.apiBase, "API base URL")
	root.PersistentFlags().StringVar(&o.slot, "slot", o.slot, "game slot (defaults to the active profile)")

	root.AddCommand(
		newNewCmd(o),
		newGamesCmd(o),
		newForgetCmd(),
		newStatusCmd(o),
		newOpenCmd(o),
		newRoundCmd(o),
		newCloseCmd(o),
		newNightCmd(o),
		newStockCmd(o),
		newBuyCmd(o),
		newCostCmd(o),
		newForecastCmd(o),
		newDebtCmd(o),
		newDuesCmd(o),
		newRepayCmd(o),
		newCreditCmd(o),
		newSharkCmd(o),
		newStaffCmd(o),
		newManagerCmd(o),
		newSecurityCmd(o),
		newUpgradeCmd(o),
		newActivityCmd(o),
		newActionCmd(o),
		newPriceCmd(o),
		newHappyHourCmd(o),
		newReportsCmd(o),
		newDistrictCmd(o),
		newEventsCmd(o),
		newSyncCmd(o),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(o *options) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(o.apiBase), "/"))
}

// activeSlot prefers --slot, then LL_SLOT, then the saved profile.
func activeSlot(o *options) (string, error) {
	if s := strings.TrimSpace(o.slot); s != "" {
		return s, nil
	}
	p, err := cl.LoadProfile()
	if err != nil {
		return "", err
	}
	return p.Slot, nil
}

// mutate sends a state-changing command. When the API cannot be reached the
// request is queued for `ll sync` under the same idempotency key.
func mutate(cmd *cobra.Command, o *options, method, suffix string, body map[string]any, call func(ctx context.Context, c *cl.Client, slot, idem string) error) error {
	slot, err := activeSlot(o)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	idem := uuid.NewString()
	if err := call(ctx, newClient(o), slot, idem); err != nil {
		return queueOnNetworkError(err, syncq.Command{
			Slot:           slot,
			Name:           strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "),
			Method:         method,
			Path:           cl.GamePath(slot, suffix),
			Body:           body,
			IdempotencyKey: idem,
		})
	}
	return nil
}

// read runs a query against the active slot.
func read(cmd *cobra.Command, o *options, call func(ctx context.Context, c *cl.Client, slot string) error) error {
	slot, err := activeSlot(o)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	return call(ctx, newClient(o), slot)
}

func newNewCmd(o *options) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "new [slot]",
		Short: "Start a new game and make it the active slot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := argOrPrompt(args, 0, "Slot name")
			if err != nil {
				return err
			}
			slot = strings.ToLower(slot)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			st, err := newClient(o).CreateGame(ctx, slot, seed, uuid.NewString())
			if err != nil {
				return err
			}
			if err := cl.SaveProfile(cl.Profile{Slot: slot, APIBaseURL: o.apiBase}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Pub %q is yours. Cash %s, reputation %d.", slot, formatPence(st.CashPence), st.Reputation))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "dice seed (0 picks one)")
	return cmd
}

func newGamesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			games, err := newClient(o).ListGames(ctx)
			if err != nil {
				return err
			}
			renderGames(games)
			return nil
		},
	}
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Forget the active game slot on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cl.ClearProfile(); err != nil {
				return err
			}
			printSuccess("Active slot cleared. Saved games stay on the server.")
			return nil
		},
	}
}

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pub dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				m, err := c.Metrics(ctx, slot)
				if err != nil {
					return err
				}
				renderStatus(slot, m)
				return nil
			})
		},
	}
}

func newOpenCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the doors for tonight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, o, http.MethodPost, "/night/open", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				rep, err := c.OpenNight(ctx, slot, idem)
				if err != nil {
					return err
				}
				renderRound(rep)
				return nil
			})
		},
	}
}

func newRoundCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "round",
		Short: "Play the next round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, o, http.MethodPost, "/night/round", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				rep, err := c.PlayRound(ctx, slot, idem)
				if err != nil {
					return err
				}
				renderRound(rep)
				return nil
			})
		},
	}
}

func newCloseCmd(o *options) *cobra.Command {
	var early bool
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Call time and settle the night",
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := game.CloseLastOrders
			if early {
				reason = game.CloseEarly
			}
			body := map[string]any{"reason": string(reason)}
			return mutate(cmd, o, http.MethodPost, "/night/close", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				rep, err := c.CloseNight(ctx, slot, reason, idem)
				if err != nil {
					return err
				}
				renderNight(rep)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&early, "early", false, "close before last orders")
	return cmd
}

func newNightCmd(o *options) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "night",
		Short: "Open, play every round until last orders, then close",
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := activeSlot(o)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			c := newClient(o)

			rep, err := c.OpenNight(ctx, slot, uuid.NewString())
			if err != nil {
				return err
			}
			if !quiet {
				renderRound(rep)
			}
			for {
				rep, err := c.PlayRound(ctx, slot, uuid.NewString())
				var apiErr *cl.APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
					break
				}
				if err != nil {
					return err
				}
				if !quiet {
					renderRound(rep)
				}
			}
			night, err := c.CloseNight(ctx, slot, game.CloseLastOrders, uuid.NewString())
			if err != nil {
				return err
			}
			renderNight(night)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the night summary")
	return cmd
}

func newStockCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Show racks, deliveries and today's supplier deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				s, err := c.Stock(ctx, slot)
				if err != nil {
					return err
				}
				renderStock(s)
				return nil
			})
		},
	}
}

func newBuyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "buy [item] [qty]",
		Short: "Order stock",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := itemFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			qty, err := int64FromArgOrPrompt(args, 1, "Quantity")
			if err != nil {
				return err
			}
			body := map[string]any{"item": string(item), "qty": qty}
			return mutate(cmd, o, http.MethodPost, "/stock", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				res, err := c.Buy(ctx, slot, item, int(qty), idem)
				if err != nil {
					return err
				}
				renderPurchase(res)
				return nil
			})
		},
	}
}

func newCostCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cost [item] [qty]",
		Short: "Quote an order without buying",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := itemFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			qty, err := int64FromArgOrPrompt(args, 1, "Quantity")
			if err != nil {
				return err
			}
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				cost, err := c.PeekCost(ctx, slot, item, int(qty))
				if err != nil {
					return err
				}
				printInfo(fmt.Sprintf("%d x %s would cost %s", qty, item, formatPence(cost)))
				return nil
			})
		},
	}
}

func newForecastCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Show stock by days until it spoils",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				rows, err := c.Forecast(ctx, slot)
				if err != nil {
					return err
				}
				renderForecast(rows)
				return nil
			})
		},
	}
}

func newDebtCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "debt",
		Short: "Show credit lines, trade credit and the shark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				d, err := c.Debt(ctx, slot)
				if err != nil {
					return err
				}
				renderDebt(d)
				return nil
			})
		},
	}
}

func newDuesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dues",
		Short: "Show what the week would bill if it ended now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				d, err := c.Dues(ctx, slot)
				if err != nil {
					return err
				}
				renderDues(d)
				return nil
			})
		},
	}
}

func newRepayCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repay [instrument]",
		Short: "Pay off shark, trade_beverage, trade_food or a credit line id in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instrument, err := argOrPrompt(args, 0, "Instrument")
			if err != nil {
				return err
			}
			body := map[string]any{"instrument": instrument}
			return mutate(cmd, o, http.MethodPost, "/debt/repay", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				res, err := c.Repay(ctx, slot, instrument, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Paid %s off %s. Cash now %s.", formatPence(res.PaidPence), res.Instrument, formatPence(res.CashAfterPence)))
				return nil
			})
		},
	}
}

func newCreditCmd(o *options) *cobra.Command {
	credit := &cobra.Command{
		Use:   "credit",
		Short: "Open and draw on credit lines",
	}
	credit.AddCommand(&cobra.Command{
		Use:   "open [lender]",
		Short: "Apply for a credit line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lender, err := lenderFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			body := map[string]any{"lender": string(lender)}
			return mutate(cmd, o, http.MethodPost, "/debt/lines", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				line, err := c.OpenCreditLine(ctx, slot, lender, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Opened %s with %s: limit %s at %s APR.", line.ID, line.Lender, formatPence(line.LimitPence), formatBps(line.APRBps)))
				return nil
			})
		},
	})
	credit.AddCommand(&cobra.Command{
		Use:   "draw [line-id] [amount-pounds]",
		Short: "Draw cash from an open credit line",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := argOrPrompt(args, 0, "Credit line id")
			if err != nil {
				return err
			}
			pence, err := poundsFromArgOrPrompt(args, 1, "Amount (£)")
			if err != nil {
				return err
			}
			body := map[string]any{"amount_pence": pence}
			suffix := "/debt/lines/" + lineID + "/draw"
			return mutate(cmd, o, http.MethodPost, suffix, body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				line, err := c.DrawCredit(ctx, slot, lineID, pence, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Drew %s. %s balance %s of %s.", formatPence(pence), line.ID, formatPence(line.BalancePence), formatPence(line.LimitPence)))
				return nil
			})
		},
	})
	return credit
}

func newSharkCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shark",
		Short: "Borrow from the loan shark",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm("The shark charges weekly interest and does not forget. Borrow?") {
				printInfo("Maybe another time.")
				return nil
			}
			return mutate(cmd, o, http.MethodPost, "/debt/shark", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				loan, err := c.OpenShark(ctx, slot, idem)
				if err != nil {
					return err
				}
				printWarn(fmt.Sprintf("Shark balance now %s at %s a week.", formatPence(loan.BalancePence), formatBps(loan.WeeklyRateBps)))
				return nil
			})
		},
	}
}

func newStaffCmd(o *options) *cobra.Command {
	staff := &cobra.Command{
		Use:   "staff",
		Short: "Hire, fire and list staff",
	}
	staff.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				r, err := c.Roster(ctx, slot)
				if err != nil {
					return err
				}
				renderRoster(r)
				return nil
			})
		},
	})
	staff.AddCommand(&cobra.Command{
		Use:   "hire [type]",
		Short: "Hire a member of staff",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := staffTypeFromArgsOrPrompt(args)
			if err != nil {
				return err
			}
			body := map[string]any{"type": string(t)}
			return mutate(cmd, o, http.MethodPost, "/staff", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				s, err := c.Hire(ctx, slot, t, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Hired %s (%s) on %s a week.", s.Name, s.Type, formatPence(s.WeeklyWagePence)))
				return nil
			})
		},
	})
	staff.AddCommand(&cobra.Command{
		Use:   "fire [staff-id]",
		Short: "Let someone go; wages owed are paid out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argOrPrompt(args, 0, "Staff id")
			if err != nil {
				return err
			}
			return mutate(cmd, o, http.MethodDelete, "/staff/"+id, nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				s, err := c.Fire(ctx, slot, id, idem)
				if err != nil {
					return err
				}
				printWarn(fmt.Sprintf("%s has left the pub.", s.Name))
				return nil
			})
		},
	})
	fireAt := &cobra.Command{
		Use:   "fire-at [pool] [index]",
		Short: "Fire by roster position (front_of_house, back_of_house, managers)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolText, err := argOrPrompt(args, 0, "Pool")
			if err != nil {
				return err
			}
			pool := game.StaffPool(strings.ToLower(poolText))
			idx, err := int64FromArgOrPrompt(args, 1, "Index")
			if err != nil {
				return err
			}
			body := map[string]any{"pool": string(pool), "index": idx}
			return mutate(cmd, o, http.MethodPost, "/staff/fire-at", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				s, err := c.FireAt(ctx, slot, pool, int(idx), idem)
				if err != nil {
					return err
				}
				printWarn(fmt.Sprintf("%s has left the pub.", s.Name))
				return nil
			})
		},
	}
	staff.AddCommand(fireAt)
	return staff
}

func newManagerCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "manager",
		Short: "Hire a manager",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, o, http.MethodPost, "/staff/manager", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				s, err := c.HireManager(ctx, slot, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s now runs the floor on %s a week.", s.Name, formatPence(s.WeeklyWagePence)))
				return nil
			})
		},
	}
}

func newSecurityCmd(o *options) *cobra.Command {
	breakdown := func(cmd *cobra.Command, args []string) error {
		return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
			b, err := c.Security(ctx, slot)
			if err != nil {
				return err
			}
			renderSecurity(b)
			return nil
		})
	}
	sec := &cobra.Command{
		Use:   "security",
		Short: "Door policy, bouncers and security tasks",
		RunE:  breakdown,
	}
	sec.AddCommand(&cobra.Command{
		Use:   "breakdown",
		Short: "Show where the security level comes from",
		RunE:  breakdown,
	})
	sec.AddCommand(&cobra.Command{
		Use:   "policy [friendly|balanced|strict]",
		Short: "Set the door policy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var policy string
			var err error
			if len(args) > 0 {
				policy = strings.ToLower(strings.TrimSpace(args[0]))
			} else {
				policy, err = promptChoice("Policy", []string{"friendly", "balanced", "strict"}, "balanced")
				if err != nil {
					return err
				}
			}
			body := map[string]any{"policy": policy}
			return mutate(cmd, o, http.MethodPost, "/security/policy", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				b, err := c.SetSecurityPolicy(ctx, slot, game.SecurityPolicy(policy), idem)
				if err != nil {
					return err
				}
				renderSecurity(b)
				return nil
			})
		},
	})
	sec.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Raise the base security level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, o, http.MethodPost, "/security/upgrade", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				level, err := c.UpgradeSecurity(ctx, slot, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Base security is now level %d.", level))
				return nil
			})
		},
	})
	sec.AddCommand(&cobra.Command{
		Use:   "bouncer",
		Short: "Book a bouncer for tonight",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, o, http.MethodPost, "/security/bouncer", nil, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				cost, err := c.HireBouncer(ctx, slot, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Bouncer on the door for %s.", formatPence(cost)))
				return nil
			})
		},
	})
	sec.AddCommand(&cobra.Command{
		Use:   "task [task-id]",
		Short: "Run a security task this round (e.g. visible_patrol, check_ids)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := argOrPrompt(args, 0, "Task")
			if err != nil {
				return err
			}
			body := map[string]any{"task": task}
			return mutate(cmd, o, http.MethodPost, "/security/tasks", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				if err := c.RunSecurityTask(ctx, slot, game.SecurityTaskID(task), idem); err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Running %s.", task))
				return nil
			})
		},
	})
	return sec
}

func newUpgradeCmd(o *options) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
			rows, err := c.Upgrades(ctx, slot)
			if err != nil {
				return err
			}
			renderAvailability("UPGRADES", rows)
			return nil
		})
	}
	up := &cobra.Command{
		Use:   "upgrade",
		Short: "List or buy pub upgrades",
		RunE:  list,
	}
	up.AddCommand(&cobra.Command{Use: "list", Short: "List upgrades and what blocks them", RunE: list})
	up.AddCommand(&cobra.Command{
		Use:   "buy [upgrade-id]",
		Short: "Buy an upgrade; it installs over the next nights",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argOrPrompt(args, 0, "Upgrade")
			if err != nil {
				return err
			}
			body := map[string]any{"upgrade": id}
			return mutate(cmd, o, http.MethodPost, "/upgrades", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				t, err := c.BuyUpgrade(ctx, slot, game.UpgradeID(id), idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s ordered; ready in %d night(s).", t.Upgrade, t.NightsRemaining))
				return nil
			})
		},
	})
	return up
}

func newActivityCmd(o *options) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
			rows, err := c.Activities(ctx, slot)
			if err != nil {
				return err
			}
			renderAvailability("ACTIVITIES", rows)
			return nil
		})
	}
	act := &cobra.Command{
		Use:   "activity",
		Short: "List or schedule activities",
		RunE:  list,
	}
	act.AddCommand(&cobra.Command{Use: "list", Short: "List activities and what blocks them", RunE: list})
	act.AddCommand(&cobra.Command{
		Use:   "schedule [activity-id]",
		Short: "Schedule an activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argOrPrompt(args, 0, "Activity")
			if err != nil {
				return err
			}
			body := map[string]any{"activity": id}
			return mutate(cmd, o, http.MethodPost, "/activities", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				s, err := c.ScheduleActivity(ctx, slot, game.ActivityID(id), idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s starts in %d night(s).", s.Activity, s.StartsIn))
				return nil
			})
		},
	})
	return act
}

func newActionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "action [action-id]",
		Short: "Take a landlord action this round; without an id, list them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
					ids, err := c.Actions(ctx, slot)
					if err != nil {
						return err
					}
					accent.Println("\n== LANDLORD ACTIONS ==")
					for _, id := range ids {
						fmt.Println(" ", id)
					}
					fmt.Println()
					return nil
				})
			}
			id := game.LandlordActionID(strings.TrimSpace(args[0]))
			body := map[string]any{"action": string(id)}
			return mutate(cmd, o, http.MethodPost, "/actions", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				res, err := c.LandlordAction(ctx, slot, id, idem)
				if err != nil {
					return err
				}
				renderAction(res)
				return nil
			})
		},
	}
}

func newPriceCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "price [multiplier]",
		Short: "Set the price multiplier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mult float64
			if len(args) > 0 {
				v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid multiplier")
				}
				mult = v
			} else {
				v, err := promptFloat("Multiplier", 0)
				if err != nil {
					return err
				}
				mult = v
			}
			body := map[string]any{"multiplier": mult}
			return mutate(cmd, o, http.MethodPost, "/price", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				got, err := c.SetPrice(ctx, slot, mult, idem)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Prices now x%.2f.", got))
				return nil
			})
		},
	}
}

func newHappyHourCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "happyhour [on|off]",
		Short: "Toggle happy hour for tonight",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := "on"
			if len(args) > 0 {
				state = strings.ToLower(strings.TrimSpace(args[0]))
			}
			if state != "on" && state != "off" {
				return fmt.Errorf("happyhour takes on or off")
			}
			on := state == "on"
			body := map[string]any{"on": on}
			return mutate(cmd, o, http.MethodPost, "/happy-hour", body, func(ctx context.Context, c *cl.Client, slot, idem string) error {
				if err := c.HappyHour(ctx, slot, on, idem); err != nil {
					return err
				}
				printSuccess("Happy hour " + state + ".")
				return nil
			})
		},
	}
}

func newReportsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "Show weekly and four-week reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				r, err := c.Reports(ctx, slot)
				if err != nil {
					return err
				}
				level, ms, err := c.Milestones(ctx, slot)
				if err != nil {
					return err
				}
				renderReports(r)
				renderMilestones(level, ms)
				return nil
			})
		},
	}
}

func newDistrictCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "district",
		Short: "Show the season, rival pubs and your regulars",
		RunE: func(cmd *cobra.Command, args []string) error {
			return read(cmd, o, func(ctx context.Context, c *cl.Client, slot string) error {
				d, err := c.District(ctx, slot)
				if err != nil {
					return err
				}
				renderDistrict(d)
				return nil
			})
		},
	}
}

func newEventsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Tail the live event stream until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := activeSlot(o)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			wsURL, err := newClient(o).EventsURL(slot)
			if err != nil {
				return err
			}
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
			if err != nil {
				return err
			}
			defer conn.Close()
			go func() {
				<-ctx.Done()
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				conn.Close()
			}()

			printInfo(fmt.Sprintf("Watching %s. Ctrl-C to stop.", slot))
			for {
				var msg struct {
					Type    string     `json:"type"`
					Payload game.Event `json:"payload"`
				}
				if err := conn.ReadJSON(&msg); err != nil {
					if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return err
				}
				renderEvent(msg.Payload)
			}
		},
	}
}

func newSyncCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay commands queued while the API was unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := syncq.Load()
			if err != nil {
				return err
			}
			if len(queue) == 0 {
				printInfo("Nothing queued.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			client := newClient(o)

			remaining := make([]syncq.Command, 0, len(queue))
			replayed := 0
			for i, q := range queue {
				_, err := client.Do(ctx, q.Method, q.Path, q.Body, q.IdempotencyKey)
				switch {
				case err == nil:
					replayed++
				case cl.IsAPIError(err):
					printWarn(fmt.Sprintf("Dropped %s: %v", q.Label(), err))
				default:
					// Still offline: keep this and everything after it in order.
					remaining = append(remaining, queue[i:]...)
				}
				if len(remaining) > 0 {
					break
				}
			}
			if err := syncq.Save(remaining); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Sync complete: replayed=%d remaining=%d", replayed, len(remaining)))
			pending := syncq.Pending(remaining)
			for _, slot := range slices.Sorted(maps.Keys(pending)) {
				printInfo(fmt.Sprintf("  %s: %d still queued", slot, pending[slot]))
			}
			return nil
		},
	}
}

func queueOnNetworkError(err error, q syncq.Command) error {
	if err == nil {
		return nil
	}
	if cl.IsAPIError(err) || errors.Is(err, context.Canceled) {
		return err
	}
	added, pushErr := syncq.Push(q)
	if pushErr != nil {
		return fmt.Errorf("request failed and could not be queued: %w", errors.Join(err, pushErr))
	}
	if added {
		printWarn(fmt.Sprintf("API unreachable (%v). Queued %s; run `ll sync` later.", err, q.Label()))
	}
	return nil
}

func argOrPrompt(args []string, idx int, label string) (string, error) {
	if len(args) > idx {
		if v := strings.TrimSpace(args[idx]); v != "" {
			return v, nil
		}
	}
	return promptRequired(label)
}

func itemFromArgsOrPrompt(args []string) (game.ItemID, error) {
	if len(args) > 0 {
		return game.ItemID(strings.ToLower(strings.TrimSpace(args[0]))), nil
	}
	choices := make([]string, 0)
	for _, pool := range []game.Pool{game.PoolBeverage, game.PoolFood} {
		for _, id := range game.Items(pool) {
			choices = append(choices, string(id))
		}
	}
	v, err := promptChoice("Item", choices, choices[0])
	return game.ItemID(v), err
}

func lenderFromArgsOrPrompt(args []string) (game.LenderID, error) {
	if len(args) > 0 {
		return game.LenderID(strings.ToLower(strings.TrimSpace(args[0]))), nil
	}
	lenders := game.Lenders()
	choices := make([]string, 0, len(lenders))
	for _, id := range lenders {
		choices = append(choices, string(id))
	}
	v, err := promptChoice("Lender", choices, choices[0])
	return game.LenderID(v), err
}

func staffTypeFromArgsOrPrompt(args []string) (game.StaffType, error) {
	if len(args) > 0 {
		return game.StaffType(strings.ToLower(strings.TrimSpace(args[0]))), nil
	}
	v, err := promptChoice("Type", []string{
		"trainee", "experienced", "speed", "charisma", "security",
		"assistant_manager", "chef", "head_chef", "kitchen_porter",
	}, "experienced")
	return game.StaffType(v), err
}

func int64FromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	if len(args) > idx {
		v, err := strconv.ParseInt(strings.TrimSpace(args[idx]), 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s", strings.ToLower(label))
		}
		return v, nil
	}
	return promptInt64(label, 0)
}

func poundsFromArgOrPrompt(args []string, idx int, label string) (int64, error) {
	var pounds float64
	if len(args) > idx {
		v, err := strconv.ParseFloat(strings.TrimSpace(args[idx]), 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("invalid amount")
		}
		pounds = v
	} else {
		v, err := promptFloat(label, 0)
		if err != nil {
			return 0, err
		}
		pounds = v
	}
	return int64(pounds*100 + 0.5), nil
}
