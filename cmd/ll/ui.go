package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	cl "landlord/internal/cli"
	"landlord/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("36")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
)

var errNotInteractive = errors.New("stdin is not a terminal; pass the value as an argument")

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func promptRequired(label string) (string, error) {
	if !interactive() {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), errNotInteractive)
	}
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	if !interactive() {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), errNotInteractive)
	}
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func promptFloat(label string, min float64) (float64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			printWarn("Enter a valid number.")
			continue
		}
		if v <= min {
			printWarn(fmt.Sprintf("Value must be > %.2f", min))
			continue
		}
		return v, nil
	}
}

func promptInt64(label string, min int64) (int64, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			printWarn("Enter a whole number.")
			continue
		}
		if v < min {
			printWarn(fmt.Sprintf("Value must be >= %d", min))
			continue
		}
		return v, nil
	}
}

// confirm asks a yes/no question. Without a terminal it assumes yes so that
// scripted runs are not blocked.
func confirm(question string) bool {
	if !interactive() {
		return true
	}
	answer, err := promptChoice(question, []string{"y", "n"}, "n")
	return err == nil && answer == "y"
}

func panel(title string, rows [][2]string) string {
	var b strings.Builder
	b.WriteString(panelTitle.Render(title))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	return panelStyle.Render(b.String())
}

func renderStatus(slot string, m game.Metrics) {
	ov, ec, sf := m.Overview, m.Economy, m.Staffing
	phase := string(ov.Phase)
	if ov.Phase == game.PhaseOpen {
		phase = fmt.Sprintf("open, round %d (%d/%d in)", ov.Round, ov.Patrons, ov.BarCapacity)
	}
	pub := panel(fmt.Sprintf("%s  week %d, night %d", slot, ov.Week, ov.Night), [][2]string{
		{"Cash", colorizePence(ov.CashPence)},
		{"Reputation", strconv.Itoa(ov.Reputation)},
		{"Credit score", strconv.Itoa(ov.CreditScore)},
		{"Pub level", strconv.Itoa(ov.PubLevel)},
		{"Doors", phase},
		{"Date", seasonLabel(ov.Date, ov.Seasons)},
		{"Prices", fmt.Sprintf("x%.2f%s", ov.PriceMult, happyHourTag(ov.HappyHour))},
		{"Identity", fmt.Sprintf("%+.1f", ov.Identity)},
	})
	money := panel("Money", [][2]string{
		{"Revenue tonight", formatPence(ec.RevenueTonightPence)},
		{"Revenue week", formatPence(ec.RevenueWeekPence)},
		{"Costs week", formatPence(ec.CostsWeekPence)},
		{"Dues so far", formatPence(ec.Dues.TotalPence)},
		{"Debt", formatPence(ec.DebtPence)},
		{"Beverages", fmt.Sprintf("%d/%d", ec.BeverageStock, ec.BeverageCapacity)},
		{"Food", fmt.Sprintf("%d/%d", ec.FoodStock, ec.FoodCapacity)},
	})
	people := panel("Staff and risk", [][2]string{
		{"Front of house", fmt.Sprintf("%d/%d", sf.FrontOfHouse, sf.FrontOfHouseCap)},
		{"Kitchen", strconv.Itoa(sf.BackOfHouse)},
		{"Managers", strconv.Itoa(sf.Managers)},
		{"Morale", strconv.Itoa(sf.AverageMorale)},
		{"Serve cap", fmt.Sprintf("%d drinks, %d food", sf.ServeCapacity, sf.FoodServeCapacity)},
		{"Security", strconv.Itoa(m.Risk.Security.Total)},
		{"Incident odds", fmt.Sprintf("%.0f%%", m.Risk.IncidentChance*100)},
	})
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, pub, money, people))
	if ec.Deal.Item != "" {
		printInfo(fmt.Sprintf("Supplier deal today: %s at %s of list.", ec.Deal.Item, formatBps(ec.Deal.MultBps)))
	}
}

func seasonLabel(date string, tags []game.SeasonTag) string {
	if len(tags) == 0 {
		return date
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = strings.ReplaceAll(string(t), "_", " ")
	}
	return fmt.Sprintf("%s (%s)", date, strings.Join(names, ", "))
}

func happyHourTag(on bool) string {
	if on {
		return " happy hour"
	}
	return ""
}

func renderGames(games []cl.GameSummary) {
	accent.Println("\n== SAVED GAMES ==")
	if len(games) == 0 {
		printInfo("No games yet. Start one with `ll new <slot>`.")
		return
	}
	fmt.Printf("%-20s %6s %14s %6s %-20s\n", "SLOT", "WEEK", "CASH", "REP", "UPDATED")
	for _, g := range games {
		fmt.Printf("%-20s %6d %14s %6d %-20s\n",
			truncate(g.Slot, 20),
			g.Week,
			formatPence(g.CashPence),
			g.Reputation,
			g.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Println()
}

func renderRound(r game.RoundReport) {
	accent.Printf("Round %2d ", r.Round)
	fmt.Printf("in %-3d away %-3d served %-3d food %-3d unserved %-3d left %-3d patrons %-3d takings %s",
		r.Admitted, r.TurnedAway, r.Served, r.FoodServed, r.Unserved, r.Departed, r.Patrons, formatPence(r.RevenuePence))
	if r.Incident != "" {
		danger.Printf("  incident: %s", r.Incident)
	}
	if r.Event != "" {
		warn.Printf("  %s", strings.ReplaceAll(r.Event, "_", " "))
	}
	fmt.Println()
}

func renderNight(n game.NightReport) {
	if n.AlreadyClosed {
		printInfo("The pub is already closed.")
		return
	}
	c := n.Counters
	rows := [][2]string{
		{"Rounds", strconv.Itoa(n.RoundsPlayed)},
		{"Served", fmt.Sprintf("%d drinks, %d food", c.Served, c.FoodServed)},
		{"Turned away", strconv.Itoa(c.TurnedAway)},
		{"Lost sales", strconv.Itoa(c.LostSales)},
		{"Incidents", strconv.Itoa(c.Incidents)},
		{"Takings", formatPence(c.RevenuePence)},
		{"Tips", formatPence(c.TipsPence)},
		{"Cash", colorizePence(n.CashPence)},
		{"Reputation", strconv.Itoa(n.Reputation)},
	}
	if n.EarlyClosePenalty > 0 {
		rows = append(rows, [2]string{"Early close", danger.Sprintf("-%d rep", n.EarlyClosePenalty)})
	}
	fmt.Println(panel(fmt.Sprintf("Night %d closed (%s)", n.Night, n.Reason), rows))
	for _, s := range n.Spoiled {
		printWarn(fmt.Sprintf("Spoiled: %d x %s (%s)", s.Qty, s.Item, formatPence(s.ValuePence)))
	}
	for _, id := range n.Installed {
		printSuccess(fmt.Sprintf("Installed: %s", id))
	}
	for _, id := range n.NewMilestones {
		printSuccess(fmt.Sprintf("Milestone: %s", id))
	}
	for _, arc := range n.VIPArcs {
		if arc.Stage == game.StageAdvocate {
			printSuccess(fmt.Sprintf("%s is telling the whole district about you.", arc.Name))
		} else {
			printError(fmt.Sprintf("%s has turned against the pub.", arc.Name))
		}
	}
	if n.Week != nil {
		renderWeek(*n.Week)
	}
	if n.Period != nil {
		p := n.Period
		accent.Printf("Four-week report %d (weeks %d-%d): profit %s, pub level %d\n",
			p.Index, p.FirstWeek, p.LastWeek, colorizePence(p.ProfitPence), p.PubLevel)
	}
}

func renderWeek(w game.WeekReport) {
	rows := [][2]string{
		{"Revenue", formatPence(w.Totals.RevenuePence)},
		{"Costs", formatPence(w.Totals.TotalCostsPence())},
		{"Profit", colorizePence(w.ProfitPence)},
		{"Dues paid", formatPence(w.Totals.DuesPaidPence)},
		{"Cash", colorizePence(w.CashPence)},
		{"Debt", formatPence(w.DebtPence)},
		{"Credit score", strconv.Itoa(w.CreditScore)},
	}
	if w.NextMarket.Rivals > 0 {
		rows = append(rows, [2]string{"Rivals next", fmt.Sprintf("%s, traffic x%.2f", w.NextMarket.Dominant(), w.NextMarket.TrafficMult())})
	}
	fmt.Println(panel(fmt.Sprintf("Week %d settled", w.Week), rows))
	for _, tag := range w.Missed {
		printError(fmt.Sprintf("Missed payment: %s", tag))
	}
	for _, name := range w.StaffQuit {
		printWarn(fmt.Sprintf("%s quit.", name))
	}
}

func renderStock(s cl.Stock) {
	accent.Println("\n== STOCK ==")
	renderRack("Beverages", s.Beverages, s.BeverageCapacity)
	renderRack("Food", s.Foods, s.FoodCapacity)
	for _, d := range s.Deliveries {
		printInfo(fmt.Sprintf("Delivery: %d x %s in %d round(s)", d.Qty, d.Item, d.RoundsRemaining))
	}
	if s.Deal.Item != "" {
		printInfo(fmt.Sprintf("Deal: %s at %s of list", s.Deal.Item, formatBps(s.Deal.MultBps)))
	}
	fmt.Println()
}

func renderRack(label string, r game.Rack, capacity int) {
	fmt.Printf("%s %d/%d\n", label, r.Total(), capacity)
	if len(r.Batches) == 0 {
		return
	}
	fmt.Printf("  %-18s %6s %6s %10s\n", "ITEM", "QTY", "DAYS", "UNIT")
	for _, b := range r.Batches {
		fmt.Printf("  %-18s %6d %6d %10s\n", truncate(string(b.Item), 18), b.Qty, b.DaysRemaining, formatPence(b.UnitCostPence))
	}
}

func renderPurchase(p game.PurchaseResult) {
	paid := "on trade credit"
	if p.PaidFromCash {
		paid = "from cash"
	}
	msg := fmt.Sprintf("Bought %d x %s for %s %s.", p.Qty, p.Item, formatPence(p.CostPence), paid)
	if p.Emergency {
		msg += fmt.Sprintf(" Emergency delivery in %d round(s).", p.ArrivesInRounds)
	}
	printSuccess(msg)
}

func renderForecast(rows []game.ForecastEntry) {
	accent.Println("\n== SPOILAGE FORECAST ==")
	if len(rows) == 0 {
		printInfo("Nothing on the racks.")
		return
	}
	fmt.Printf("%-18s %6s %6s\n", "ITEM", "QTY", "DAYS")
	for _, r := range rows {
		days := strconv.Itoa(r.DaysRemaining)
		if r.DaysRemaining <= 1 {
			days = danger.Sprint(days)
		}
		fmt.Printf("%-18s %6d %6s\n", truncate(string(r.Item), 18), r.Qty, days)
	}
	fmt.Println()
}

func renderDebt(d cl.Debt) {
	accent.Printf("\n== DEBT (credit score %d) ==\n", d.CreditScore)
	if len(d.CreditLines) > 0 {
		fmt.Printf("%-10s %-14s %12s %12s %8s %-6s %6s\n", "ID", "LENDER", "BALANCE", "LIMIT", "APR", "OPEN", "MISSED")
		for _, l := range d.CreditLines {
			open := "yes"
			if !l.Open {
				open = "no"
			}
			fmt.Printf("%-10s %-14s %12s %12s %8s %-6s %6d\n",
				l.ID, l.Lender, formatPence(l.BalancePence), formatPence(l.LimitPence), formatBps(l.APRBps), open, l.MissedPayments)
		}
	}
	fmt.Printf("Trade (beverage): %s\n", formatPence(d.TradeBeverage.BalancePence+d.TradeBeverage.LateFeesPence))
	fmt.Printf("Trade (food):     %s\n", formatPence(d.TradeFood.BalancePence+d.TradeFood.LateFeesPence))
	if d.Shark != nil && d.Shark.BalancePence > 0 {
		danger.Printf("Shark:            %s at %s/week\n", formatPence(d.Shark.BalancePence), formatBps(d.Shark.WeeklyRateBps))
	}
	fmt.Printf("Total:            %s\n\n", formatPence(d.TotalPence))
}

func renderDistrict(d game.DistrictView) {
	season := panel("Calendar", [][2]string{
		{"Date", seasonLabel(d.Season.Date, d.Season.Tags)},
		{"Traffic", fmt.Sprintf("x%.2f", d.Season.TrafficMult)},
		{"Supplier prices", fmt.Sprintf("x%.2f", d.Season.SupplierMult)},
		{"Events", fmt.Sprintf("x%.2f", d.Season.EventMult)},
	})
	rivals := [][2]string{{"This week", fmt.Sprintf("%s, traffic x%.2f", d.Dominant, d.Market.TrafficMult())}}
	for _, r := range d.Rivals {
		rivals = append(rivals, [2]string{truncate(r.Name, 15), r.Vibe})
	}
	regulars := [][2]string{{"Word of mouth", fmt.Sprintf("x%.2f", d.VIPMult)}}
	for _, v := range d.VIPs {
		regulars = append(regulars, [2]string{truncate(v.Name, 15), fmt.Sprintf("%s, %d", v.Stage, v.Loyalty)})
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, season, panel("Rivals", rivals), panel("Regulars", regulars)))
	if len(d.VIPs) == 0 {
		printInfo("No regulars yet. Open the doors and they will find you.")
	}
}

func renderDues(d game.DueBreakdown) {
	accent.Println("\n== DUES THIS WEEK ==")
	if len(d.Lines) == 0 {
		printInfo("Nothing owed yet.")
		return
	}
	for _, l := range d.Lines {
		fmt.Printf("%-28s %12s\n", truncate(l.Label, 28), formatPence(l.AmountPence))
	}
	fmt.Printf("%-28s %12s\n\n", "TOTAL", formatPence(d.TotalPence))
}

func renderRoster(r game.Roster) {
	accent.Println("\n== ROSTER ==")
	section := func(title string, staff []game.Staff) {
		fmt.Println(title)
		if len(staff) == 0 {
			printInfo("  nobody")
			return
		}
		for i, s := range staff {
			fmt.Printf("  %2d %-10s %-20s %-18s morale %3d  %s/wk\n",
				i, s.ID, truncate(s.Name, 20), s.Type, s.Morale, formatPence(s.WeeklyWagePence))
		}
	}
	section("Front of house", r.FrontOfHouse)
	section("Kitchen", r.BackOfHouse)
	section("Managers", r.Managers)
	fmt.Println()
}

func renderSecurity(b game.SecurityBreakdown) {
	rows := [][2]string{
		{"Policy", string(b.Active)},
		{"Base", strconv.Itoa(b.Base)},
		{"Upgrades", strconv.Itoa(b.Upgrades)},
		{"Policy mod", fmt.Sprintf("%+d", b.Policy)},
		{"Bouncers", strconv.Itoa(b.Bouncers)},
		{"Manager", strconv.Itoa(b.Manager)},
		{"Staff", strconv.Itoa(b.Staff)},
		{"Total", strconv.Itoa(b.Total)},
	}
	if b.Task != "" {
		rows = append(rows, [2]string{"Task", string(b.Task)})
	}
	fmt.Println(panel("Security", rows))
}

func renderAvailability(title string, rows []cl.Availability) {
	accent.Printf("\n== %s ==\n", title)
	for _, r := range rows {
		switch {
		case r.Owned:
			fmt.Printf("%-22s %s\n", r.ID, success.Sprint("owned"))
		case r.Available:
			fmt.Printf("%-22s %s\n", r.ID, neutral.Sprint("available"))
		default:
			fmt.Printf("%-22s %s\n", r.ID, warn.Sprint(strings.Join(r.Reasons, "; ")))
		}
	}
	fmt.Println()
}

func renderAction(r game.ActionResult) {
	switch r.Status {
	case game.ActionSucceeded:
		printSuccess(fmt.Sprintf("%s worked (%.0f%% chance).", r.Action, r.Chance*100))
	case game.ActionBlocked:
		printWarn(fmt.Sprintf("%s blocked: %s", r.Action, r.Reason))
		return
	default:
		printError(fmt.Sprintf("%s fell flat (%.0f%% chance).", r.Action, r.Chance*100))
	}
	if r.CostPence > 0 {
		fmt.Printf("  cost %s", formatPence(r.CostPence))
	}
	if r.RepDelta != 0 {
		fmt.Printf("  rep %+d", r.RepDelta)
	}
	if r.MoraleDelta != 0 {
		fmt.Printf("  morale %+d", r.MoraleDelta)
	}
	if r.TrafficRounds > 0 {
		fmt.Printf("  traffic %s for %d round(s)", formatBps(r.TrafficBps), r.TrafficRounds)
	}
	fmt.Println()
}

func renderReports(r game.Reports) {
	accent.Println("\n== WEEKS ==")
	if len(r.Weeks) == 0 {
		printInfo("No week has settled yet.")
	}
	for _, w := range r.Weeks {
		fmt.Printf("Week %3d  profit %12s  cash %12s  debt %12s  rep %3d  missed %d\n",
			w.Week, colorizePence(w.ProfitPence), formatPence(w.CashPence), formatPence(w.DebtPence), w.Reputation, len(w.Missed))
	}
	for _, p := range r.Periods {
		fmt.Printf("Period %2d (weeks %d-%d)  profit %12s  level %d\n",
			p.Index, p.FirstWeek, p.LastWeek, colorizePence(p.ProfitPence), p.PubLevel)
	}
}

func renderMilestones(level int, ms []game.MilestoneView) {
	accent.Printf("\n== MILESTONES (pub level %d) ==\n", level)
	for _, m := range ms {
		mark := neutral.Sprint("[ ]")
		if m.Achieved {
			mark = success.Sprint("[x]")
		}
		fmt.Printf("%s %-24s %s\n", mark, m.Label, m.Description)
	}
	fmt.Println()
}

func renderEvent(ev game.Event) {
	text := ev.Message
	if text == "" {
		switch ev.Kind {
		case game.EventCashChanged:
			text = "cash " + formatPence(ev.CashPence)
		case game.EventReputationChanged:
			text = fmt.Sprintf("reputation %d", ev.Reputation)
		case game.EventStaffCountChanged:
			text = fmt.Sprintf("staff %d", ev.StaffCount)
		case game.EventPatronCountChanged:
			text = fmt.Sprintf("patrons %d", ev.Patrons)
		case game.EventNightStatusChanged:
			text = "doors " + string(ev.Phase)
		case game.EventWeekChanged:
			text = fmt.Sprintf("week %d", ev.Week)
		}
	}
	switch ev.Tone {
	case game.ToneGood:
		success.Println(text)
	case game.ToneWarn:
		warn.Println(text)
	case game.ToneBad:
		danger.Println(text)
	default:
		neutral.Println(text)
	}
}

func colorizePence(v int64) string {
	text := formatPence(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatPence(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s£%s.%02d", sign, comma(v/100), v%100)
}

func formatBps(bps int64) string {
	return strconv.FormatFloat(float64(bps)/100, 'f', -1, 64) + "%"
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		if len(s) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
