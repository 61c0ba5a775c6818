package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"landlord/internal/game"
)

// APIError is a response the API answered with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsAPIError reports whether err came back from the API rather than from the
// network.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func GamePath(slot, suffix string) string {
	return "/v1/games/" + url.PathEscape(slot) + suffix
}

type GameSummary struct {
	Slot       string    `json:"slot"`
	Week       int       `json:"week"`
	CashPence  int64     `json:"cash_pence"`
	Reputation int       `json:"reputation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Availability struct {
	ID        string   `json:"id"`
	Available bool     `json:"available"`
	Reasons   []string `json:"reasons,omitempty"`
	Owned     bool     `json:"owned,omitempty"`
}

type Debt struct {
	CreditLines   []game.CreditLine `json:"credit_lines"`
	Shark         *game.SharkLoan   `json:"shark,omitempty"`
	TradeBeverage game.TradeCredit  `json:"trade_beverage"`
	TradeFood     game.TradeCredit  `json:"trade_food"`
	CreditScore   int               `json:"credit_score"`
	TotalPence    int64             `json:"total_pence"`
}

type Stock struct {
	Beverages        game.Rack         `json:"beverages"`
	Foods            game.Rack         `json:"foods"`
	BeverageCapacity int               `json:"beverage_capacity"`
	FoodCapacity     int               `json:"food_capacity"`
	Deliveries       []game.Delivery   `json:"deliveries"`
	Deal             game.SupplierDeal `json:"deal"`
}

func (c *Client) CreateGame(ctx context.Context, slot string, seed uint64, idem string) (game.State, error) {
	var out struct {
		State game.State `json:"state"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", map[string]any{
		"slot": slot,
		"seed": seed,
	}, &out, idem)
	return out.State, err
}

func (c *Client) ListGames(ctx context.Context) ([]GameSummary, error) {
	var out struct {
		Games []GameSummary `json:"games"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games", nil, &out, "")
	return out.Games, err
}

func (c *Client) State(ctx context.Context, slot string) (game.State, error) {
	var out game.State
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, ""), nil, &out, "")
	return out, err
}

func (c *Client) Metrics(ctx context.Context, slot string) (game.Metrics, error) {
	var out game.Metrics
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/metrics"), nil, &out, "")
	return out, err
}

func (c *Client) District(ctx context.Context, slot string) (game.DistrictView, error) {
	var out game.DistrictView
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/district"), nil, &out, "")
	return out, err
}

func (c *Client) Reports(ctx context.Context, slot string) (game.Reports, error) {
	var out game.Reports
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/reports"), nil, &out, "")
	return out, err
}

func (c *Client) Milestones(ctx context.Context, slot string) (int, []game.MilestoneView, error) {
	var out struct {
		PubLevel   int                  `json:"pub_level"`
		Milestones []game.MilestoneView `json:"milestones"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/milestones"), nil, &out, "")
	return out.PubLevel, out.Milestones, err
}

func (c *Client) OpenNight(ctx context.Context, slot, idem string) (game.RoundReport, error) {
	var out game.RoundReport
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/night/open"), nil, &out, idem)
	return out, err
}

func (c *Client) PlayRound(ctx context.Context, slot, idem string) (game.RoundReport, error) {
	var out game.RoundReport
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/night/round"), nil, &out, idem)
	return out, err
}

func (c *Client) CloseNight(ctx context.Context, slot string, reason game.CloseReason, idem string) (game.NightReport, error) {
	var out game.NightReport
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/night/close"), map[string]any{
		"reason": reason,
	}, &out, idem)
	return out, err
}

func (c *Client) Stock(ctx context.Context, slot string) (Stock, error) {
	var out Stock
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/stock"), nil, &out, "")
	return out, err
}

func (c *Client) Buy(ctx context.Context, slot string, item game.ItemID, qty int, idem string) (game.PurchaseResult, error) {
	var out game.PurchaseResult
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/stock"), map[string]any{
		"item": item,
		"qty":  qty,
	}, &out, idem)
	return out, err
}

func (c *Client) PeekCost(ctx context.Context, slot string, item game.ItemID, qty int) (int64, error) {
	q := url.Values{}
	q.Set("item", string(item))
	q.Set("qty", strconv.Itoa(qty))
	var out struct {
		CostPence int64 `json:"cost_pence"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/stock/cost?"+q.Encode()), nil, &out, "")
	return out.CostPence, err
}

func (c *Client) Forecast(ctx context.Context, slot string) ([]game.ForecastEntry, error) {
	var out []game.ForecastEntry
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/stock/forecast"), nil, &out, "")
	return out, err
}

func (c *Client) Debt(ctx context.Context, slot string) (Debt, error) {
	var out Debt
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/debt"), nil, &out, "")
	return out, err
}

func (c *Client) Dues(ctx context.Context, slot string) (game.DueBreakdown, error) {
	var out game.DueBreakdown
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/dues"), nil, &out, "")
	return out, err
}

func (c *Client) Repay(ctx context.Context, slot, instrument, idem string) (game.RepayResult, error) {
	var out game.RepayResult
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/debt/repay"), map[string]any{
		"instrument": instrument,
	}, &out, idem)
	return out, err
}

func (c *Client) OpenCreditLine(ctx context.Context, slot string, lender game.LenderID, idem string) (game.CreditLine, error) {
	var out game.CreditLine
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/debt/lines"), map[string]any{
		"lender": lender,
	}, &out, idem)
	return out, err
}

func (c *Client) DrawCredit(ctx context.Context, slot, lineID string, amountPence int64, idem string) (game.CreditLine, error) {
	var out game.CreditLine
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/debt/lines/"+url.PathEscape(lineID)+"/draw"), map[string]any{
		"amount_pence": amountPence,
	}, &out, idem)
	return out, err
}

func (c *Client) OpenShark(ctx context.Context, slot, idem string) (game.SharkLoan, error) {
	var out game.SharkLoan
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/debt/shark"), nil, &out, idem)
	return out, err
}

func (c *Client) Roster(ctx context.Context, slot string) (game.Roster, error) {
	var out game.Roster
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/staff"), nil, &out, "")
	return out, err
}

func (c *Client) Hire(ctx context.Context, slot string, t game.StaffType, idem string) (game.Staff, error) {
	var out game.Staff
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/staff"), map[string]any{
		"type": t,
	}, &out, idem)
	return out, err
}

func (c *Client) HireManager(ctx context.Context, slot, idem string) (game.Staff, error) {
	var out game.Staff
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/staff/manager"), nil, &out, idem)
	return out, err
}

func (c *Client) Fire(ctx context.Context, slot, staffID, idem string) (game.Staff, error) {
	var out game.Staff
	err := c.jsonRequest(ctx, http.MethodDelete, GamePath(slot, "/staff/"+url.PathEscape(staffID)), nil, &out, idem)
	return out, err
}

func (c *Client) FireAt(ctx context.Context, slot string, pool game.StaffPool, index int, idem string) (game.Staff, error) {
	var out game.Staff
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/staff/fire-at"), map[string]any{
		"pool":  pool,
		"index": index,
	}, &out, idem)
	return out, err
}

func (c *Client) Security(ctx context.Context, slot string) (game.SecurityBreakdown, error) {
	var out game.SecurityBreakdown
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/security"), nil, &out, "")
	return out, err
}

func (c *Client) SetSecurityPolicy(ctx context.Context, slot string, policy game.SecurityPolicy, idem string) (game.SecurityBreakdown, error) {
	var out game.SecurityBreakdown
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/security/policy"), map[string]any{
		"policy": policy,
	}, &out, idem)
	return out, err
}

func (c *Client) UpgradeSecurity(ctx context.Context, slot, idem string) (int, error) {
	var out struct {
		Level int `json:"level"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/security/upgrade"), nil, &out, idem)
	return out.Level, err
}

func (c *Client) HireBouncer(ctx context.Context, slot, idem string) (int64, error) {
	var out struct {
		CostPence int64 `json:"cost_pence"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/security/bouncer"), nil, &out, idem)
	return out.CostPence, err
}

func (c *Client) RunSecurityTask(ctx context.Context, slot string, task game.SecurityTaskID, idem string) error {
	return c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/security/tasks"), map[string]any{
		"task": task,
	}, nil, idem)
}

func (c *Client) Upgrades(ctx context.Context, slot string) ([]Availability, error) {
	var out []Availability
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/upgrades"), nil, &out, "")
	return out, err
}

func (c *Client) BuyUpgrade(ctx context.Context, slot string, id game.UpgradeID, idem string) (game.InstallTicket, error) {
	var out game.InstallTicket
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/upgrades"), map[string]any{
		"upgrade": id,
	}, &out, idem)
	return out, err
}

func (c *Client) Activities(ctx context.Context, slot string) ([]Availability, error) {
	var out []Availability
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/activities"), nil, &out, "")
	return out, err
}

func (c *Client) ScheduleActivity(ctx context.Context, slot string, id game.ActivityID, idem string) (game.ScheduledActivity, error) {
	var out game.ScheduledActivity
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/activities"), map[string]any{
		"activity": id,
	}, &out, idem)
	return out, err
}

func (c *Client) Actions(ctx context.Context, slot string) ([]game.LandlordActionID, error) {
	var out struct {
		Actions []game.LandlordActionID `json:"actions"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, GamePath(slot, "/actions"), nil, &out, "")
	return out.Actions, err
}

func (c *Client) LandlordAction(ctx context.Context, slot string, id game.LandlordActionID, idem string) (game.ActionResult, error) {
	var out game.ActionResult
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/actions"), map[string]any{
		"action": id,
	}, &out, idem)
	return out, err
}

func (c *Client) SetPrice(ctx context.Context, slot string, mult float64, idem string) (float64, error) {
	var out struct {
		Multiplier float64 `json:"multiplier"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/price"), map[string]any{
		"multiplier": mult,
	}, &out, idem)
	return out.Multiplier, err
}

func (c *Client) HappyHour(ctx context.Context, slot string, on bool, idem string) error {
	return c.jsonRequest(ctx, http.MethodPost, GamePath(slot, "/happy-hour"), map[string]any{
		"on": on,
	}, nil, idem)
}

// Do sends a raw request. The offline queue replays through it.
func (c *Client) Do(ctx context.Context, method, path string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	var in any
	if body != nil {
		in = body
	}
	err := c.jsonRequest(ctx, method, path, in, &out, idem)
	return out, err
}

// EventsURL is the websocket address of a slot's event stream.
func (c *Client) EventsURL(slot string) (string, error) {
	u, err := url.Parse(c.BaseURL + GamePath(slot, "/events"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
