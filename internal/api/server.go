package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"landlord/internal/config"
	"landlord/internal/db"
	"landlord/internal/game"
	"landlord/internal/syncq"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type Server struct {
	cfg      config.APIConfig
	log      *slog.Logger
	sessions *Sessions
	hub      *Hub
	checks   map[string]Checker
	mux      *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, sessions *Sessions, hub *Hub, checks map[string]Checker) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		sessions: sessions,
		hub:      hub,
		checks:   checks,
		mux:      chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/games/{slot}/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/catalog", s.handleCatalog)
			r.Get("/games", s.handleListGames)
			r.Post("/games", s.handleCreateGame)

			r.Get("/games/{slot}", s.handleState)
			r.Get("/games/{slot}/metrics", s.handleMetrics)
			r.Get("/games/{slot}/save", s.handleSave)
			r.Get("/games/{slot}/reports", s.handleReports)
			r.Get("/games/{slot}/milestones", s.handleMilestones)
			r.Get("/games/{slot}/district", s.handleDistrict)

			r.Post("/games/{slot}/night/open", s.handleOpenNight)
			r.Post("/games/{slot}/night/round", s.handlePlayRound)
			r.Post("/games/{slot}/night/close", s.handleCloseNight)

			r.Get("/games/{slot}/stock", s.handleStock)
			r.Post("/games/{slot}/stock", s.handleBuy)
			r.Get("/games/{slot}/stock/cost", s.handlePeekCost)
			r.Get("/games/{slot}/stock/forecast", s.handleForecast)

			r.Get("/games/{slot}/debt", s.handleDebt)
			r.Get("/games/{slot}/dues", s.handleDues)
			r.Post("/games/{slot}/debt/repay", s.handleRepay)
			r.Post("/games/{slot}/debt/lines", s.handleOpenCreditLine)
			r.Post("/games/{slot}/debt/lines/{id}/draw", s.handleDrawCredit)
			r.Post("/games/{slot}/debt/shark", s.handleOpenShark)

			r.Get("/games/{slot}/staff", s.handleRoster)
			r.Post("/games/{slot}/staff", s.handleHire)
			r.Post("/games/{slot}/staff/manager", s.handleHireManager)
			r.Post("/games/{slot}/staff/fire-at", s.handleFireAt)
			r.Delete("/games/{slot}/staff/{id}", s.handleFire)

			r.Get("/games/{slot}/security", s.handleSecurity)
			r.Post("/games/{slot}/security/policy", s.handleSecurityPolicy)
			r.Post("/games/{slot}/security/upgrade", s.handleSecurityUpgrade)
			r.Post("/games/{slot}/security/bouncer", s.handleBouncer)
			r.Post("/games/{slot}/security/tasks", s.handleSecurityTask)

			r.Get("/games/{slot}/upgrades", s.handleUpgrades)
			r.Post("/games/{slot}/upgrades", s.handleBuyUpgrade)
			r.Get("/games/{slot}/activities", s.handleActivities)
			r.Post("/games/{slot}/activities", s.handleScheduleActivity)

			r.Get("/games/{slot}/actions", s.handleActions)
			r.Post("/games/{slot}/actions", s.handleLandlordAction)
			r.Post("/games/{slot}/price", s.handlePrice)
			r.Post("/games/{slot}/happy-hour", s.handleHappyHour)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{}
	for name, c := range s.checks {
		checks[name] = "ok"
		if err := c.Check(ctx); err != nil {
			s.log.Error("health check failed", "name", name, "err", err)
			checks[name] = "error"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": checks})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	tier, _ := strconv.Atoi(r.URL.Query().Get("tier"))
	if tier <= 0 {
		tier = 5
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": map[game.Pool][]game.ItemID{
			game.PoolBeverage: game.Items(game.PoolBeverage),
			game.PoolFood:     game.Items(game.PoolFood),
		},
		"upgrades":   game.Upgrades(),
		"activities": game.Activities(),
		"lenders":    game.Lenders(),
		"actions":    game.LandlordActions(tier),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.sessions.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Slot string `json:"slot"`
		Seed uint64 `json:"seed"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := s.sessions.Create(r.Context(), strings.ToLower(strings.TrimSpace(in.Slot)), in.Seed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	st, err := Query(r.Context(), sess, func(e *game.Engine) (game.State, error) {
		return e.State(), nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"slot": sess.Slot, "state": st})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.hub.ServeWs(sess.Slot, w, r)
}

// session resolves {slot} and writes the error response when it cannot.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "slot"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return sess, true
}

// command runs fn as a journalled command and writes its reply.
func (s *Server) command(w http.ResponseWriter, r *http.Request, name string, fn func(*game.Engine) (any, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	reply, err := sess.Exec(r.Context(), name, idempotencyKey(r), fn)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reply.Replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	writeRaw(w, http.StatusOK, reply.Body)
}

func query[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(*game.Engine) (T, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := Query(r.Context(), sess, fn)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.State, error) { return e.State(), nil })
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.Metrics, error) { return e.Metrics(), nil })
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.Save, error) { return e.Save() })
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.Reports, error) { return e.Reports(), nil })
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (map[string]any, error) {
		return map[string]any{"pub_level": e.PubLevel(), "milestones": e.Milestones()}, nil
	})
}

func (s *Server) handleDistrict(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.DistrictView, error) { return e.District(), nil })
}

func (s *Server) handleOpenNight(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "open_night", func(e *game.Engine) (any, error) { return e.OpenNight() })
}

func (s *Server) handlePlayRound(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "play_round", func(e *game.Engine) (any, error) { return e.PlayRound() })
}

func (s *Server) handleCloseNight(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason game.CloseReason `json:"reason"`
	}
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Reason == "" {
		in.Reason = game.CloseLastOrders
	}
	if in.Reason != game.CloseLastOrders && in.Reason != game.CloseEarly {
		writeError(w, http.StatusBadRequest, "reason must be last_orders or early")
		return
	}
	s.command(w, r, "close_night", func(e *game.Engine) (any, error) { return e.CloseNight(in.Reason) })
}

type stockView struct {
	Beverages        game.Rack         `json:"beverages"`
	Foods            game.Rack         `json:"foods"`
	BeverageCapacity int               `json:"beverage_capacity"`
	FoodCapacity     int               `json:"food_capacity"`
	Deliveries       []game.Delivery   `json:"deliveries"`
	Deal             game.SupplierDeal `json:"deal"`
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (stockView, error) {
		st := e.State()
		return stockView{
			Beverages:        st.Beverages,
			Foods:            st.Foods,
			BeverageCapacity: e.RackCapacity(game.PoolBeverage),
			FoodCapacity:     e.RackCapacity(game.PoolFood),
			Deliveries:       st.Deliveries,
			Deal:             st.Deal,
		}, nil
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Item game.ItemID `json:"item"`
		Qty  int         `json:"qty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "buy", func(e *game.Engine) (any, error) { return e.Buy(in.Item, in.Qty) })
}

func (s *Server) handlePeekCost(w http.ResponseWriter, r *http.Request) {
	item := game.ItemID(strings.TrimSpace(r.URL.Query().Get("item")))
	qty, err := strconv.Atoi(r.URL.Query().Get("qty"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "qty must be an integer")
		return
	}
	query(s, w, r, func(e *game.Engine) (map[string]any, error) {
		cost, err := e.PeekCost(item, qty)
		if err != nil {
			return nil, err
		}
		return map[string]any{"item": item, "qty": qty, "cost_pence": cost}, nil
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) ([]game.ForecastEntry, error) {
		out := slices.Collect(e.SpoilageForecast())
		if out == nil {
			out = []game.ForecastEntry{}
		}
		return out, nil
	})
}

type debtView struct {
	CreditLines   []game.CreditLine `json:"credit_lines"`
	Shark         *game.SharkLoan   `json:"shark,omitempty"`
	TradeBeverage game.TradeCredit  `json:"trade_beverage"`
	TradeFood     game.TradeCredit  `json:"trade_food"`
	CreditScore   int               `json:"credit_score"`
	TotalPence    int64             `json:"total_pence"`
}

func (s *Server) handleDebt(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (debtView, error) {
		st := e.State()
		return debtView{
			CreditLines:   e.CreditLines(),
			Shark:         st.Shark,
			TradeBeverage: st.TradeBeverage,
			TradeFood:     st.TradeFood,
			CreditScore:   st.CreditScore,
			TotalPence:    st.TotalDebtPence(),
		}, nil
	})
}

func (s *Server) handleDues(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.DueBreakdown, error) { return e.WeeklyDues(), nil })
}

func (s *Server) handleRepay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Instrument string `json:"instrument"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "repay", func(e *game.Engine) (any, error) { return e.Repay(strings.TrimSpace(in.Instrument)) })
}

func (s *Server) handleOpenCreditLine(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Lender game.LenderID `json:"lender"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "open_credit_line", func(e *game.Engine) (any, error) { return e.OpenCreditLine(in.Lender) })
}

func (s *Server) handleDrawCredit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AmountPence int64 `json:"amount_pence"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	s.command(w, r, "draw_credit", func(e *game.Engine) (any, error) { return e.DrawCredit(id, in.AmountPence) })
}

func (s *Server) handleOpenShark(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "open_shark", func(e *game.Engine) (any, error) { return e.OpenSharkLine() })
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.Roster, error) { return e.Roster(), nil })
}

func (s *Server) handleHire(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type game.StaffType `json:"type"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "hire", func(e *game.Engine) (any, error) { return e.Hire(in.Type) })
}

func (s *Server) handleHireManager(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "hire_manager", func(e *game.Engine) (any, error) { return e.HireManager() })
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.command(w, r, "fire", func(e *game.Engine) (any, error) { return e.Fire(id) })
}

func (s *Server) handleFireAt(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Pool  game.StaffPool `json:"pool"`
		Index int            `json:"index"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "fire_at", func(e *game.Engine) (any, error) { return e.FireAt(in.Pool, in.Index) })
}

func (s *Server) handleSecurity(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (game.SecurityBreakdown, error) { return e.SecurityBreakdown(), nil })
}

func (s *Server) handleSecurityPolicy(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Policy game.SecurityPolicy `json:"policy"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "security_policy", func(e *game.Engine) (any, error) {
		if err := e.SetSecurityPolicy(in.Policy); err != nil {
			return nil, err
		}
		return e.SecurityBreakdown(), nil
	})
}

func (s *Server) handleSecurityUpgrade(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "security_upgrade", func(e *game.Engine) (any, error) {
		level, err := e.UpgradeSecurity()
		if err != nil {
			return nil, err
		}
		return map[string]any{"level": level}, nil
	})
}

func (s *Server) handleBouncer(w http.ResponseWriter, r *http.Request) {
	s.command(w, r, "hire_bouncer", func(e *game.Engine) (any, error) {
		cost, err := e.HireBouncer()
		if err != nil {
			return nil, err
		}
		return map[string]any{"cost_pence": cost, "bouncers": e.SecurityBreakdown().Bouncers}, nil
	})
}

func (s *Server) handleSecurityTask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Task game.SecurityTaskID `json:"task"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "security_task", func(e *game.Engine) (any, error) {
		if err := e.RunSecurityTask(in.Task); err != nil {
			return nil, err
		}
		return map[string]any{"active_task": in.Task}, nil
	})
}

type availabilityView struct {
	ID        string   `json:"id"`
	Available bool     `json:"available"`
	Reasons   []string `json:"reasons,omitempty"`
	Owned     bool     `json:"owned,omitempty"`
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) ([]availabilityView, error) {
		owned := e.OwnedUpgrades()
		out := make([]availabilityView, 0, len(game.Upgrades()))
		for _, id := range game.Upgrades() {
			a, err := e.UpgradeAvailability(id)
			if err != nil {
				return nil, err
			}
			out = append(out, availabilityView{ID: string(id), Available: a.Available, Reasons: a.Reasons, Owned: slices.Contains(owned, id)})
		}
		return out, nil
	})
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Upgrade game.UpgradeID `json:"upgrade"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "buy_upgrade", func(e *game.Engine) (any, error) { return e.BuyUpgrade(in.Upgrade) })
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) ([]availabilityView, error) {
		out := make([]availabilityView, 0, len(game.Activities()))
		for _, id := range game.Activities() {
			a, err := e.ActivityAvailability(id)
			if err != nil {
				return nil, err
			}
			out = append(out, availabilityView{ID: string(id), Available: a.Available, Reasons: a.Reasons})
		}
		return out, nil
	})
}

func (s *Server) handleScheduleActivity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Activity game.ActivityID `json:"activity"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "schedule_activity", func(e *game.Engine) (any, error) { return e.ScheduleActivity(in.Activity) })
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	query(s, w, r, func(e *game.Engine) (map[string]any, error) {
		level := e.PubLevel()
		return map[string]any{"pub_level": level, "actions": game.LandlordActions(level)}, nil
	})
}

func (s *Server) handleLandlordAction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action game.LandlordActionID `json:"action"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "landlord_action", func(e *game.Engine) (any, error) {
		res, err := e.ResolveLandlordAction(in.Action)
		if err != nil && res.Status == game.ActionBlocked {
			return nil, &actionBlockedError{result: res, err: err}
		}
		return res, err
	})
}

// actionBlockedError carries a blocked action's result to the error writer.
type actionBlockedError struct {
	result game.ActionResult
	err    error
}

func (e *actionBlockedError) Error() string { return e.err.Error() }
func (e *actionBlockedError) Unwrap() error { return e.err }

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Multiplier float64 `json:"multiplier"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "set_price", func(e *game.Engine) (any, error) {
		mult, err := e.SetPriceMultiplier(in.Multiplier)
		if err != nil {
			return nil, err
		}
		return map[string]any{"multiplier": mult}, nil
	})
}

func (s *Server) handleHappyHour(w http.ResponseWriter, r *http.Request) {
	var in struct {
		On bool `json:"on"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.command(w, r, "happy_hour", func(e *game.Engine) (any, error) {
		if err := e.ToggleHappyHour(in.On); err != nil {
			return nil, err
		}
		return map[string]any{"happy_hour": in.On}, nil
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var blocked *actionBlockedError
	switch {
	case errors.As(err, &blocked):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": strings.TrimSpace(err.Error()), "result": blocked.result})
	case errors.Is(err, ErrBadSlot):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, db.ErrGameNotFound), errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotExists), errors.Is(err, db.ErrDuplicateIdempotency), errors.Is(err, db.ErrTxConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrPreconditionUnmet):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrSlotsFull), errors.Is(err, syncq.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be empty.
func decodeOptionalJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}
	if err := decodeJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
