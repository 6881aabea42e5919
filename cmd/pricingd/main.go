// Command pricingd serves swap valuations over HTTP. POST /v1/price takes a
// trade with its curve pillars and returns PV, per-node PV01 and the ordered
// cash-flow table; every pricing run is tagged with a uuid for log correlation.
package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/meenmo/pricingengine/calendar"
	"github.com/meenmo/pricingengine/cashflow"
	"github.com/meenmo/pricingengine/curve"
	"github.com/meenmo/pricingengine/instrument"
	"github.com/meenmo/pricingengine/risk"
	"github.com/meenmo/pricingengine/utils"
)

type nodeJSON struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type priceRequest struct {
	ValuationDate   string     `json:"valuation_date"`
	Currency        string     `json:"currency"`
	Notional        float64    `json:"notional"`
	FixedRate       float64    `json:"fixed_rate"`
	Spread          float64    `json:"spread"`
	Years           int        `json:"years"`
	FixedFreqMonths int        `json:"fixed_freq_months"`
	FloatFreqMonths int        `json:"float_freq_months"`
	FixedSide       string     `json:"fixed_side"`
	DiscountNodes   []nodeJSON `json:"discount_nodes"`
	ForecastNodes   []nodeJSON `json:"forecast_nodes"`
}

type cashflowJSON struct {
	LegID    int     `json:"leg_id"`
	PayDate  string  `json:"pay_date"`
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
	DF       float64 `json:"df"`
	Amount   string  `json:"amount"`
	PV       string  `json:"pv"`
}

type priceResponse struct {
	RunID        string         `json:"run_id"`
	PV           float64        `json:"pv"`
	ParallelDV01 float64        `json:"parallel_dv01"`
	NodePV01s    []float64      `json:"node_pv01s"`
	Cashflows    []cashflowJSON `json:"cashflows"`
}

type errorResponse struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

type pricingHandler struct {
	log zerolog.Logger
}

func (h *pricingHandler) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/v1")
	v1.POST("/price", h.price)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (h *pricingHandler) price(c echo.Context) error {
	runID := uuid.NewString()
	log := h.log.With().Str("run_id", runID).Logger()

	var req priceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn().Err(err).Msg("bad request body")
		return c.JSON(http.StatusBadRequest, errorResponse{RunID: runID, Error: "invalid request body"})
	}

	started := time.Now()
	resp, err := h.priceSwap(runID, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, curve.ErrValidation) || errors.Is(err, instrument.ErrConfig) ||
			errors.Is(err, cashflow.ErrSchedule) || errors.Is(err, curve.ErrCurveDomain) {
			status = http.StatusBadRequest
		}
		log.Warn().Err(err).Int("status", status).Msg("pricing failed")
		return c.JSON(status, errorResponse{RunID: runID, Error: err.Error()})
	}

	log.Info().
		Float64("pv", resp.PV).
		Float64("parallel_dv01", resp.ParallelDV01).
		Dur("elapsed", time.Since(started)).
		Msg("priced")
	return c.JSON(http.StatusOK, resp)
}

func (h *pricingHandler) priceSwap(runID string, req priceRequest) (*priceResponse, error) {
	valuation, err := utils.ParseDate(req.ValuationDate)
	if err != nil {
		return nil, err
	}
	if req.Years <= 0 {
		req.Years = 5
	}
	if req.FixedFreqMonths <= 0 {
		req.FixedFreqMonths = 12
	}
	if req.FloatFreqMonths <= 0 {
		req.FloatFreqMonths = 6
	}
	maturity := valuation.AddDate(req.Years, 0, 0)

	discNodes, err := toNodes(req.DiscountNodes, valuation)
	if err != nil {
		return nil, err
	}
	disc, err := curve.NewDiscountCurve(discNodes)
	if err != nil {
		return nil, err
	}

	var fcst curve.TermStructure
	if len(req.ForecastNodes) > 0 {
		fcstNodes, err := toNodes(req.ForecastNodes, valuation)
		if err != nil {
			return nil, err
		}
		fcst, err = curve.NewForecastCurve(fcstNodes)
		if err != nil {
			return nil, err
		}
	}

	fixedSide := instrument.Pay
	floatSide := instrument.Receive
	if req.FixedSide == "REC" {
		fixedSide, floatSide = instrument.Receive, instrument.Pay
	}

	swap := &instrument.InterestRateSwap{
		Legs: []instrument.SwapLeg{
			{
				Side: fixedSide,
				Leg: cashflow.FixedLeg{
					Schedule: cashflow.Schedule{
						Start:           valuation,
						End:             maturity,
						FrequencyMonths: req.FixedFreqMonths,
						Calendar:        calendar.WEEKEND,
						DayCount:        utils.Act365F,
					},
					Notional: req.Notional,
					Ccy:      req.Currency,
					Rate:     req.FixedRate,
				},
			},
			{
				Side: floatSide,
				Leg: cashflow.FloatingLeg{
					Schedule: cashflow.Schedule{
						Start:           valuation,
						End:             maturity,
						FrequencyMonths: req.FloatFreqMonths,
						Calendar:        calendar.WEEKEND,
						DayCount:        utils.Act365F,
					},
					Notional: req.Notional,
					Ccy:      req.Currency,
					Spread:   req.Spread,
				},
				Forecast: fcst,
			},
		},
		Discount: disc,
		Ccy:      req.Currency,
	}

	pv, err := swap.PV(valuation)
	if err != nil {
		return nil, err
	}

	engine := risk.NewEngine(risk.DefaultConfig)
	dv01, err := engine.ParallelDV01(discNodes, risk.DiscountReprice(swap, valuation))
	if err != nil {
		return nil, err
	}
	pv01s, err := engine.NodePV01s(discNodes, risk.DiscountReprice(swap, valuation))
	if err != nil {
		return nil, err
	}

	table, err := swap.CashflowTable(valuation)
	if err != nil {
		return nil, err
	}
	rows := make([]cashflowJSON, 0, len(table))
	for _, row := range table {
		rows = append(rows, cashflowJSON{
			LegID:    row.LegID,
			PayDate:  row.PayDate.Format("2006-01-02"),
			Currency: row.Currency,
			Rate:     row.Rate,
			DF:       row.DF,
			Amount:   row.Amount.StringFixed(2),
			PV:       row.PV.StringFixed(2),
		})
	}

	return &priceResponse{
		RunID:        runID,
		PV:           pv,
		ParallelDV01: dv01,
		NodePV01s:    pv01s,
		Cashflows:    rows,
	}, nil
}

func toNodes(in []nodeJSON, asOf time.Time) (*curve.CurveNodes, error) {
	// Clients are not required to sort their pillars.
	byDate := make(map[time.Time]float64, len(in))
	dates := make([]time.Time, 0, len(in))
	for _, n := range in {
		d, err := utils.ParseDate(n.Date)
		if err != nil {
			return nil, err
		}
		byDate[d] = n.Rate
		dates = append(dates, d)
	}
	utils.SortDates(dates)
	rates := make([]float64, len(dates))
	for i, d := range dates {
		rates[i] = byDate[d]
	}
	return curve.FromPairs(asOf, dates, rates)
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "pricingd").Logger()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	h := &pricingHandler{log: log}
	h.RegisterRoutes(e)

	log.Info().Str("addr", *addr).Msg("listening")
	if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
