package engine

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// CircuitBreakerConfig forces the book flat after a deep drawdown.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Liquidate when drawdown from the equity high-water mark reaches the threshold"`
	// Fractional drawdown from the high-water mark.
	DrawdownThreshold float64 `yaml:"drawdown_threshold" json:"drawdown_threshold" jsonschema:"title=Drawdown Threshold,minimum=0,maximum=1" validate:"gt=0,lte=1"`
	// Bars during which new entries are refused after a trigger.
	CooldownBars int `yaml:"cooldown_bars" json:"cooldown_bars" jsonschema:"title=Cooldown Bars,minimum=0" validate:"gte=0"`
	// Accepted for compatibility with older files. Liquidation is always full.
	PositionAfter float64 `yaml:"position_after" json:"position_after" jsonschema:"title=Position After,description=Unused: the breaker always goes flat,minimum=0,maximum=1" validate:"gte=0,lte=1"`
}

// Config is the backtest block of the configuration file.
type Config struct {
	// Per-side fractional commission. A round trip costs twice this.
	Commission          float64              `yaml:"commission" json:"commission" jsonschema:"title=Commission,minimum=0" validate:"gte=0,lt=1"`
	UseIntrabarStopTake bool                 `yaml:"use_intrabar_stop_take" json:"use_intrabar_stop_take" jsonschema:"title=Intrabar Stop/Take,description=Close at the stored stop or take level when the bar range touches it"`
	UseTrendBreakExit   bool                 `yaml:"use_trend_break_exit" json:"use_trend_break_exit" jsonschema:"title=Trend Break Exit,description=Close longs below MA50 and shorts above it"`
	NextDayExecution    bool                 `yaml:"next_day_execution" json:"next_day_execution" jsonschema:"title=Next Day Execution,description=Apply each signal to the following bar's return"`
	CircuitBreaker      CircuitBreakerConfig `yaml:"circuit_breaker" json:"circuit_breaker"`
	// Annual rate used for flat accrual and as the Sharpe hurdle.
	RiskFreeRate           float64 `yaml:"risk_free_rate" json:"risk_free_rate" jsonschema:"title=Risk Free Rate,minimum=0" validate:"gte=0,lt=1"`
	AccrueRiskFreeWhenFlat bool    `yaml:"accrue_risk_free_when_flat" json:"accrue_risk_free_when_flat" jsonschema:"title=Accrue Risk Free When Flat"`
}

// DefaultConfig returns the configuration used when the file omits the block.
func DefaultConfig() Config {
	return Config{
		Commission:          0.0005,
		UseIntrabarStopTake: true,
		UseTrendBreakExit:   false,
		NextDayExecution:    false,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:           false,
			DrawdownThreshold: 0.10,
			CooldownBars:      2,
			PositionAfter:     0.30,
		},
		RiskFreeRate:           0.0,
		AccrueRiskFreeWhenFlat: true,
	}
}

// Validate checks the field ranges.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func (c Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&c)
	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for the backtest block"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates an indented JSON schema string for Config.
func (c Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
