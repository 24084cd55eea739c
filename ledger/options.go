package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// options holds the settings of option directives seen so far.
type options struct {
	tolerance           *ToleranceConfig
	operatingCurrencies []string
	display             *DisplayContext
	allowPipe           bool
	bookingMethod       BookingMethod // empty until set
}

func newOptions() *options {
	return &options{
		tolerance: NewToleranceConfig(),
		display:   NewDisplayContext(),
	}
}

// optionHandler applies the value of one option. A returned message is reported as a
// warning at the option directive.
type optionHandler func(o *options, name, value string) string

var optionHandlers = map[string]optionHandler{
	"tolerance_multiplier":          setMultiplier,
	"inferred_tolerance_multiplier": setMultiplier,
	"inferred_tolerance_default":    setInferredToleranceDefault,
	"infer_tolerance_from_cost":     setInferFromCost,
	"operating_currency":            addOperatingCurrency,
	"tolerance":                     setTolerance,
	"tolerance_map":                 setToleranceMap,
	"render_commas":                 setRenderCommas,
	"display_precision":             setDisplayPrecision,
	"allow_pipe_separator":          setAllowPipe,
	"booking_method":                setBookingMethod,
}

// apply handles one option directive. It returns the diagnostic to report, if any.
func (o *options) apply(args []string) (Level, string) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return LevelWarning, "option directive missing name/value; ignoring"
	}
	name := strings.ToLower(strings.TrimSpace(args[0]))
	value := ""
	if len(args) > 1 {
		value = args[1]
	}

	handler, ok := optionHandlers[name]
	if !ok {
		return LevelInfo, "option: option directive not yet supported -> " + strings.Join(args, " ")
	}
	if msg := handler(o, name, value); msg != "" {
		return LevelWarning, msg
	}
	return "", ""
}

func setMultiplier(o *options, _, value string) string {
	d, ok := parseOptionDecimal(value)
	if !ok {
		return "invalid tolerance_multiplier value: " + value
	}
	o.tolerance.multiplier = d
	return ""
}

func setInferredToleranceDefault(o *options, name, value string) string {
	currency, d, msg := parseCurrencyValue(name, value)
	if msg != "" {
		return msg
	}
	if currency == "*" {
		o.tolerance.defaultOverride = &d
		return ""
	}
	o.tolerance.overrides[currency] = d
	return ""
}

func setInferFromCost(o *options, name, value string) string {
	b, ok := parseOptionBool(value)
	if !ok {
		return fmt.Sprintf("invalid %s value: %s", name, value)
	}
	o.tolerance.inferFromCost = b
	return ""
}

func addOperatingCurrency(o *options, _, value string) string {
	currency := strings.TrimSpace(value)
	if currency == "" {
		return "operating_currency requires a currency code"
	}
	if !slices.Contains(o.operatingCurrencies, currency) {
		o.operatingCurrencies = append(o.operatingCurrencies, currency)
	}
	return ""
}

func setTolerance(o *options, name, value string) string {
	d, ok := parseOptionDecimal(value)
	if !ok {
		return fmt.Sprintf("invalid %s value: %s", name, value)
	}
	d = d.Abs()
	o.tolerance.defaultOverride = &d
	return ""
}

func setToleranceMap(o *options, name, value string) string {
	currency, d, msg := parseCurrencyValue(name, value)
	if msg != "" {
		return msg
	}
	o.tolerance.overrides[currency] = d.Abs()
	return ""
}

func setRenderCommas(o *options, name, value string) string {
	b, ok := parseOptionBool(value)
	if !ok {
		return fmt.Sprintf("invalid %s value: %s", name, value)
	}
	o.display.RenderCommas = b
	return ""
}

func setDisplayPrecision(o *options, name, value string) string {
	currency, d, msg := parseCurrencyValue(name, value)
	if msg != "" {
		return msg
	}
	o.display.SetPrecision(currency, max(0, strippedScale(d)))
	return ""
}

func setAllowPipe(o *options, name, value string) string {
	b, ok := parseOptionBool(value)
	if !ok {
		return fmt.Sprintf("invalid %s value: %s", name, value)
	}
	o.allowPipe = b
	return ""
}

func setBookingMethod(o *options, name, value string) string {
	method, err := ParseBookingMethod(value)
	if err != nil {
		return fmt.Sprintf("invalid %s value: %s", name, value)
	}
	o.bookingMethod = method
	return ""
}

// parseCurrencyValue parses a "CURRENCY:value" option value.
func parseCurrencyValue(name, value string) (string, decimal.Decimal, string) {
	currency, raw, ok := strings.Cut(value, ":")
	if !ok {
		return "", decimal.Zero, fmt.Sprintf("invalid %s format; expected CURRENCY:value", name)
	}
	d, ok := parseOptionDecimal(raw)
	if !ok {
		return "", decimal.Zero, fmt.Sprintf("invalid %s value: %s", name, value)
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return "", decimal.Zero, name + " currency missing"
	}
	return currency, d, ""
}

// parseOptionDecimal accepts decimals written with thousands separators.
func parseOptionDecimal(value string) (decimal.Decimal, bool) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseOptionBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	}
	return false, false
}
