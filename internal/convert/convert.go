// Package convert implements the line-oriented USD currency converter served
// by the convert mode.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/atomicstack/hn-over-ssh/internal/format/table"
)

const (
	Prompt       = "Enter amount in USD to convert: "
	DefaultRates = "INR=82.97,EUR=0.93,GBP=0.81"

	invalidNumber = "Please enter a valid number."
	amountFormat  = "#,###.##"
)

// Rate is the price of one USD in another currency.
type Rate struct {
	Code string
	Rate float64
}

// ParseRates parses a comma separated list of CODE=RATE pairs, keeping their
// order.
func ParseRates(list string) ([]Rate, error) {
	var rates []Rate
	seen := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, value, ok := strings.Cut(part, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ok || code == "" {
			return nil, fmt.Errorf("rate %q: expected CODE=RATE", part)
		}
		if seen[code] {
			return nil, fmt.Errorf("rate %q: duplicate currency", code)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || rate <= 0 || math.IsInf(rate, 0) {
			return nil, fmt.Errorf("rate %q: invalid value %q", code, value)
		}
		seen[code] = true
		rates = append(rates, Rate{Code: code, Rate: rate})
	}
	if len(rates) == 0 {
		return nil, errors.New("no conversion rates configured")
	}
	return rates, nil
}

// Conversions formats amount in every currency, one aligned line per rate.
func Conversions(amount float64, rates []Rate) []string {
	label := strconv.FormatFloat(amount, 'f', -1, 64) + " USD is"
	rows := make([][]string, len(rates))
	for i, r := range rates {
		rows[i] = []string{label, humanize.FormatFloat(amountFormat, amount*r.Rate), r.Code}
	}
	return table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight, table.AlignLeft})
}

// ParseAmount parses one input line as a finite amount.
func ParseAmount(line string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}

// Serve runs the converter prompt on rw until the user quits, the input ends
// or ctx is cancelled. Quitting and EOF are not errors.
func Serve(ctx context.Context, rw io.ReadWriter, rates []Rate) error {
	t := term.NewTerminal(rw, Prompt)
	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read amount: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		}

		amount, ok := ParseAmount(line)
		if !ok {
			if _, err := fmt.Fprintln(t, invalidNumber); err != nil {
				return fmt.Errorf("write reply: %w", err)
			}
			continue
		}
		out := "Conversions:\n" + strings.Join(Conversions(amount, rates), "\n") + "\n"
		if _, err := io.WriteString(t, out); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
}
