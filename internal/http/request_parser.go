// Request body and query parsing for the JSON API. Amounts arrive from
// clients as either JSON numbers or strings; both are tolerated and
// unparseable values collapse to zero rather than failing the request.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

const maxBodySize = 1 << 20 // 1 MiB

// transactionRequest is the wire shape of a transaction write.
type transactionRequest struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      any    `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:        core.TransactionType(req.Type),
		Category:    strings.TrimSpace(req.Category),
		Amount:      core.CoerceAmount(req.Amount),
		Date:        date,
		Description: strings.TrimSpace(req.Description),
	}, nil
}

// budgetRequest carries a wholesale categories replacement.
type budgetRequest struct {
	Categories map[string]any `json:"categories"`
}

func (req budgetRequest) toBudget(userID, yearMonth string) core.Budget {
	categories := make(map[string]decimal.Decimal, len(req.Categories))
	for name, raw := range req.Categories {
		categories[name] = core.CoerceAmount(raw)
	}
	return core.Budget{
		UserID:     userID,
		YearMonth:  yearMonth,
		Categories: categories,
	}
}

type goalRequest struct {
	Name          string `json:"name"`
	TargetAmount  any    `json:"targetAmount"`
	CurrentAmount any    `json:"currentAmount"`
	Deadline      string `json:"deadline"`
	Priority      string `json:"priority"`
	Notes         string `json:"notes"`
}

func (req goalRequest) toGoal() (core.Goal, error) {
	deadline, err := core.ParseDate(req.Deadline)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		Name:          strings.TrimSpace(req.Name),
		TargetAmount:  core.CoerceAmount(req.TargetAmount),
		CurrentAmount: core.CoerceAmount(req.CurrentAmount),
		Deadline:      deadline,
		Priority:      core.GoalPriority(req.Priority),
		Notes:         strings.TrimSpace(req.Notes),
	}, nil
}

type amountRequest struct {
	Amount any `json:"amount"`
}

// decodeBody reads and unmarshals a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// parseFilter builds a transaction filter from query parameters. Dates are
// inclusive ISO "YYYY-MM-DD" bounds; malformed dates are ignored rather
// than failing the listing.
func parseFilter(query url.Values) core.Filter {
	f := core.Filter{
		Type:     core.TransactionType(strings.TrimSpace(query.Get("type"))),
		Category: strings.TrimSpace(query.Get("category")),
	}
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.Start = d
		}
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.End = d
		}
	}
	return f
}
