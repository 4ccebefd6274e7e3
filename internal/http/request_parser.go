// This file implements utilities for parsing and validating HTTP request data:
// JSON or form bodies, transaction and budget fields, and period queries.

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
	"github.com/usere2211-alt/finance-dashboard/internal/services"
)

// maxBodyBytes caps form and JSON bodies.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// fieldError names the input that failed validation.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string { return e.field + ": " + e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }

// ParseTransaction reads a transaction of kind from the body. The label is
// read from the kind's column name ("description" or "source") or "label".
// An empty date means today.
func ParseTransaction(p *RequestBodyParser, kind core.Kind) (core.Transaction, error) {
	if err := p.Parse(); err != nil {
		return core.Transaction{}, fmt.Errorf("parse body: %w", err)
	}

	date := core.Today()
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Transaction{}, &fieldError{field: "date", err: err}
		}
		date = d
	}

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, &fieldError{field: "amount", err: err}
	}

	label := p.Get(kind.LabelField())
	if label == "" {
		label = p.Get("label")
	}

	tx := core.Transaction{
		Kind:     kind,
		Date:     date,
		Amount:   core.Money{Cents: cents},
		Label:    label,
		Category: p.Get("category"),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// ParseBudget reads a category and a non-negative limit from the body.
func ParseBudget(p *RequestBodyParser) (core.BudgetLimit, error) {
	if err := p.Parse(); err != nil {
		return core.BudgetLimit{}, fmt.Errorf("parse body: %w", err)
	}
	cents, err := core.ParseLimitToCents(p.Get("limit"))
	if err != nil {
		return core.BudgetLimit{}, &fieldError{field: "limit", err: err}
	}
	b := core.BudgetLimit{Category: p.Get("category"), Limit: core.Money{Cents: cents}}
	if err := b.Validate(); err != nil {
		return core.BudgetLimit{}, err
	}
	return b, nil
}

// ParsePeriodParams reads optional start/end dates from the query string.
func ParsePeriodParams(query url.Values) (services.Period, error) {
	return services.ParsePeriod(strings.TrimSpace(query.Get("start")), strings.TrimSpace(query.Get("end")))
}
