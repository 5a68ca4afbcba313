package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type PlanRequest struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Budget      float64 `json:"budget"`
}

type PlanResponse struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Budget      float64   `json:"budget"`
	Days        []DayPlan `json:"days"`
}

type DayPlan struct {
	Day        int                     `json:"day"`
	Activities TextOrList              `json:"activities"`
	Expenses   map[string]NumberOrText `json:"expenses"`
}

type planPayload struct {
	Source      *string       `json:"source"`
	Destination *string       `json:"destination"`
	Budget      *NumberOrText `json:"budget"`
	Days        *[]DayPlan    `json:"days"`
}

// UnmarshalJSON требует все поля верхнего уровня и числовой бюджет.
func (p *PlanResponse) UnmarshalJSON(data []byte) error {
	var payload planPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	missing := make([]string, 0, 4)
	if payload.Source == nil {
		missing = append(missing, "source")
	}
	if payload.Destination == nil {
		missing = append(missing, "destination")
	}
	if payload.Budget == nil {
		missing = append(missing, "budget")
	}
	if payload.Days == nil {
		missing = append(missing, "days")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	budget, ok := payload.Budget.Float()
	if !ok {
		return fmt.Errorf("budget is not numeric: %q", payload.Budget.Text)
	}

	*p = PlanResponse{
		Source:      *payload.Source,
		Destination: *payload.Destination,
		Budget:      budget,
		Days:        *payload.Days,
	}
	return nil
}

type dayPayload struct {
	Day        *int                    `json:"day"`
	Activities TextOrList              `json:"activities"`
	Expenses   map[string]NumberOrText `json:"expenses"`
}

func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var payload dayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	if payload.Day == nil {
		return errors.New("day number is required")
	}
	if *payload.Day <= 0 {
		return fmt.Errorf("day number must be positive, got %d", *payload.Day)
	}

	expenses := payload.Expenses
	if expenses == nil {
		expenses = map[string]NumberOrText{}
	}

	*d = DayPlan{
		Day:        *payload.Day,
		Activities: payload.Activities,
		Expenses:   expenses,
	}
	return nil
}

// Total суммирует числовые расходы дня; текстовые значения не учитываются.
func (d DayPlan) Total() float64 {
	var total float64
	for _, amount := range d.Expenses {
		if value, ok := amount.Float(); ok {
			total += value
		}
	}
	return total
}

// TotalExpenses суммирует расходы по всем дням.
func (p PlanResponse) TotalExpenses() float64 {
	var total float64
	for _, day := range p.Days {
		total += day.Total()
	}
	return total
}

// TextOrList holds activities given either as one string or as a list of strings.
type TextOrList struct {
	Text  string
	Items []string
	list  bool
}

// NewText builds a single-string value.
func NewText(value string) TextOrList {
	return TextOrList{Text: value}
}

// NewList builds a list value.
func NewList(items ...string) TextOrList {
	return TextOrList{Items: items, list: true}
}

// IsList reports whether the model sent a list.
func (t TextOrList) IsList() bool {
	return t.list
}

// String joins list items with "; ".
func (t TextOrList) String() string {
	if t.list {
		return strings.Join(t.Items, "; ")
	}
	return t.Text
}

func (t *TextOrList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = TextOrList{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("activities must be a list of strings: %w", err)
		}
		*t = NewList(items...)
		return nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return fmt.Errorf("activities must be a string or a list of strings: %w", err)
	}
	*t = NewText(text)
	return nil
}

func (t TextOrList) MarshalJSON() ([]byte, error) {
	if t.list {
		items := t.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(t.Text)
}

// NumberOrText holds an expense amount sent either as a number or as text.
// Numeric-looking text is coerced to a number at decode time.
type NumberOrText struct {
	Number float64
	Text   string
	number bool
}

// NewNumber builds a numeric value.
func NewNumber(value float64) NumberOrText {
	return NumberOrText{Number: value, number: true}
}

// Float returns the numeric value and whether there is one.
func (n NumberOrText) Float() (float64, bool) {
	return n.Number, n.number
}

func (n *NumberOrText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty amount")
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		if value, ok := parseAmount(text); ok {
			*n = NewNumber(value)
			return nil
		}
		*n = NumberOrText{Text: text}
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var value float64
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*n = NewNumber(value)
		return nil
	default:
		return fmt.Errorf("amount must be a number or a string, got %s", trimmed)
	}
}

func (n NumberOrText) MarshalJSON() ([]byte, error) {
	if n.number {
		return json.Marshal(n.Number)
	}
	return json.Marshal(n.Text)
}

// parseAmount принимает строки вида "500", " 1,200.50 ".
func parseAmount(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
