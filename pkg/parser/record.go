package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yurifrl/ynabsync/pkg/models"
)

// recordFromRow maps a decoded ledger row onto an InputRecord. Keys other than
// id, date, amount and title are passed through in Extra.
func recordFromRow(row map[string]any) (models.InputRecord, error) {
	var rec models.InputRecord
	for key, value := range row {
		if strings.EqualFold(key, "id") {
			rec.ID = scalar(value)
		}
	}
	if rec.ID == "" {
		return rec, &models.ParseError{Field: "id", Value: "", Err: fmt.Errorf("id is required")}
	}

	for key, value := range row {
		switch strings.ToLower(key) {
		case "id":
		case "date":
			date, err := dateField(value)
			if err != nil {
				return rec, &models.ParseError{RecordID: rec.ID, Field: "date", Value: scalar(value), Err: err}
			}
			rec.Date = date
		case "amount":
			s, ok := value.(string)
			if !ok {
				return rec, &models.ParseError{RecordID: rec.ID, Field: "amount", Value: scalar(value), Err: fmt.Errorf("amount must be a string, got %T", value)}
			}
			rec.Amount = s
		case "title":
			rec.Title = scalar(value)
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[key] = value
		}
	}

	if rec.Date.Date == "" {
		return rec, &models.ParseError{RecordID: rec.ID, Field: "date", Value: "", Err: fmt.Errorf("date is required")}
	}
	return rec, nil
}

// dateField accepts the exported {"date": "..."} object or a bare string.
func dateField(value any) (models.DateField, error) {
	switch v := value.(type) {
	case string:
		return models.DateField{Date: v}, nil
	case time.Time:
		return models.DateField{Date: v.Format(models.DateLayout)}, nil
	case map[string]any:
		var d models.DateField
		inner, ok := v["date"]
		if !ok {
			return d, fmt.Errorf("date object has no date field")
		}
		d.Date = scalar(inner)
		if t, ok := inner.(time.Time); ok {
			d.Date = t.Format(models.DateLayout)
		}
		d.Timezone = scalar(v["timezone"])
		if n, err := strconv.Atoi(scalar(v["timezone_type"])); err == nil {
			d.TimezoneType = n
		}
		return d, nil
	}
	return models.DateField{}, fmt.Errorf("unsupported date value %T", value)
}

func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(value)
}
