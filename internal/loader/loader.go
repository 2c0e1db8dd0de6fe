// Package loader reads the reflow input payload from JSON documents and
// writes the output payload. Input documents are probed with gjson so a
// malformed document reports its exact path before anything is decoded.
package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/reflow/internal/schedule"
)

// ReadFile loads a reflow input payload from a JSON file.
func ReadFile(path string) (*schedule.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	input, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return input, nil
}

// Parse decodes a reflow input payload.
func Parse(data []byte) (*schedule.Input, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("input is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	input := &schedule.Input{}
	var err error

	root.Get("workOrders").ForEach(func(i, doc gjson.Result) bool {
		var wo *schedule.WorkOrder
		wo, err = parseWorkOrder(doc)
		if err != nil {
			err = fmt.Errorf("workOrders[%d]: %w", len(input.WorkOrders), err)
			return false
		}
		input.WorkOrders = append(input.WorkOrders, wo)
		return true
	})
	if err != nil {
		return nil, err
	}

	root.Get("workCenters").ForEach(func(i, doc gjson.Result) bool {
		var wc *schedule.WorkCenter
		wc, err = parseWorkCenter(doc)
		if err != nil {
			err = fmt.Errorf("workCenters[%d]: %w", len(input.WorkCenters), err)
			return false
		}
		input.WorkCenters = append(input.WorkCenters, wc)
		return true
	})
	if err != nil {
		return nil, err
	}

	root.Get("manufacturingOrders").ForEach(func(i, doc gjson.Result) bool {
		var mo *schedule.ManufacturingOrder
		mo, err = parseManufacturingOrder(doc)
		if err != nil {
			err = fmt.Errorf("manufacturingOrders[%d]: %w", len(input.ManufacturingOrders), err)
			return false
		}
		input.ManufacturingOrders = append(input.ManufacturingOrders, mo)
		return true
	})
	if err != nil {
		return nil, err
	}

	return input, nil
}

func parseWorkOrder(doc gjson.Result) (*schedule.WorkOrder, error) {
	id := doc.Get("docId").String()
	if id == "" {
		return nil, fmt.Errorf("missing docId")
	}
	data := doc.Get("data")
	start, err := parseInstant(data.Get("startDate"))
	if err != nil {
		return nil, fmt.Errorf("data.startDate: %w", err)
	}
	end, err := parseInstant(data.Get("endDate"))
	if err != nil {
		return nil, fmt.Errorf("data.endDate: %w", err)
	}
	duration := int(data.Get("durationMinutes").Int())
	if duration < 0 {
		return nil, fmt.Errorf("data.durationMinutes: negative value %d", duration)
	}

	deps := []string{}
	data.Get("dependsOnWorkOrderIds").ForEach(func(_, dep gjson.Result) bool {
		deps = append(deps, dep.String())
		return true
	})

	return &schedule.WorkOrder{
		ID:                   id,
		Number:               data.Get("workOrderNumber").String(),
		ManufacturingOrderID: data.Get("manufacturingOrderId").String(),
		WorkCenterID:         data.Get("workCenterId").String(),
		Start:                start,
		End:                  end,
		DurationMinutes:      duration,
		SetupTimeMinutes:     int(data.Get("setupTimeMinutes").Int()),
		IsMaintenance:        data.Get("isMaintenance").Bool(),
		DependsOn:            deps,
	}, nil
}

func parseWorkCenter(doc gjson.Result) (*schedule.WorkCenter, error) {
	id := doc.Get("docId").String()
	if id == "" {
		return nil, fmt.Errorf("missing docId")
	}
	data := doc.Get("data")

	var shifts []schedule.Shift
	var err error
	data.Get("shifts").ForEach(func(_, s gjson.Result) bool {
		shift := schedule.Shift{
			DayOfWeek: int(s.Get("dayOfWeek").Int()),
			StartHour: int(s.Get("startHour").Int()),
			EndHour:   int(s.Get("endHour").Int()),
		}
		if shift.DayOfWeek < 0 || shift.DayOfWeek > 6 {
			err = fmt.Errorf("shift dayOfWeek %d out of range 0..6", shift.DayOfWeek)
			return false
		}
		if shift.StartHour < 0 || shift.EndHour > 23 || shift.StartHour >= shift.EndHour {
			err = fmt.Errorf("shift hours %d..%d invalid", shift.StartHour, shift.EndHour)
			return false
		}
		shifts = append(shifts, shift)
		return true
	})
	if err != nil {
		return nil, err
	}

	var windows []schedule.MaintenanceWindow
	data.Get("maintenanceWindows").ForEach(func(_, w gjson.Result) bool {
		var start, end time.Time
		start, err = parseInstant(w.Get("start"))
		if err != nil {
			return false
		}
		end, err = parseInstant(w.Get("end"))
		if err != nil {
			return false
		}
		windows = append(windows, schedule.MaintenanceWindow{Start: start, End: end})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("maintenanceWindows: %w", err)
	}

	return &schedule.WorkCenter{
		ID:                 id,
		Name:               data.Get("name").String(),
		Shifts:             shifts,
		MaintenanceWindows: windows,
	}, nil
}

func parseManufacturingOrder(doc gjson.Result) (*schedule.ManufacturingOrder, error) {
	id := doc.Get("docId").String()
	if id == "" {
		return nil, fmt.Errorf("missing docId")
	}
	data := doc.Get("data")
	mo := &schedule.ManufacturingOrder{
		ID:       id,
		Number:   data.Get("manufacturingOrderNumber").String(),
		ItemID:   data.Get("itemId").String(),
		Quantity: int(data.Get("quantity").Int()),
	}
	if due := data.Get("dueDate"); due.Exists() {
		t, err := parseInstant(due)
		if err != nil {
			return nil, fmt.Errorf("data.dueDate: %w", err)
		}
		mo.DueDate = t
	}
	return mo, nil
}

// parseInstant parses an ISO 8601 UTC instant (suffix Z or an explicit
// +00:00 offset) and normalizes it to UTC.
func parseInstant(v gjson.Result) (time.Time, error) {
	if !v.Exists() || v.String() == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", v.String(), err)
	}
	return t.UTC(), nil
}

// outputDocument is the wire envelope for an updated work order.
type outputDocument struct {
	DocID   string              `json:"docId"`
	DocType string              `json:"docType"`
	Data    *schedule.WorkOrder `json:"data"`
}

// outputPayload is the full wire shape of a reflow result.
type outputPayload struct {
	UpdatedWorkOrders []outputDocument  `json:"updatedWorkOrders"`
	Changes           []schedule.Change `json:"changes"`
	Explanation       string            `json:"explanation"`
	Metrics           schedule.Metrics  `json:"metrics"`
}

// WriteResult encodes the reflow result as indented JSON.
func WriteResult(w io.Writer, res *schedule.Result) error {
	payload := outputPayload{
		UpdatedWorkOrders: make([]outputDocument, len(res.UpdatedWorkOrders)),
		Changes:           res.Changes,
		Explanation:       res.Explanation,
		Metrics:           res.Metrics,
	}
	if payload.Changes == nil {
		payload.Changes = []schedule.Change{}
	}
	for i, wo := range res.UpdatedWorkOrders {
		payload.UpdatedWorkOrders[i] = outputDocument{
			DocID:   wo.ID,
			DocType: "workOrder",
			Data:    wo,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
