package loader

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/reflow/internal/schedule"
)

const samplePayload = `{
  "workOrders": [
    {
      "docId": "wo-1",
      "docType": "workOrder",
      "data": {
        "workOrderNumber": "WO-0001",
        "manufacturingOrderId": "mo-1",
        "workCenterId": "wc-1",
        "startDate": "2026-02-10T08:00:00Z",
        "endDate": "2026-02-10T12:00:00Z",
        "durationMinutes": 240,
        "isMaintenance": false,
        "dependsOnWorkOrderIds": []
      }
    },
    {
      "docId": "wo-2",
      "docType": "workOrder",
      "data": {
        "workOrderNumber": "WO-0002",
        "manufacturingOrderId": "mo-1",
        "workCenterId": "wc-1",
        "startDate": "2026-02-10T12:00:00+00:00",
        "endDate": "2026-02-10T14:00:00+00:00",
        "durationMinutes": 120,
        "isMaintenance": false,
        "dependsOnWorkOrderIds": ["wo-1"],
        "setupTimeMinutes": 15
      }
    }
  ],
  "workCenters": [
    {
      "docId": "wc-1",
      "docType": "workCenter",
      "data": {
        "name": "Mill 1",
        "shifts": [
          {"dayOfWeek": 1, "startHour": 8, "endHour": 17},
          {"dayOfWeek": 2, "startHour": 8, "endHour": 17}
        ],
        "maintenanceWindows": [
          {"start": "2026-02-10T13:00:00Z", "end": "2026-02-10T15:00:00Z"}
        ]
      }
    }
  ],
  "manufacturingOrders": [
    {
      "docId": "mo-1",
      "docType": "manufacturingOrder",
      "data": {
        "manufacturingOrderNumber": "MO-0001",
        "itemId": "item-1",
        "quantity": 10,
        "dueDate": "2026-02-20T00:00:00Z"
      }
    }
  ]
}`

func TestParse_FullPayload(t *testing.T) {
	input, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(input.WorkOrders) != 2 {
		t.Fatalf("expected 2 work orders, got %d", len(input.WorkOrders))
	}
	wo := input.WorkOrders[0]
	if wo.ID != "wo-1" || wo.Number != "WO-0001" || wo.WorkCenterID != "wc-1" {
		t.Errorf("unexpected work order fields: %+v", wo)
	}
	if !wo.Start.Equal(time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", wo.Start)
	}
	if wo.DurationMinutes != 240 {
		t.Errorf("unexpected duration %d", wo.DurationMinutes)
	}

	// +00:00 offsets normalize to UTC instants.
	wo2 := input.WorkOrders[1]
	if !wo2.Start.Equal(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("offset timestamp not normalized: %v", wo2.Start)
	}
	if len(wo2.DependsOn) != 1 || wo2.DependsOn[0] != "wo-1" {
		t.Errorf("unexpected dependencies %v", wo2.DependsOn)
	}
	if wo2.SetupTimeMinutes != 15 {
		t.Errorf("unexpected setup time %d", wo2.SetupTimeMinutes)
	}

	if len(input.WorkCenters) != 1 {
		t.Fatalf("expected 1 work center, got %d", len(input.WorkCenters))
	}
	wc := input.WorkCenters[0]
	if wc.Name != "Mill 1" || len(wc.Shifts) != 2 || len(wc.MaintenanceWindows) != 1 {
		t.Errorf("unexpected work center: %+v", wc)
	}

	if len(input.ManufacturingOrders) != 1 {
		t.Fatalf("expected 1 manufacturing order, got %d", len(input.ManufacturingOrders))
	}
	if mo := input.ManufacturingOrders[0]; mo.Number != "MO-0001" || mo.Quantity != 10 {
		t.Errorf("unexpected manufacturing order: %+v", mo)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{nope")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParse_MissingDocID(t *testing.T) {
	payload := `{"workOrders": [{"docType": "workOrder", "data": {"startDate": "2026-02-10T08:00:00Z", "endDate": "2026-02-10T09:00:00Z"}}]}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected error for missing docId")
	}
	if !strings.Contains(err.Error(), "workOrders[0]") {
		t.Errorf("expected document path in error, got %v", err)
	}
}

func TestParse_BadTimestamp(t *testing.T) {
	payload := `{"workOrders": [{"docId": "wo-1", "docType": "workOrder", "data": {"startDate": "tomorrow", "endDate": "2026-02-10T09:00:00Z"}}]}`
	_, err := Parse([]byte(payload))
	if err == nil {
		t.Fatal("expected error for bad timestamp")
	}
	if !strings.Contains(err.Error(), "startDate") {
		t.Errorf("expected field name in error, got %v", err)
	}
}

func TestParse_BadShift(t *testing.T) {
	payload := `{"workCenters": [{"docId": "wc-1", "docType": "workCenter", "data": {"name": "m", "shifts": [{"dayOfWeek": 9, "startHour": 8, "endHour": 17}]}}]}`
	if _, err := Parse([]byte(payload)); err == nil {
		t.Fatal("expected error for out-of-range dayOfWeek")
	}
}

func TestParse_NegativeDuration(t *testing.T) {
	payload := `{"workOrders": [{"docId": "wo-1", "docType": "workOrder", "data": {"startDate": "2026-02-10T08:00:00Z", "endDate": "2026-02-10T09:00:00Z", "durationMinutes": -5}}]}`
	if _, err := Parse([]byte(payload)); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestWriteResult_RoundTrip(t *testing.T) {
	input, err := Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	res := &schedule.Result{
		UpdatedWorkOrders: input.WorkOrders,
		Explanation:       "No changes needed",
		Metrics: schedule.Metrics{
			WorkCenterUtilization: map[string]float64{"wc-1": 33.33},
		},
	}

	var buf bytes.Buffer
	if err := WriteResult(&buf, res); err != nil {
		t.Fatalf("write: %v", err)
	}

	var decoded struct {
		UpdatedWorkOrders []struct {
			DocID   string `json:"docId"`
			DocType string `json:"docType"`
			Data    struct {
				WorkOrderNumber string `json:"workOrderNumber"`
				StartDate       string `json:"startDate"`
			} `json:"data"`
		} `json:"updatedWorkOrders"`
		Changes     []schedule.Change `json:"changes"`
		Explanation string            `json:"explanation"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	if len(decoded.UpdatedWorkOrders) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(decoded.UpdatedWorkOrders))
	}
	doc := decoded.UpdatedWorkOrders[0]
	if doc.DocID != "wo-1" || doc.DocType != "workOrder" {
		t.Errorf("unexpected envelope: %+v", doc)
	}
	if doc.Data.WorkOrderNumber != "WO-0001" {
		t.Errorf("unexpected data: %+v", doc.Data)
	}
	if doc.Data.StartDate != "2026-02-10T08:00:00Z" {
		t.Errorf("expected RFC 3339 UTC wire time, got %q", doc.Data.StartDate)
	}
	if decoded.Changes == nil {
		t.Error("changes should encode as an empty array, not null")
	}
	if decoded.Explanation != "No changes needed" {
		t.Errorf("unexpected explanation %q", decoded.Explanation)
	}
}
