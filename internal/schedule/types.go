package schedule

import "time"

// Shift is a weekly-recurring operating window on a work center.
// Days use Go's convention: Sunday=0 through Saturday=6.
type Shift struct {
	DayOfWeek int `json:"dayOfWeek"`
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

// MaintenanceWindow is an immovable [Start, End) interval during which
// a work center cannot run production work.
type MaintenanceWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WorkOrder is a single production step executed on one work center.
// The tagged fields mirror the wire document's data block; ID comes from
// the document envelope and is populated by the loader.
type WorkOrder struct {
	ID                   string    `json:"-"`
	Number               string    `json:"workOrderNumber"`
	ManufacturingOrderID string    `json:"manufacturingOrderId"`
	WorkCenterID         string    `json:"workCenterId"`
	Start                time.Time `json:"startDate"`
	End                  time.Time `json:"endDate"`
	DurationMinutes      int       `json:"durationMinutes"`
	SetupTimeMinutes     int       `json:"setupTimeMinutes,omitempty"`
	IsMaintenance        bool      `json:"isMaintenance"`
	DependsOn            []string  `json:"dependsOnWorkOrderIds"`
}

// Clone returns a deep copy; the engine mutates copies, never caller state.
func (w *WorkOrder) Clone() *WorkOrder {
	c := *w
	if w.DependsOn != nil {
		c.DependsOn = append([]string(nil), w.DependsOn...)
	}
	return &c
}

// WorkCenter is a single-threaded resource: at most one work order may
// occupy it at any instant.
type WorkCenter struct {
	ID                 string              `json:"-"`
	Name               string              `json:"name"`
	Shifts             []Shift             `json:"shifts"`
	MaintenanceWindows []MaintenanceWindow `json:"maintenanceWindows"`
}

// ManufacturingOrder is read-only context; the engine never mutates it.
type ManufacturingOrder struct {
	ID       string    `json:"-"`
	Number   string    `json:"manufacturingOrderNumber"`
	ItemID   string    `json:"itemId"`
	Quantity int       `json:"quantity"`
	DueDate  time.Time `json:"dueDate"`
}

// Change records one reschedule. DelayMinutes is signed
// (newEnd - originalEnd): a work order that moved earlier carries a
// negative value here even though metrics only sum positive delays.
type Change struct {
	WorkOrderID     string    `json:"workOrderId"`
	WorkOrderNumber string    `json:"workOrderNumber"`
	OriginalStart   time.Time `json:"originalStartDate"`
	OriginalEnd     time.Time `json:"originalEndDate"`
	NewStart        time.Time `json:"newStartDate"`
	NewEnd          time.Time `json:"newEndDate"`
	DelayMinutes    int       `json:"delayMinutes"`
	Reason          string    `json:"reason"`
}

// Input is everything a reflow call consumes.
type Input struct {
	WorkOrders          []*WorkOrder
	WorkCenters         []*WorkCenter
	ManufacturingOrders []*ManufacturingOrder
}

// Metrics summarizes a reflow outcome. TotalDelayMinutes sums only
// positive per-change delays; WorkOrdersAffected counts every change,
// including ones that moved a work order earlier.
type Metrics struct {
	TotalDelayMinutes     int                `json:"totalDelayMinutes"`
	WorkOrdersAffected    int                `json:"workOrdersAffected"`
	WorkCenterUtilization map[string]float64 `json:"workCenterUtilization"`
}

// Result is the output of a successful reflow.
type Result struct {
	UpdatedWorkOrders []*WorkOrder `json:"updatedWorkOrders"`
	Changes           []Change     `json:"changes"`
	Explanation       string       `json:"explanation"`
	Metrics           Metrics      `json:"metrics"`
}

// WorkOrderByID indexes work orders by identifier.
func WorkOrderByID(wos []*WorkOrder) map[string]*WorkOrder {
	m := make(map[string]*WorkOrder, len(wos))
	for _, w := range wos {
		m[w.ID] = w
	}
	return m
}

// WorkCenterByID indexes work centers by identifier.
func WorkCenterByID(wcs []*WorkCenter) map[string]*WorkCenter {
	m := make(map[string]*WorkCenter, len(wcs))
	for _, wc := range wcs {
		m[wc.ID] = wc
	}
	return m
}
