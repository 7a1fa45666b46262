package store

import (
	"strings"
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// WorkStatus tracks staff tasks and cleaning tasks alike.
type WorkStatus string

const (
	WorkPending    WorkStatus = "pending"
	WorkInProgress WorkStatus = "in_progress"
	WorkCompleted  WorkStatus = "completed"
)

func (s WorkStatus) Validate() error {
	switch s {
	case WorkPending, WorkInProgress, WorkCompleted:
		return nil
	}
	return invalidf("unknown work status %q", s)
}

type TaskCategory string

const (
	CategoryMaintenance  TaskCategory = "maintenance"
	CategoryHousekeeping TaskCategory = "housekeeping"
	CategoryFrontDesk    TaskCategory = "front_desk"
	CategoryGeneral      TaskCategory = "general"
)

func (c TaskCategory) Validate() error {
	switch c {
	case CategoryMaintenance, CategoryHousekeeping, CategoryFrontDesk, CategoryGeneral:
		return nil
	}
	return invalidf("unknown task category %q", c)
}

// Task is a to-do item for the staff. DueDate is optional.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      WorkStatus   `json:"status"`
	DueDate     time.Time    `json:"due_date,omitzero"`
	AssignedTo  string       `json:"assigned_to,omitempty"`
	Category    TaskCategory `json:"category"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalidf("task title is required")
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return invalidf("unknown task priority %q", t.Priority)
	}
	if err := t.Status.Validate(); err != nil {
		return err
	}
	return t.Category.Validate()
}

// CleaningTask is a housekeeping job worked by one or more staff members.
type CleaningTask struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	AssignedStaff []string   `json:"assigned_staff"`
	Status        WorkStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (c CleaningTask) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalidf("cleaning task name is required")
	}
	return c.Status.Validate()
}

// InventoryItem is a stocked supply. It needs reordering once Quantity falls
// to ReorderPoint.
type InventoryItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	Unit         string    `json:"unit"`
	ReorderPoint int       `json:"reorder_point"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (i InventoryItem) NeedsReorder() bool {
	return i.Quantity <= i.ReorderPoint
}

func (i InventoryItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return invalidf("inventory item name is required")
	}
	if i.Quantity < 0 || i.ReorderPoint < 0 {
		return invalidf("inventory quantities must not be negative")
	}
	return nil
}

type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftNight     Shift = "night"
)

func (s Shift) Validate() error {
	switch s {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return nil
	}
	return invalidf("unknown shift %q", s)
}

type StaffStatus string

const (
	StaffAvailable StaffStatus = "available"
	StaffBusy      StaffStatus = "busy"
	StaffOffDuty   StaffStatus = "off_duty"
)

// StaffMember is a housekeeper on the rota. AssignedRooms holds room numbers.
type StaffMember struct {
	ID            string      `json:"id"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Shift         Shift       `json:"shift"`
	Status        StaffStatus `json:"status"`
	AssignedRooms []string    `json:"assigned_rooms"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (m StaffMember) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" || strings.TrimSpace(m.LastName) == "" {
		return invalidf("first and last name are required")
	}
	if err := m.Shift.Validate(); err != nil {
		return err
	}
	switch m.Status {
	case StaffAvailable, StaffBusy, StaffOffDuty:
	default:
		return invalidf("unknown staff status %q", m.Status)
	}
	return nil
}
