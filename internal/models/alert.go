package models

import "time"

// Reminder statuses.
const (
	ReminderPending   = "Pending"
	ReminderCompleted = "Completed"
)

// ReminderType values accepted for bus reminders.
var ReminderTypes = []string{"Insurance_Renewal", "Permit", "Oil_Change", "License_Renewal", "Fitness_Certificate", "Pollution_Certificate", "Other"}

// Reminder is a manually scheduled bus task with a due date.
type Reminder struct {
	ID          string     `db:"id" json:"id"`
	BusID       string     `db:"bus_id" json:"busId"`
	Type        string     `db:"type" json:"type"`
	Description *string    `db:"description" json:"description,omitempty"`
	DueDate     time.Time  `db:"due_date" json:"dueDate"`
	Status      string     `db:"status" json:"status"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// ReminderDetail joins the bus registration.
type ReminderDetail struct {
	Reminder
	RegistrationNumber string `db:"registration_number" json:"registrationNumber"`
}

// ReminderRequest schedules a reminder.
type ReminderRequest struct {
	BusID       string     `json:"busId" validate:"required,uuid"`
	Type        string     `json:"type" validate:"required,oneof=Insurance_Renewal Permit Oil_Change License_Renewal Fitness_Certificate Pollution_Certificate Other"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate" validate:"required"`
}

// ResolveReminderRequest marks a reminder done.
type ResolveReminderRequest struct {
	ReminderID string `json:"reminderId" validate:"required"`
}

// Alert types.
const (
	AlertDriverLicense   = "driver_license"
	AlertBusFitness      = "bus_fitness"
	AlertBusRegistration = "bus_registration"
	AlertBusInsurance    = "bus_insurance"
	AlertDocument        = "document"
	AlertReminder        = "reminder"
)

// ExpiryAlert is one upcoming or overdue expiry.
type ExpiryAlert struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Severity      string    `json:"severity"`
	Message       string    `json:"message"`
	DueDate       time.Time `json:"dueDate"`
	DaysRemaining int       `json:"daysRemaining"`
	EntityID      string    `json:"entityId"`
	EntityName    string    `json:"entityName"`
}

// AlertsReport groups alerts with severity counts.
type AlertsReport struct {
	Alerts        []ExpiryAlert `json:"alerts"`
	CriticalCount int           `json:"criticalCount"`
	WarningCount  int           `json:"warningCount"`
	InfoCount     int           `json:"infoCount"`
	Total         int           `json:"total"`
	DaysThreshold int           `json:"daysThreshold"`
}

// ExpiringItem is a dated record the alert scan looks at.
type ExpiringItem struct {
	EntityID   string    `db:"entity_id"`
	EntityName string    `db:"entity_name"`
	Kind       string    `db:"kind"`
	DueDate    time.Time `db:"due_date"`
}
