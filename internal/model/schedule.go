package model

import "time"

// ScheduleType classifies a planned technician visit.
type ScheduleType string

const (
    ScheduleInstallation ScheduleType = "installation"
    ScheduleMaintenance  ScheduleType = "maintenance"
    ScheduleRepair       ScheduleType = "repair"
)

func (t ScheduleType) Valid() bool {
    switch t {
    case ScheduleInstallation, ScheduleMaintenance, ScheduleRepair:
        return true
    }
    return false
}

// ScheduleStatus is the lifecycle of a planned visit.
type ScheduleStatus string

const (
    SchedulePending   ScheduleStatus = "pending"
    ScheduleCompleted ScheduleStatus = "completed"
    ScheduleCancelled ScheduleStatus = "cancelled"
)

func (s ScheduleStatus) Valid() bool {
    switch s {
    case SchedulePending, ScheduleCompleted, ScheduleCancelled:
        return true
    }
    return false
}

// Schedule is a service visit owned by a connection.
//
// Fields:
//  ID           – opaque unique identifier generated by the store.
//  ConnectionID – back-reference to the owning connection.
//  Title        – short summary shown in lists.
//  Description  – free text for the technician.
//  Date         – planned date and time of the visit.
//  Type         – installation, maintenance or repair.
//  Status       – pending, completed or cancelled.
type Schedule struct {
    ID           string         `json:"id"`
    ConnectionID string         `json:"connectionId"`
    Title        string         `json:"title"`
    Description  string         `json:"description"`
    Date         time.Time      `json:"date"`
    Type         ScheduleType   `json:"type"`
    Status       ScheduleStatus `json:"status"`
}

// ScheduleInput is the caller-supplied part of a schedule.
type ScheduleInput struct {
    Title       string         `json:"title"`
    Description string         `json:"description"`
    Date        time.Time      `json:"date"`
    Type        ScheduleType   `json:"type"`
    Status      ScheduleStatus `json:"status"`
}

// SchedulePatch is a partial schedule update; nil keeps the stored value.
type SchedulePatch struct {
    Title       *string         `json:"title,omitempty"`
    Description *string         `json:"description,omitempty"`
    Date        *time.Time      `json:"date,omitempty"`
    Type        *ScheduleType   `json:"type,omitempty"`
    Status      *ScheduleStatus `json:"status,omitempty"`
}

// Apply merges the non-nil fields of p into s.
func (p SchedulePatch) Apply(s Schedule) Schedule {
    if p.Title != nil {
        s.Title = *p.Title
    }
    if p.Description != nil {
        s.Description = *p.Description
    }
    if p.Date != nil {
        s.Date = *p.Date
    }
    if p.Type != nil {
        s.Type = *p.Type
    }
    if p.Status != nil {
        s.Status = *p.Status
    }
    return s
}
