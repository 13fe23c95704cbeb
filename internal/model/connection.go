package model

import "time"

// ConnectionType is the physical medium of a client connection.
type ConnectionType string

const (
    ConnectionFiber    ConnectionType = "Fiber"
    ConnectionEthernet ConnectionType = "Ethernet"
    ConnectionDSL      ConnectionType = "DSL"
)

// Valid reports whether t is one of the known connection types.
func (t ConnectionType) Valid() bool {
    switch t {
    case ConnectionFiber, ConnectionEthernet, ConnectionDSL:
        return true
    }
    return false
}

// Status is the service state of a connection.
type Status string

const (
    StatusActive   Status = "Active"
    StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool { return s == StatusActive || s == StatusInactive }

// Speed is the tariff bandwidth in Mbps.  It is kept as a string because the
// set of plans is closed and is compared, never computed with.
type Speed string

const (
    Speed10   Speed = "10"
    Speed20   Speed = "20"
    Speed30   Speed = "30"
    Speed50   Speed = "50"
    Speed100  Speed = "100"
    Speed1000 Speed = "1000"
)

// Speeds lists every tariff in ascending order.
var Speeds = []Speed{Speed10, Speed20, Speed30, Speed50, Speed100, Speed1000}

func (s Speed) Valid() bool {
    for _, v := range Speeds {
        if v == s {
            return true
        }
    }
    return false
}

// Connection is a client's network service record.
//
// Fields:
//  ID             – opaque unique identifier generated by the store.
//  ClientName     – client's full name.
//  Address        – free-text copy of an Address label ("street building").
//                   It is not a foreign key; editing it never touches Address records.
//  Office         – office or apartment of the client.
//  ConnectionType – Fiber, Ethernet or DSL.
//  Status         – Active or Inactive.
//  Speed          – tariff bandwidth in Mbps.
//  Price          – monthly price in UAH.
//  Contact        – phone number.
//  LastCheck      – when the record was last created or edited.
//  Notes          – free text.
//  Photos         – photos owned by the connection, in insertion order.
//  Schedules      – service visits owned by the connection, in insertion order.
type Connection struct {
    ID             string         `json:"id"`
    ClientName     string         `json:"clientName"`
    Address        string         `json:"address"`
    Office         string         `json:"office"`
    ConnectionType ConnectionType `json:"connectionType"`
    Status         Status         `json:"status"`
    Speed          Speed          `json:"speed"`
    Price          float64        `json:"price"`
    Contact        string         `json:"contact"`
    LastCheck      time.Time      `json:"lastCheck"`
    Notes          string         `json:"notes"`
    Photos         []Photo        `json:"photos"`
    Schedules      []Schedule     `json:"schedules"`
}

// Clone returns a deep copy so callers can never alias the owned lists.
func (c Connection) Clone() Connection {
    out := c
    out.Photos = append(make([]Photo, 0, len(c.Photos)), c.Photos...)
    out.Schedules = append(make([]Schedule, 0, len(c.Schedules)), c.Schedules...)
    return out
}

// ConnectionInput carries every caller-supplied field of a new connection.
// The id and the owned lists are assigned by the store.
type ConnectionInput struct {
    ClientName     string         `json:"clientName"`
    Address        string         `json:"address"`
    Office         string         `json:"office"`
    ConnectionType ConnectionType `json:"connectionType"`
    Status         Status         `json:"status"`
    Speed          Speed          `json:"speed"`
    Price          float64        `json:"price"`
    Contact        string         `json:"contact"`
    LastCheck      time.Time      `json:"lastCheck"`
    Notes          string         `json:"notes"`
}

// ConnectionPatch is a partial update.  A nil field keeps the stored value.
// There is deliberately no ID field.
type ConnectionPatch struct {
    ClientName     *string         `json:"clientName,omitempty"`
    Address        *string         `json:"address,omitempty"`
    Office         *string         `json:"office,omitempty"`
    ConnectionType *ConnectionType `json:"connectionType,omitempty"`
    Status         *Status         `json:"status,omitempty"`
    Speed          *Speed          `json:"speed,omitempty"`
    Price          *float64        `json:"price,omitempty"`
    Contact        *string         `json:"contact,omitempty"`
    LastCheck      *time.Time      `json:"lastCheck,omitempty"`
    Notes          *string         `json:"notes,omitempty"`
}

// Apply merges the non-nil fields of p into c and returns the result.
func (p ConnectionPatch) Apply(c Connection) Connection {
    if p.ClientName != nil {
        c.ClientName = *p.ClientName
    }
    if p.Address != nil {
        c.Address = *p.Address
    }
    if p.Office != nil {
        c.Office = *p.Office
    }
    if p.ConnectionType != nil {
        c.ConnectionType = *p.ConnectionType
    }
    if p.Status != nil {
        c.Status = *p.Status
    }
    if p.Speed != nil {
        c.Speed = *p.Speed
    }
    if p.Price != nil {
        c.Price = *p.Price
    }
    if p.Contact != nil {
        c.Contact = *p.Contact
    }
    if p.LastCheck != nil {
        c.LastCheck = *p.LastCheck
    }
    if p.Notes != nil {
        c.Notes = *p.Notes
    }
    return c
}

// Dataset is the unit exchanged with a persistence backend.
type Dataset struct {
    Connections []Connection `json:"connections"`
    Addresses   []Address    `json:"addresses"`
}

// ExampleDataset is the single demo row a fresh installation starts with.
func ExampleDataset(now time.Time) Dataset {
    return Dataset{
        Connections: []Connection{{
            ID:             "1",
            ClientName:     "Іван Петренко",
            Address:        "вул. Шевченка 25, кв. 12",
            Office:         "Офіс 101",
            ConnectionType: ConnectionFiber,
            Status:         StatusActive,
            Speed:          Speed100,
            Price:          400,
            Contact:        "+380501234567",
            LastCheck:      now,
            Notes:          "Нове підключення",
            Photos:         []Photo{},
            Schedules:      []Schedule{},
        }},
        Addresses: []Address{{ID: "1", Street: "вул. Шевченка", Building: "25"}},
    }
}
