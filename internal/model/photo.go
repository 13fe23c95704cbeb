package model

import "time"

// Photo is an image attached to a connection (site photo, equipment, etc.).
// ConnectionID is a back-reference only; the owning connection holds the photo.
type Photo struct {
    ID           string    `json:"id"`
    URL          string    `json:"url"`
    Caption      string    `json:"caption"`
    ConnectionID string    `json:"connectionId"`
    CreatedAt    time.Time `json:"createdAt"`
}

// PhotoInput is the caller-supplied part of a photo.
type PhotoInput struct {
    URL     string `json:"url"`
    Caption string `json:"caption"`
}
