package model

import "strings"

// Address is a street/building reference offered when creating or editing
// connections.  It is an independent entity: connections keep a text copy of
// its label, not its id.
//
// Fields:
//  ID       – opaque unique identifier generated by the store.
//  Street   – street name including its type prefix (e.g. "вул. Шевченка").
//  Building – building number.
type Address struct {
    ID       string `json:"id"`
    Street   string `json:"street"`
    Building string `json:"building"`
}

// Label is the text stored in Connection.Address when the address is picked.
func (a Address) Label() string {
    return strings.TrimSpace(a.Street + " " + a.Building)
}

// AddressInput is an Address without its id.
type AddressInput struct {
    Street   string `json:"street"`
    Building string `json:"building"`
}
