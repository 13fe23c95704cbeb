package model

import "time"

// Role is the permission level of a staff account.
type Role string

const (
    RoleAdmin     Role = "admin"
    RoleModerator Role = "moderator"
    RoleUser      Role = "user"
)

func (r Role) Valid() bool {
    switch r {
    case RoleAdmin, RoleModerator, RoleUser:
        return true
    }
    return false
}

// User is the profile returned by the authentication collaborator after a
// successful sign in.  The password hash never leaves the repository layer.
//
// Fields:
//  ID        – account identifier.
//  Email     – normalized (lower-case) login.
//  Role      – admin, moderator or user.
//  CreatedAt – when the account was created.
type User struct {
    ID        string    `json:"id"`
    Email     string    `json:"email"`
    Role      Role      `json:"role"`
    CreatedAt time.Time `json:"createdAt"`
}
