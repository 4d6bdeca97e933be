package model

import "time"

// Member represents an application member record as stored in the
// `members` table.  Each field corresponds to a column in the
// database.  The struct is used internally by the repository and
// service layers; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the member.
//  Email        – unique email address used as the login account.
//  DisplayName  – name shown in the UI.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Member struct {
    ID           uint64    // members.id
    Email        string    // members.email
    DisplayName  string    // members.display_name
    PasswordHash string    // members.password_hash
    CreatedAt    time.Time // members.created_at
    UpdatedAt    time.Time // members.updated_at
}
