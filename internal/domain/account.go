package domain

import "time"

// Account es una cuenta activa. PasswordHash queda vacío para cuentas
// creadas solo por OAuth.
type Account struct {
	ID               string     `json:"_id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"fName,omitempty"`
	LastName         string     `json:"lName,omitempty"`
	ProfilePicture   string     `json:"profilePicture,omitempty"`
	PasswordHash     string     `json:"-"`
	ResetSecret      string     `json:"-"`
	ResetRequestedAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PendingSignup es un registro provisional: todavía no es una cuenta y el
// login no lo ve. El id del registro viaja en el link de verificación.
type PendingSignup struct {
	ID             string    `json:"_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"fName,omitempty"`
	LastName       string    `json:"lName,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// OTPChallenge guarda el código vivo por email (upsert: el nuevo pisa al
// anterior).
type OTPChallenge struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	AssocID   string    `json:"userId"`
	CreatedAt time.Time `json:"created_at"`
}
