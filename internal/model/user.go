package model

type User struct {
	BaseModel
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	DisplayName  string `db:"display_name" json:"display_name"`
	IsAdmin      bool   `db:"is_admin" json:"is_admin"`
}
