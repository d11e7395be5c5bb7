package domain

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}

type CustomerProfile struct {
	UserID  string `db:"user_id"`
	Phone   string `db:"phone"`
	Address string `db:"address"`
	City    string `db:"city"`
}
