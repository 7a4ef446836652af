package models

import "time"

type Customer struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
	IDCardNo  string `json:"id_card_no,omitempty"`
	City      string `json:"city,omitempty"`
	Region    string `json:"region,omitempty"`
	Country   string `json:"country,omitempty"`
	Status    string `json:"status"`

	// Aggregates, mutated only by booking completion.
	TotalBookings int64 `json:"total_bookings"`
	TotalSpent    Money `json:"total_spent"`

	GuarantorName  string `json:"guarantor_name,omitempty"`
	GuarantorPhone string `json:"guarantor_phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Driver struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email,omitempty"`
	LicenseNumber     string    `json:"license_number"`
	LicenseClass      string    `json:"license_class"`
	LicenseExpiryDate time.Time `json:"license_expiry_date"`
	Status            string    `json:"status"`
	DailyRate         Money     `json:"daily_rate"`
	ExperienceYears   int       `json:"experience_years"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LicenseValid reports whether the driver's license has not expired at t.
func (d *Driver) LicenseValid(t time.Time) bool {
	return !d.LicenseExpiryDate.Before(t)
}

// Session is the server-side state bound to an auth cookie.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
