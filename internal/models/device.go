package models

import "time"

// Device is the server side session of one refresh token lineage. There is
// at most one row per (UserID, DeviceID); every login or refresh from the
// device overwrites it.
type Device struct {
	UserID    string    `db:"user_id"`
	DeviceID  string    `db:"device_id"`
	TokenID   string    `db:"token_id"`
	IssuedAt  time.Time `db:"issued_at"`
	ExpiresAt time.Time `db:"expires_at"`
	IP        string    `db:"ip"`
	Title     string    `db:"title"`
}

// Matches reports whether the stored session still belongs to the given
// refresh token claims.
func (d *Device) Matches(claims *RefreshClaims) bool {
	if d == nil || claims == nil {
		return false
	}
	return d.IssuedAt.Equal(claims.IssuedAtTime()) &&
		d.ExpiresAt.Equal(claims.ExpiresAtTime()) &&
		d.TokenID == claims.ID
}

// DeviceView is returned by the security devices endpoint.
type DeviceView struct {
	IP             string    `json:"ip"`
	Title          string    `json:"title"`
	LastActiveDate time.Time `json:"lastActiveDate"`
	DeviceID       string    `json:"deviceId"`
}

// View maps the session to its public form.
func (d *Device) View() DeviceView {
	return DeviceView{IP: d.IP, Title: d.Title, LastActiveDate: d.IssuedAt, DeviceID: d.DeviceID}
}
